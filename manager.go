package dirwatch

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Manager adds and removes kernel inotify watches and keeps a WDTree in
// sync with them. It is the Go expression of the original's add_watch,
// watch_new_directory and prune_moved_directory, generalized into a single
// type with no package-level globals.
type Manager struct {
	fd      int
	tree    *WDTree
	exclude *ExcludeSet
	log     logrus.FieldLogger
}

// NewManager returns a Manager that adds and removes watches on fd (an
// open inotify instance), tracking them in tree and honoring exclude.
func NewManager(fd int, tree *WDTree, exclude *ExcludeSet, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logrus.New()
	}
	return &Manager{fd: fd, tree: tree, exclude: exclude, log: log}
}

// WatchTree adds a watch for path (whose parent directory is tracked under
// parentWD, NullWD if path is a top-level root) and recurses into every
// subdirectory path contains, skipping excluded prefixes. It reports
// added=true only if it installed a new watch on path itself; added=false
// covers each of the original's four skip reasons: path is excluded,
// path is already watched (find_directory_wd in the original), or the
// directory has disappeared or become unreadable by the time it gets here
// (ENOENT/EACCES) — all non-fatal, since directories routinely vanish or
// get re-announced between discovery and the watch call racing against
// concurrent filesystem activity.
func (m *Manager) WatchTree(path string, parentWD WD) (added bool, err error) {
	if prefix, excluded := m.exclude.Excluded(path); excluded {
		m.log.WithField("prefix", prefix).Debugf("excluding path %s", path)
		return false, nil
	}

	if _, ok := m.tree.FindWD(path); ok {
		m.log.Debugf("already watching %s", path)
		return false, nil
	}

	wd, err := unix.InotifyAddWatch(m.fd, path, WatchMask)
	if err != nil {
		if err == unix.ENOENT || err == unix.EACCES {
			m.log.WithError(err).Debugf("skipping %s", path)
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %v", ErrWatchAdd, path, err)
	}

	if m.tree.Exists(WD(wd)) {
		// The kernel reused a watch descriptor we still believe is live:
		// the directory previously at that wd was removed or moved away
		// without us having processed the corresponding event yet. Prune
		// the stale subtree before recording the new one, mirroring the
		// original's duplicate-wd repair in add_watch.
		m.log.Warnf("duplicate watch descriptor %d, pruning stale entry before re-adding %s", wd, path)
		m.tree.Prune(WD(wd))
	}

	m.log.WithField("wd", wd).Debugf("watching %s", path)
	m.tree.Add(WD(wd), parentWD, path)

	children, err := ListChildren(path)
	if err != nil {
		return true, fmt.Errorf("%w: listing %s: %v", ErrWatchAdd, path, err)
	}
	for _, name := range children {
		if _, err := m.WatchTree(filepath.Join(path, name), WD(wd)); err != nil {
			return true, err
		}
	}
	return true, nil
}

// UnwatchSubtree removes wd and every watch beneath it from the tree and
// asks the kernel to drop each one, tolerating EINVAL (the kernel may have
// already invalidated a descendant watch on its own when its directory's
// parent watch was removed). It returns the set of watch descriptors that
// were removed from the tree, wd first.
func (m *Manager) UnwatchSubtree(wd WD) []WD {
	removed := m.tree.Prune(wd)
	for _, victim := range removed {
		if err := unix.InotifyRmWatch(m.fd, uint32(victim)); err != nil && err != unix.EINVAL {
			m.log.WithError(err).Warnf("removing watch %d", victim)
		}
	}
	return removed
}
