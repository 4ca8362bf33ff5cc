package dirwatch

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Dispatcher classifies decoded events from an Iterator, drives a Manager
// and WDTree in response, and records the parent directories that changed
// — the Go expression of the original's process_inotify_events.
type Dispatcher struct {
	tree    *WDTree
	mgr     *Manager
	log     logrus.FieldLogger
	pending map[uint32]bool // cookie -> a MOVED_FROM is outstanding for it

	// prevWD/prevPath memoize the most recent parent-path lookup, since
	// the kernel tends to deliver runs of events on the same watch
	// descriptor; this mirrors the original's single-entry lookup cache.
	prevWD   WD
	prevPath string
	havePrev bool
}

// NewDispatcher returns a Dispatcher over tree, using mgr to add and remove
// kernel watches as directories appear, move, or disappear.
func NewDispatcher(tree *WDTree, mgr *Manager, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.New()
	}
	return &Dispatcher{tree: tree, mgr: mgr, log: log, pending: make(map[uint32]bool)}
}

// Drain classifies every event currently available from it (calling it.Next
// until exhausted) and returns the parent directories that changed, in
// event order. Duplicates within a batch are expected and left in place —
// a rename pair on the same parent legitimately produces two entries — the
// downstream reader is the one that collapses repeats. It returns
// ErrQueueOverflow if the kernel reports a dropped event, and
// ErrUnresolvedParent if an event's watch descriptor has no known parent
// directory — both fatal per §7.
func (d *Dispatcher) Drain(it *Iterator) ([]string, error) {
	var changed []string

	for {
		ev, ok, err := it.Next()
		if err != nil {
			return changed, err
		}
		if !ok {
			return changed, nil
		}

		d.log.Debugf("event wd=%d mask=0x%08x (%s) name=%q", ev.WD, ev.Mask, maskFlags(ev.Mask), ev.Name)

		if ev.Mask&unix.IN_Q_OVERFLOW != 0 {
			return changed, ErrQueueOverflow
		}

		parentPath, havePath := d.parentPath(ev.WD)

		skip := false
		switch {
		case ev.Mask&unix.IN_DELETE_SELF != 0:
			skip = true

		case ev.Mask&unix.IN_MOVE_SELF != 0:
			skip = true

		case ev.Mask&createDirMask == createDirMask:
			if havePath {
				newPath := filepath.Join(parentPath, ev.Name)
				added, err := d.mgr.WatchTree(newPath, ev.WD)
				if err != nil {
					return changed, err
				}
				if !added {
					skip = true
				}
			}

		case ev.Mask&unix.IN_MOVED_FROM != 0:
			if d.pending[ev.Cookie] {
				return changed, fmt.Errorf("%w: cookie %d already pending", ErrCookieAnomaly, ev.Cookie)
			}
			d.pending[ev.Cookie] = true
			if ev.IsDir() && havePath {
				oldPath := filepath.Join(parentPath, ev.Name)
				if wd, ok := d.tree.FindWD(oldPath); ok {
					d.mgr.UnwatchSubtree(wd)
				}
			}

		case ev.Mask&unix.IN_MOVED_TO != 0:
			if d.pending[ev.Cookie] {
				delete(d.pending, ev.Cookie)
			} else {
				d.log.Warnf("move-in for cookie %d has no matching move-out", ev.Cookie)
			}
			if ev.IsDir() && havePath {
				newPath := filepath.Join(parentPath, ev.Name)
				if _, err := d.mgr.WatchTree(newPath, ev.WD); err != nil {
					return changed, err
				}
			}

		case ev.Mask&unix.IN_IGNORED != 0:
			d.tree.Remove(ev.WD)
			d.invalidate(ev.WD)
			skip = true
		}

		if skip {
			continue
		}
		if !havePath {
			return changed, fmt.Errorf("%w: wd %d", ErrUnresolvedParent, ev.WD)
		}
		changed = append(changed, parentPath)
	}
}

func (d *Dispatcher) parentPath(wd WD) (string, bool) {
	if d.havePrev && d.prevWD == wd {
		return d.prevPath, true
	}
	path, ok := d.tree.FindPath(wd)
	if !ok {
		return "", false
	}
	d.prevWD, d.prevPath, d.havePrev = wd, path, true
	return path, true
}

func (d *Dispatcher) invalidate(wd WD) {
	if d.havePrev && d.prevWD == wd {
		d.havePrev = false
	}
}
