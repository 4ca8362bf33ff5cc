package dirwatch

import "sync"

// wdEntry is one row of the tree: a watch descriptor, the absolute path it
// watches, and the wd of its parent directory (NullWD for a top-level
// watched root).
type wdEntry struct {
	wd       WD
	parent   WD
	path     string
	children map[WD]struct{}
}

// WDTree is the bijection between kernel watch descriptors and the absolute
// paths they watch, plus the parent/child adjacency needed to prune a
// subtree when a directory is deleted or moved away. It is the Go expression
// of the original's wd_directory: the original backs it with sqlite; this
// implementation backs it with plain maps, which the design notes recommend
// for anything beyond a few thousand watched directories.
//
// A WDTree is safe for concurrent use, though the daemon's single-threaded
// poll/drain loop never actually contends on it.
type WDTree struct {
	mu     sync.Mutex
	byWD   map[WD]*wdEntry
	byPath map[string]WD
}

// NewWDTree returns an empty tree.
func NewWDTree() *WDTree {
	return &WDTree{
		byWD:   make(map[WD]*wdEntry),
		byPath: make(map[string]WD),
	}
}

// Add records a new watch: wd watches path, whose parent directory is
// watched under parentWD (NullWD if path is a top-level watched root).
func (t *WDTree) Add(wd, parentWD WD, path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := &wdEntry{wd: wd, parent: parentWD, path: path, children: make(map[WD]struct{})}
	t.byWD[wd] = e
	t.byPath[path] = wd

	if parentWD != NullWD {
		if parent, ok := t.byWD[parentWD]; ok {
			parent.children[wd] = struct{}{}
		}
	}
}

// Exists reports whether wd is currently tracked.
func (t *WDTree) Exists(wd WD) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.byWD[wd]
	return ok
}

// FindPath returns the path watched by wd, and whether it was found.
func (t *WDTree) FindPath(wd WD) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byWD[wd]
	if !ok {
		return "", false
	}
	return e.path, true
}

// FindWD returns the watch descriptor for path, and whether it was found.
func (t *WDTree) FindWD(path string) (WD, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	wd, ok := t.byPath[path]
	return wd, ok
}

// FindParent returns the watch descriptor of wd's parent directory, and
// whether wd itself is tracked. The returned parent wd is NullWD both when
// wd is a top-level root and when wd is not tracked at all; callers that
// need to distinguish those cases use the second return value.
func (t *WDTree) FindParent(wd WD) (WD, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byWD[wd]
	if !ok {
		return NullWD, false
	}
	return e.parent, true
}

// Remove deletes a single entry (not its children) and unlinks it from its
// parent's child set. Used when the kernel reports IN_IGNORED for a watch
// already implicitly removed (e.g. by its directory's own deletion).
func (t *WDTree) Remove(wd WD) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeLocked(wd)
}

func (t *WDTree) removeLocked(wd WD) {
	e, ok := t.byWD[wd]
	if !ok {
		return
	}
	if e.parent != NullWD {
		if parent, ok := t.byWD[e.parent]; ok {
			delete(parent.children, wd)
		}
	}
	delete(t.byPath, e.path)
	delete(t.byWD, wd)
}

// Prune removes wd and every descendant watch beneath it (breadth-first),
// and returns the watch descriptors removed with wd first, children in
// discovery order after it. If wd is not tracked, Prune is a no-op and
// returns []WD{wd} — the caller still learns which wd to pass to
// inotify_rm_watch, matching the original's prune_wd_directory contract,
// which returns the root wd even when the row was already gone.
func (t *WDTree) Prune(wd WD) []WD {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := []WD{wd}
	if _, ok := t.byWD[wd]; !ok {
		return removed
	}

	queue := []WD{wd}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		e, ok := t.byWD[cur]
		if !ok {
			continue
		}
		for child := range e.children {
			queue = append(queue, child)
			if child != wd {
				removed = append(removed, child)
			}
		}
	}

	for _, victim := range removed {
		t.removeLocked(victim)
	}
	return removed
}

// Len reports how many watch descriptors are currently tracked, for tests
// and diagnostics.
func (t *WDTree) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byWD)
}
