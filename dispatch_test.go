package dirwatch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestDispatcherDrainCreateDirectory(t *testing.T) {
	tmp := t.TempDir()
	fd := newTestInotify(t)
	tree := NewWDTree()
	mgr := NewManager(fd, tree, NewExcludeSet(nil), quietLogger())
	if _, err := mgr.WatchTree(tmp, NullWD); err != nil {
		t.Fatalf("WatchTree: %s", err)
	}
	disp := NewDispatcher(tree, mgr, quietLogger())
	it := NewIterator(fd)

	newDir := filepath.Join(tmp, "newdir")
	mustMkdir(t, newDir)

	if _, err := it.Fill(); err != nil {
		t.Fatalf("Fill: %s", err)
	}
	changed, err := disp.Drain(it)
	if err != nil {
		t.Fatalf("Drain: %s", err)
	}

	if !containsString(changed, tmp) {
		t.Fatalf("changed = %v, want it to contain %q", changed, tmp)
	}
	if _, ok := tree.FindWD(newDir); !ok {
		t.Fatalf("expected %q to be watched after creation", newDir)
	}
}

func TestDispatcherDrainRenameDirectory(t *testing.T) {
	tmp := t.TempDir()
	oldDir := filepath.Join(tmp, "old")
	mustMkdir(t, oldDir)

	fd := newTestInotify(t)
	tree := NewWDTree()
	mgr := NewManager(fd, tree, NewExcludeSet(nil), quietLogger())
	if _, err := mgr.WatchTree(tmp, NullWD); err != nil {
		t.Fatalf("WatchTree: %s", err)
	}
	disp := NewDispatcher(tree, mgr, quietLogger())
	it := NewIterator(fd)

	newDir := filepath.Join(tmp, "new")
	if err := os.Rename(oldDir, newDir); err != nil {
		t.Fatalf("Rename: %s", err)
	}

	if _, err := it.Fill(); err != nil {
		t.Fatalf("Fill: %s", err)
	}
	if _, err := disp.Drain(it); err != nil {
		t.Fatalf("Drain: %s", err)
	}

	if _, ok := tree.FindWD(oldDir); ok {
		t.Fatalf("old path %q should no longer be watched", oldDir)
	}
	if _, ok := tree.FindWD(newDir); !ok {
		t.Fatalf("new path %q should be watched", newDir)
	}
}

func TestDispatcherDrainQueueOverflow(t *testing.T) {
	payload := encodeInotifyEvent(t, 0, unix.IN_Q_OVERFLOW, 0, "")
	it := writeAndFill(t, payload)

	disp := NewDispatcher(NewWDTree(), NewManager(0, NewWDTree(), NewExcludeSet(nil), quietLogger()), quietLogger())
	_, err := disp.Drain(it)
	if err == nil {
		t.Fatalf("Drain: expected error on queue overflow")
	}
	if !errors.Is(err, ErrQueueOverflow) {
		t.Fatalf("Drain error = %v, want ErrQueueOverflow", err)
	}
}

func TestDispatcherDrainUnresolvedParent(t *testing.T) {
	payload := encodeInotifyEvent(t, 999, unix.IN_DELETE, 0, "ghost")
	it := writeAndFill(t, payload)

	tree := NewWDTree() // empty: wd 999 is unknown
	disp := NewDispatcher(tree, NewManager(0, tree, NewExcludeSet(nil), quietLogger()), quietLogger())
	_, err := disp.Drain(it)
	if !errors.Is(err, ErrUnresolvedParent) {
		t.Fatalf("Drain error = %v, want ErrUnresolvedParent", err)
	}
}

func TestDispatcherDrainCookieAnomaly(t *testing.T) {
	var payload []byte
	payload = append(payload, encodeInotifyEvent(t, 1, unix.IN_MOVED_FROM|unix.IN_ISDIR, 7, "a")...)
	payload = append(payload, encodeInotifyEvent(t, 1, unix.IN_MOVED_FROM|unix.IN_ISDIR, 7, "b")...)
	it := writeAndFill(t, payload)

	tree := NewWDTree()
	tree.Add(1, NullWD, "/watched")
	disp := NewDispatcher(tree, NewManager(0, tree, NewExcludeSet(nil), quietLogger()), quietLogger())

	_, err := disp.Drain(it)
	if !errors.Is(err, ErrCookieAnomaly) {
		t.Fatalf("Drain error = %v, want ErrCookieAnomaly", err)
	}
}

func TestDispatcherDrainAllowsDuplicateParentsInBatch(t *testing.T) {
	var payload []byte
	payload = append(payload, encodeInotifyEvent(t, 1, unix.IN_DELETE, 0, "a")...)
	payload = append(payload, encodeInotifyEvent(t, 1, unix.IN_DELETE, 0, "b")...)
	it := writeAndFill(t, payload)

	tree := NewWDTree()
	tree.Add(1, NullWD, "/watched")
	disp := NewDispatcher(tree, NewManager(0, tree, NewExcludeSet(nil), quietLogger()), quietLogger())

	changed, err := disp.Drain(it)
	if err != nil {
		t.Fatalf("Drain: %s", err)
	}
	want := []string{"/watched", "/watched"}
	if len(changed) != len(want) || changed[0] != want[0] || changed[1] != want[1] {
		t.Fatalf("Drain = %v, want %v (duplicates within a batch must be kept)", changed, want)
	}
}

func TestDispatcherDrainSkipsEntryForAlreadyWatchedCreate(t *testing.T) {
	payload := encodeInotifyEvent(t, 1, unix.IN_CREATE|unix.IN_ISDIR, 0, "child")
	it := writeAndFill(t, payload)

	tree := NewWDTree()
	tree.Add(1, NullWD, "/parent")
	tree.Add(2, 1, "/parent/child") // already watched, as if we raced the kernel and got here first

	disp := NewDispatcher(tree, NewManager(0, tree, NewExcludeSet(nil), quietLogger()), quietLogger())
	changed, err := disp.Drain(it)
	if err != nil {
		t.Fatalf("Drain: %s", err)
	}
	if len(changed) != 0 {
		t.Fatalf("Drain = %v, want no batch entry for a CREATE that WatchTree skipped", changed)
	}
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
