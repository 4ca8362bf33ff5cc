package dirwatch

import (
	"strings"

	"golang.org/x/sys/unix"
)

// WD is a kernel-assigned watch descriptor. NullWD denotes "no parent" (a
// top-level watched root) or "not found", mirroring the C source's NULL_WD.
type WD int32

// NullWD is the sentinel watch descriptor: no parent, or lookup failure.
const NullWD WD = 0

// WatchMask is the union of inotify event bits requested for every directory
// this notifier watches, per spec §6.
const WatchMask = unix.IN_CLOSE_WRITE |
	unix.IN_CREATE |
	unix.IN_DELETE |
	unix.IN_MOVED_FROM |
	unix.IN_MOVED_TO |
	unix.IN_DELETE_SELF |
	unix.IN_MOVE_SELF

// createDirMask is the pair of bits that together mean "a new directory
// appeared under a watched directory."
const createDirMask = unix.IN_CREATE | unix.IN_ISDIR

// maskNames is consulted in order; the first bit present in a mask wins.
// It exists purely to make the per-event debug trace readable, the same
// role event_name_lookup plays in the original source.
var maskNames = []struct {
	bit  uint32
	name string
}{
	{unix.IN_CLOSE_WRITE, "IN_CLOSE_WRITE"},
	{unix.IN_CREATE, "IN_CREATE"},
	{unix.IN_DELETE, "IN_DELETE"},
	{unix.IN_MOVED_FROM, "IN_MOVED_FROM"},
	{unix.IN_MOVED_TO, "IN_MOVED_TO"},
	{unix.IN_DELETE_SELF, "IN_DELETE_SELF"},
	{unix.IN_MOVE_SELF, "IN_MOVE_SELF"},
	{unix.IN_IGNORED, "IN_IGNORED"},
	{unix.IN_Q_OVERFLOW, "IN_Q_OVERFLOW"},
}

// maskName renders the first recognized bit in mask, for logging only; it
// has no control-flow role.
func maskName(mask uint32) string {
	for _, n := range maskNames {
		if mask&n.bit == n.bit {
			if mask&unix.IN_ISDIR == unix.IN_ISDIR {
				return n.name + "|IN_ISDIR"
			}
			return n.name
		}
	}
	return "*unknown*"
}

// maskFlags renders every recognized bit set in mask, separated by "|".
func maskFlags(mask uint32) string {
	var names []string
	for _, n := range maskNames {
		if mask&n.bit == n.bit {
			names = append(names, n.name)
		}
	}
	if mask&unix.IN_ISDIR == unix.IN_ISDIR {
		names = append(names, "IN_ISDIR")
	}
	if len(names) == 0 {
		return "*unknown*"
	}
	return strings.Join(names, "|")
}
