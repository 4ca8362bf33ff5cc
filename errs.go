package dirwatch

import "errors"

// Sentinel errors identifying the distinguished failure conditions of §7.
// cmd/dirwatchd maps each to a distinct process exit code via errors.Is;
// the original's main.c used a literal exit(N) at each corresponding call
// site instead.
var (
	// ErrQueueOverflow means the kernel reported IN_Q_OVERFLOW: events were
	// dropped and the watch tree's view of the filesystem can no longer be
	// trusted. The caller must exit with a code distinct from every
	// configuration/IO failure so a supervising Monitor process knows to
	// force a full rescan rather than simply restart the daemon.
	ErrQueueOverflow = errors.New("dirwatch: inotify event queue overflowed")

	// ErrPathOverflow identifies an over-long path. The dispatcher imposes
	// no path-length limit, so no function in this package returns it.
	ErrPathOverflow = errors.New("dirwatch: path exceeds maximum length")

	// ErrCookieAnomaly means an IN_MOVED_FROM event carried a rename cookie
	// for which an earlier IN_MOVED_FROM is still pending (not yet matched
	// by an IN_MOVED_TO), violating the kernel's move-pairing guarantee.
	ErrCookieAnomaly = errors.New("dirwatch: rename cookie anomaly")

	// ErrUnresolvedParent means an event's watch descriptor has no known
	// parent in the tree, so the dispatcher cannot determine which
	// directory to report as changed.
	ErrUnresolvedParent = errors.New("dirwatch: unable to resolve parent directory for event")

	// ErrBatchIO means writing or renaming a batch notification file failed.
	ErrBatchIO = errors.New("dirwatch: batch file write failed")

	// ErrWatchAdd means inotify_add_watch failed for a reason other than
	// the directory having disappeared (ENOENT/EACCES, both tolerated), or
	// listing the sub-directories of a newly watched directory failed.
	ErrWatchAdd = errors.New("dirwatch: adding watch failed")

	// ErrInotifyInit means inotify_init1 itself failed; nothing in the
	// daemon can proceed without an inotify file descriptor.
	ErrInotifyInit = errors.New("dirwatch: initializing inotify instance failed")

	// ErrConfig means a configuration or exclude file could not be read.
	ErrConfig = errors.New("dirwatch: reading configuration failed")
)
