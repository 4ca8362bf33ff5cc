package dirwatch

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// pollTimeoutMillis is the poll(2) timeout used between checks of whether
// the parent process is still alive, matching the original's POLL_TIMEOUT
// of one second.
const pollTimeoutMillis = 1000

// Daemon wires the watch-tree manager, event dispatcher, and batch emitter
// into the single-threaded poll/drain loop described by §5: one inotify
// instance, one goroutine, one pass over each batch of events before
// returning to poll.
type Daemon struct {
	fd        int
	tree      *WDTree
	mgr       *Manager
	disp      *Dispatcher
	iter      *Iterator
	emitter   *BatchEmitter
	log       *logrus.Logger
	parentPID int
}

// NewDaemon creates an inotify instance and a Daemon around it, watching
// every root in roots (recursively, honoring exclude), emitting batch
// notification files into notifyDir. parentPID, if non-zero, is checked
// once per poll timeout; Run returns cleanly when that process is gone
// (reparented to init), matching the original's getppid()==1 check.
func NewDaemon(roots []string, exclude *ExcludeSet, notifyDir string, parentPID int, log *logrus.Logger) (*Daemon, error) {
	fd, err := unix.InotifyInit1(unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInotifyInit, err)
	}

	tree := NewWDTree()
	mgr := NewManager(fd, tree, exclude, log)
	for _, root := range roots {
		if _, err := mgr.WatchTree(root, NullWD); err != nil {
			unix.Close(fd)
			return nil, err
		}
	}

	d := &Daemon{
		fd:        fd,
		tree:      tree,
		mgr:       mgr,
		disp:      NewDispatcher(tree, mgr, log),
		iter:      NewIterator(fd),
		emitter:   NewBatchEmitter(notifyDir),
		log:       log,
		parentPID: parentPID,
	}
	return d, nil
}

// Close releases the daemon's inotify file descriptor.
func (d *Daemon) Close() error {
	return unix.Close(d.fd)
}

// Run executes the poll/drain loop until the parent process disappears,
// poll(2) is interrupted by a signal, or a fatal error occurs. It returns
// nil on the parent-gone and interrupted-poll exit paths; every other
// return is a non-nil error the caller maps to a distinguished exit code.
func (d *Daemon) Run() (err error) {
	Notice(d.log, "Program started")
	defer func() {
		if err == nil {
			Notice(d.log, "Program terminates normally")
		}
	}()

	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}

	for {
		if d.parentPID != 0 && unix.Getppid() != d.parentPID {
			return nil
		}

		n, err := unix.Poll(fds, pollTimeoutMillis)
		if err != nil {
			if err == unix.EINTR {
				return nil
			}
			return fmt.Errorf("dirwatch: poll: %w", err)
		}
		if n == 0 {
			continue
		}
		if fds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		if _, err := d.iter.Fill(); err != nil {
			return fmt.Errorf("dirwatch: reading inotify events: %w", err)
		}

		changed, err := d.disp.Drain(d.iter)
		if err != nil {
			return err
		}
		if len(changed) == 0 {
			continue
		}

		path, err := d.emitter.Emit(changed)
		if err != nil {
			return err
		}
		d.log.WithField("batch", path).Debugf("emitted %d changed directories", len(changed))
	}
}
