package dirwatch

import "golang.org/x/sys/unix"

// ignoringEINTR makes a syscall and repeats it if it returns EINTR. Signal
// handlers installed without SA_RESTART, or certain signals that can't be
// restarted at all, mean even "restartable" syscalls occasionally need this
// loop in practice.
func ignoringEINTR[T any](fn func() (T, error)) (T, error) {
	for {
		v, err := fn()
		if err != unix.EINTR {
			return v, err
		}
	}
}
