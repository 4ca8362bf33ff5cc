package dirwatch

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// RawEvent is one decoded inotify_event, with its trailing name (if any)
// attached. Name is empty for events on the watched directory itself.
type RawEvent struct {
	WD     WD
	Mask   uint32
	Cookie uint32
	Name   string
}

// IsDir reports whether the kernel tagged this event with IN_ISDIR.
func (e RawEvent) IsDir() bool {
	return e.Mask&unix.IN_ISDIR == unix.IN_ISDIR
}

const inotifyEventSize = unix.SizeofInotifyEvent

// eventBufSize mirrors the original's static 64KiB read buffer; large enough
// to drain many events from one read(2) without growing unbounded.
const eventBufSize = 64 * 1024

// Iterator decodes the events delivered by a single read(2) on an inotify
// file descriptor. It splits that work the way the original source does,
// into a Fill step that performs the (blocking) read, and a Next step that
// only walks an already-filled buffer — so a caller can drain exactly the
// events the kernel had queued at poll(2) time without the decode loop
// itself blocking on a second read. A single Iterator is not safe for
// concurrent use; the daemon loop uses one from a single goroutine, matching
// the single-threaded poll/drain design of §5.
type Iterator struct {
	fd  int
	buf [eventBufSize]byte
	off int
	n   int
}

// NewIterator returns an Iterator that reads from fd on demand.
func NewIterator(fd int) *Iterator {
	return &Iterator{fd: fd}
}

// Fill performs one read(2) into the iterator's buffer, discarding any
// events left over from a previous fill (there should never be any: Next is
// expected to be called until exhausted before Fill is called again). It
// returns ok=false if the read returned zero bytes.
func (it *Iterator) Fill() (ok bool, err error) {
	n, err := ignoringEINTR(func() (int, error) {
		return unix.Read(it.fd, it.buf[:])
	})
	if err != nil {
		return false, err
	}
	it.off = 0
	it.n = n
	return n > 0, nil
}

// Next decodes the next event from the current buffer. It returns
// ok=false, err=nil once the buffer is exhausted — the caller must Fill
// again before calling Next further. A malformed or truncated event record
// is reported as an error, mirroring the original's fatal exit on a short
// or inconsistent read.
func (it *Iterator) Next() (ev RawEvent, ok bool, err error) {
	if it.off >= it.n {
		return RawEvent{}, false, nil
	}

	if it.off+inotifyEventSize > it.n {
		return RawEvent{}, false, fmt.Errorf("dirwatch: truncated inotify event header at offset %d of %d bytes", it.off, it.n)
	}

	raw := (*unix.InotifyEvent)(unsafe.Pointer(&it.buf[it.off]))
	nameLen := int(raw.Len)
	start := it.off + inotifyEventSize
	if start+nameLen > it.n {
		return RawEvent{}, false, fmt.Errorf("dirwatch: truncated inotify event name at offset %d of %d bytes", it.off, it.n)
	}

	name := ""
	if nameLen > 0 {
		// The kernel NUL-pads the name field to a 4-byte boundary; trim
		// at the first NUL.
		nameBytes := it.buf[start : start+nameLen]
		for i, b := range nameBytes {
			if b == 0 {
				nameBytes = nameBytes[:i]
				break
			}
		}
		name = string(nameBytes)
	}

	ev = RawEvent{
		WD:     WD(raw.Wd),
		Mask:   raw.Mask,
		Cookie: raw.Cookie,
		Name:   name,
	}
	it.off = start + nameLen
	return ev, true, nil
}
