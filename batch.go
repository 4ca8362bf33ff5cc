package dirwatch

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// BatchEmitter writes the parent directories changed during one drain of
// the event queue to a durable notification file, using the same
// temp-file-then-rename sequence as the original's open_temp_file/
// rename_temp_file: the file is written under a fixed temporary name in the
// notify directory and atomically renamed to its final, sequentially
// numbered name only once it is complete, so a reader polling the directory
// never observes a partially written batch.
type BatchEmitter struct {
	dir     string
	tmpName string
	seq     uint64
}

// NewBatchEmitter returns a BatchEmitter that writes into dir, starting its
// sequence counter at 1.
func NewBatchEmitter(dir string) *BatchEmitter {
	return &BatchEmitter{dir: dir, tmpName: "temp", seq: 1}
}

// Emit writes paths, duplicates and all, to the next sequentially numbered
// file in the notify directory, one path per line. An empty paths slice
// writes nothing and returns ("", nil), matching the original's rule that
// a drain producing no changes produces no file.
func (b *BatchEmitter) Emit(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}

	tmpPath := filepath.Join(b.dir, b.tmpName)
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %v", ErrBatchIO, tmpPath, err)
	}

	w := bufio.NewWriter(f)
	for _, p := range paths {
		if _, err := fmt.Fprintln(w, p); err != nil {
			f.Close()
			return "", fmt.Errorf("%w: writing %s: %v", ErrBatchIO, tmpPath, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: flushing %s: %v", ErrBatchIO, tmpPath, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: closing %s: %v", ErrBatchIO, tmpPath, err)
	}

	finalName := fmt.Sprintf("%08d.txt", b.seq)
	finalPath := filepath.Join(b.dir, finalName)
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return "", fmt.Errorf("%w: renaming %s to %s: %v", ErrBatchIO, tmpPath, finalPath, err)
	}
	b.seq++
	return finalPath, nil
}
