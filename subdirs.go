package dirwatch

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// ListChildren returns the names of the immediate child directories of path,
// skipping "." and "..". It tolerates a path that no longer exists or is not
// a directory by returning an empty, non-error result — the original C
// source's list_sub_dirs treats ENOENT/ENOTDIR as "nothing to report" rather
// than a fatal condition, since the directory may have been moved or removed
// between the caller discovering it and this call running.
//
// Any other failure to open or read the directory is returned to the caller,
// who treats it as fatal per spec §7.
func ListChildren(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, nil
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name() == "." || e.Name() == ".." {
			continue
		}
		// Exact equality against the directory entry type, not a bitmask:
		// the original carries a patch noting that DT_DIR (4) and DT_SOCKET
		// (12) share the bit for 4, so a masked test would misclassify
		// sockets as directories.
		if e.Type() == fs.ModeDir {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
