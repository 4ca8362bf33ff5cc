package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/watchtree/dirwatch"
)

// Config holds the four positional arguments the daemon is invoked with:
//
//	dirwatchd <parent-pid> <config-file> <exclude-file> <notify-dir>
type Config struct {
	ParentPID   int
	ConfigPath  string
	ExcludePath string
	NotifyDir   string
}

// ParseArgs parses the four fixed positional arguments. It does not touch
// the filesystem; LoadLines does that once the config is known to be
// well-formed.
func ParseArgs(args []string) (Config, error) {
	if len(args) != 4 {
		return Config{}, fmt.Errorf("%w: usage: dirwatchd <parent-pid> <config-file> <exclude-file> <notify-dir>", dirwatch.ErrConfig)
	}
	pid, err := strconv.Atoi(args[0])
	if err != nil {
		return Config{}, fmt.Errorf("%w: parent-pid %q: %v", dirwatch.ErrConfig, args[0], err)
	}
	return Config{
		ParentPID:   pid,
		ConfigPath:  args[1],
		ExcludePath: args[2],
		NotifyDir:   args[3],
	}, nil
}

// LoadLines reads a newline-delimited file, returning one entry per line
// with the trailing newline stripped. Empty lines are kept, matching §6's
// "empty lines permitted".
func LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dirwatch.ErrConfig, path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", dirwatch.ErrConfig, path, err)
	}
	return lines, nil
}
