// Command dirwatchd watches a configured set of directory trees for
// filesystem changes and writes batches of the changed parent directories
// to sequentially numbered files in a notify directory.
//
// Usage:
//
//	dirwatchd <parent-pid> <config-file> <exclude-file> <notify-dir>
package main

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/watchtree/dirwatch"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}

	// Notification files can reveal directory layout; restrict them and
	// anything else this process creates to the owner.
	unix.Umask(0o077)

	log, err := dirwatch.NewLogger(cfg.NotifyDir, os.Getenv("DIRWATCH_DEBUG") != "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}

	roots, err := LoadLines(cfg.ConfigPath)
	if err != nil {
		log.WithError(err).Error("loading config file")
		return exitCodeFor(err)
	}
	excludes, err := LoadLines(cfg.ExcludePath)
	if err != nil {
		log.WithError(err).Error("loading exclude file")
		return exitCodeFor(err)
	}

	d, err := dirwatch.NewDaemon(roots, dirwatch.NewExcludeSet(excludes), cfg.NotifyDir, cfg.ParentPID, log)
	if err != nil {
		log.WithError(err).Error("starting daemon")
		return exitCodeFor(err)
	}
	defer d.Close()

	if err := d.Run(); err != nil {
		log.WithError(err).Error("daemon exiting")
		return exitCodeFor(err)
	}
	return 0
}

// exitCodeFor maps a sentinel error to a distinguished process exit code.
// ErrQueueOverflow gets a code of its own, distinct from every
// configuration/IO failure, so a supervising process can tell "lost
// events, force a rescan" apart from "fix your config and restart".
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, dirwatch.ErrQueueOverflow):
		return 16
	case errors.Is(err, dirwatch.ErrCookieAnomaly):
		return 17
	case errors.Is(err, dirwatch.ErrUnresolvedParent):
		return 19
	case errors.Is(err, dirwatch.ErrPathOverflow):
		return 20
	case errors.Is(err, dirwatch.ErrInotifyInit):
		return 21
	case errors.Is(err, dirwatch.ErrWatchAdd):
		return 22
	case errors.Is(err, dirwatch.ErrBatchIO):
		return 23
	case errors.Is(err, dirwatch.ErrConfig):
		return 24
	default:
		return 1
	}
}
