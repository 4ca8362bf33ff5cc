// Package dirwatch implements the recursive watch-tree manager for a
// long-running filesystem-change notifier. It watches a configurable set of
// top-level directory trees on a Linux host, subscribes to inotify events for
// every directory in those trees (recursively), and emits batches of the
// parent directories whose contents changed during one drain of the kernel
// event queue (a directory may appear more than once in a batch).
//
// The package is organized around the components of the notifier's core:
//
//   - [ListChildren] lists the immediate child directories of a path.
//   - [Iterator] turns one inotify read(2) into a sequence of [RawEvent].
//   - [WDTree] is the bijection between kernel watch descriptors and the
//     absolute paths they watch.
//   - [Manager] adds and removes kernel watches, recursing into
//     sub-directories and repairing the tree on renames.
//   - [Dispatcher] classifies events from an Iterator, drives the Manager
//     and WDTree, and records the parent directories of each change.
//   - [BatchEmitter] writes the parent directories from one drain to a
//     durable, sequentially numbered notification file.
//
// [Daemon] wires these together into the single-threaded poll/drain loop
// described by the notifier's design, stopping when the parent process goes
// away or poll(2) is interrupted. Reading and parsing command-line arguments
// and the two configuration files are left to the caller (see
// cmd/dirwatchd).
package dirwatch
