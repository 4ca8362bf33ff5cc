package dirwatch

import (
	"fmt"
	"log/syslog"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	lSyslog "github.com/sirupsen/logrus/hooks/syslog"
)

// NewLogger returns a logrus.Logger writing to stderr and to two hooked
// sinks: the local syslog daemon, and a single-slot "mailbox" file that always holds the text of
// the most recent error-or-above entry. debug raises the logger's level
// floor to logrus.DebugLevel; otherwise it sits at logrus.InfoLevel, the
// nearest logrus level above the original's LOG_NOTICE floor.
//
// notifyDir is the directory batch files are written to; the mailbox file
// is written alongside them as error.txt, per the design notes' pairing of
// notification output and error reporting in one directory.
func NewLogger(notifyDir string, debug bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	hook, err := lSyslog.NewSyslogHook("", "", syslog.LOG_USER, "dirwatchd")
	if err != nil {
		return nil, fmt.Errorf("dirwatch: connecting to syslog: %w", err)
	}
	log.AddHook(hook)
	log.AddHook(newErrorMailboxHook(filepath.Join(notifyDir, "error.txt")))
	return log, nil
}

// errorMailboxHook truncates and rewrites a single file with the text of
// the most recent Error-level-or-above log entry, so a supervising process
// can read the last fatal reason without parsing syslog.
type errorMailboxHook struct {
	mu   sync.Mutex
	path string
}

func newErrorMailboxHook(path string) *errorMailboxHook {
	return &errorMailboxHook{path: path}
}

func (h *errorMailboxHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel}
}

func (h *errorMailboxHook) Fire(entry *logrus.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return os.WriteFile(h.path, []byte(line), 0o600)
}

// Notice logs at logrus's INFO level, tagging the entry with notice=true so
// a syslog reader can still tell a NOTICE-priority message apart from a
// routine INFO one — logrus has no level between INFO and WARNING.
func Notice(log logrus.FieldLogger, format string, args ...interface{}) {
	log.WithField("notice", true).Infof(format, args...)
}
