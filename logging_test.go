package dirwatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestErrorMailboxHookWritesLatestError(t *testing.T) {
	dir := t.TempDir()
	mailbox := filepath.Join(dir, "error.txt")

	log := logrus.New()
	log.SetOutput(discardWriter{})
	log.AddHook(newErrorMailboxHook(mailbox))

	log.Info("this should not appear in the mailbox")
	log.Error("first failure")
	log.Error("second failure")

	data, err := os.ReadFile(mailbox)
	if err != nil {
		t.Fatalf("ReadFile: %s", err)
	}
	if !strings.Contains(string(data), "second failure") {
		t.Fatalf("mailbox = %q, want it to contain the most recent error", data)
	}
	if strings.Contains(string(data), "first failure") {
		t.Fatalf("mailbox = %q, want it truncated to only the latest error", data)
	}
}

func TestNoticeTagsEntry(t *testing.T) {
	log := logrus.New()
	log.SetOutput(discardWriter{})

	var captured *logrus.Entry
	log.AddHook(captureHook{capture: &captured})

	Notice(log, "hello %s", "world")

	if captured == nil {
		t.Fatalf("expected a log entry to be captured")
	}
	if captured.Message != "hello world" {
		t.Fatalf("message = %q, want %q", captured.Message, "hello world")
	}
	if notice, _ := captured.Data["notice"].(bool); !notice {
		t.Fatalf("expected notice=true field, got %v", captured.Data["notice"])
	}
}

type captureHook struct {
	capture **logrus.Entry
}

func (captureHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h captureHook) Fire(entry *logrus.Entry) error {
	*h.capture = entry
	return nil
}
