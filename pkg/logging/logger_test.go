package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerToJSON(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	var buf bytes.Buffer
	l := NewLoggerTo(&buf)
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", l.GetLevel())
	}

	l.WithField("binary", "ansible-playbook").Debug("resolved")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["binary"] != "ansible-playbook" || entry["msg"] != "resolved" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestNewLoggerToText(t *testing.T) {
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	l := NewLoggerTo(&buf)
	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "msg=shown") {
		t.Fatalf("expected text formatted line, got %q", out)
	}
}
