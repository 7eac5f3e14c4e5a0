package logger

import (
	"errors"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLoggerAddsServiceAndAction(t *testing.T) {
	l, hook := test.NewNullLogger()
	lg := NewWithLogger("board", l)

	lg.Info("order_appended", map[string]any{"order_id": "7"})

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected an entry")
	}
	if entry.Level != log.InfoLevel || entry.Message != "order_appended" {
		t.Fatalf("unexpected entry %v %q", entry.Level, entry.Message)
	}
	if entry.Data["service"] != "board" || entry.Data["action"] != "order_appended" || entry.Data["order_id"] != "7" {
		t.Fatalf("unexpected fields %v", entry.Data)
	}
}

func TestLoggerErrorCarriesError(t *testing.T) {
	l, hook := test.NewNullLogger()
	lg := NewWithLogger("syncer", l).With(map[string]any{"display": "line-1"})

	lg.Error("publish_failed", errors.New("nack"), nil)

	entry := hook.LastEntry()
	if entry.Level != log.ErrorLevel {
		t.Fatalf("expected error level, got %v", entry.Level)
	}
	if err, ok := entry.Data[log.ErrorKey].(error); !ok || err.Error() != "nack" {
		t.Fatalf("expected error field, got %v", entry.Data)
	}
	if entry.Data["display"] != "line-1" {
		t.Fatalf("expected inherited field, got %v", entry.Data)
	}
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(log.InfoLevel)
	NewWithLogger("board", l).Debug("tick", nil)
	if len(hook.AllEntries()) != 0 {
		t.Fatalf("expected debug to be filtered, got %d entries", len(hook.AllEntries()))
	}
}
