package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pwngo/pwn/pkg/log"
)

func TestFilterWritesMatchingEvents(t *testing.T) {
	events := append(sessionEvents(), log.Event{
		Timestamp: testTime, ConnectionID: "other-conn", Category: log.CategoryData,
		Data: log.NewDataEvent([]byte("x")),
	})
	path := createTestLogFile(t, events)
	out := filepath.Join(t.TempDir(), "filtered.tlog")

	count, err := RunFilter(path, out, log.Filter{ConnectionID: "other-conn"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	got, err := reader.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ConnectionID != "other-conn" {
		t.Errorf("filtered file = %+v", got)
	}
}

func TestFilterByTime(t *testing.T) {
	path := createTestLogFile(t, sessionEvents())
	out := filepath.Join(t.TempDir(), "late.tlog")

	start := testTime.Add(2 * time.Millisecond)
	count, err := RunFilter(path, out, log.Filter{TimeStart: &start})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestFilterMissingInput(t *testing.T) {
	if _, err := RunFilter("/nonexistent.tlog", filepath.Join(t.TempDir(), "x.tlog"), log.Filter{}); err == nil {
		t.Error("expected error for missing input")
	}
}
