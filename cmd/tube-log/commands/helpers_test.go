package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pwngo/pwn/pkg/log"
)

var testTime = time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test"+log.FileExtension)

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

// sessionEvents is a small client session: connect, send, receive, close.
func sessionEvents() []log.Event {
	return []log.Event{
		{
			Timestamp: testTime, ConnectionID: "abcdef0123456789", Direction: log.DirectionOut,
			Category: log.CategoryState, LocalRole: log.RoleClient, RemoteAddr: "10.0.0.5:1337",
			StateChange: &log.StateChangeEvent{NewState: log.StateConnecting},
		},
		{
			Timestamp: testTime.Add(time.Millisecond), ConnectionID: "abcdef0123456789", Direction: log.DirectionOut,
			Category: log.CategoryData, LocalRole: log.RoleClient, RemoteAddr: "10.0.0.5:1337",
			Data: log.NewDataEvent([]byte("id\n")),
		},
		{
			Timestamp: testTime.Add(2 * time.Millisecond), ConnectionID: "abcdef0123456789", Direction: log.DirectionIn,
			Category: log.CategoryData, LocalRole: log.RoleClient, RemoteAddr: "10.0.0.5:1337",
			Data: log.NewDataEvent([]byte("uid=0(root)\n\x00")),
		},
		{
			Timestamp: testTime.Add(3 * time.Millisecond), ConnectionID: "abcdef0123456789", Direction: log.DirectionIn,
			Category: log.CategoryError, LocalRole: log.RoleClient,
			Error: &log.ErrorEventData{Message: "EOF", Context: "read"},
		},
		{
			Timestamp: testTime.Add(4 * time.Millisecond), ConnectionID: "abcdef0123456789", Direction: log.DirectionIn,
			Category: log.CategoryState, LocalRole: log.RoleClient,
			StateChange: &log.StateChangeEvent{OldState: log.StateConnected, NewState: log.StateClosed},
		},
	}
}
