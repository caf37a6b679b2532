package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pwngo/pwn/pkg/log"
)

// jsonEvent is the JSONL shape of an event. Payload bytes are quoted so
// binary data survives as readable text.
type jsonEvent struct {
	Timestamp    string `json:"timestamp"`
	ConnectionID string `json:"connection_id"`
	Direction    string `json:"direction"`
	Category     string `json:"category"`
	Role         string `json:"role"`
	LocalAddr    string `json:"local_addr,omitempty"`
	RemoteAddr   string `json:"remote_addr,omitempty"`
	Size         *int   `json:"size,omitempty"`
	Data         string `json:"data,omitempty"`
	Truncated    bool   `json:"truncated,omitempty"`
	OldState     string `json:"old_state,omitempty"`
	NewState     string `json:"new_state,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Error        string `json:"error,omitempty"`
	ErrorContext string `json:"error_context,omitempty"`
}

func toJSONEvent(event log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp:    event.Timestamp.UTC().Format(timestampFormat),
		ConnectionID: event.ConnectionID,
		Direction:    event.Direction.String(),
		Category:     event.Category.String(),
		Role:         event.LocalRole.String(),
		LocalAddr:    event.LocalAddr,
		RemoteAddr:   event.RemoteAddr,
	}
	switch {
	case event.Data != nil:
		size := event.Data.Size
		je.Size = &size
		je.Data = string(event.Data.Data)
		je.Truncated = event.Data.Truncated
	case event.StateChange != nil:
		je.OldState = event.StateChange.OldState
		je.NewState = event.StateChange.NewState
		je.Reason = event.StateChange.Reason
	case event.Error != nil:
		je.Error = event.Error.Message
		je.ErrorContext = event.Error.Context
	}
	return je
}

// RunExport exports matching events in the given format (jsonl or csv).
func RunExport(path, format, output string, filter log.Filter) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSONEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "connection_id", "direction", "category", "role", "type", "size", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		size, detail := "", ""
		switch {
		case event.Data != nil:
			size = strconv.Itoa(event.Data.Size)
			detail = log.QuoteBytes(event.Data.Data)
		case event.StateChange != nil:
			detail = event.StateChange.OldState + "->" + event.StateChange.NewState
		case event.Error != nil:
			detail = event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format(timestampFormat),
			event.ConnectionID,
			event.Direction.String(),
			event.Category.String(),
			event.LocalRole.String(),
			eventType(event),
			size,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
