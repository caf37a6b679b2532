package log

import "time"

// MaxDataSize is the largest payload stored in a single DataEvent.
// Larger chunks are truncated; Size keeps the real length.
const MaxDataSize = 4096

// Event is one captured occurrence on a connection.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction of the data flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// LocalRole tells whether the local side dialed or accepted.
	LocalRole Role `cbor:"5,keyasint,omitempty"`

	// LocalAddr is the local socket address.
	LocalAddr string `cbor:"6,keyasint,omitempty"`

	// RemoteAddr is the peer address (host:port).
	RemoteAddr string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Data        *DataEvent        `cbor:"8,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"9,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"10,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates bytes read from the peer.
	DirectionIn Direction = 0
	// DirectionOut indicates bytes sent to the peer.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryData indicates raw bytes crossing the connection.
	CategoryData Category = 0
	// CategoryState indicates a connection state change.
	CategoryState Category = 1
	// CategoryError indicates an I/O failure.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryData:
		return "DATA"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Role indicates how the local side obtained the connection.
type Role uint8

const (
	// RoleUnknown is used when the role was not recorded.
	RoleUnknown Role = 0
	// RoleClient indicates an actively dialed connection (Remote).
	RoleClient Role = 1
	// RoleServer indicates an accepted connection (Listen).
	RoleServer Role = 2
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "CLIENT"
	case RoleServer:
		return "SERVER"
	default:
		return "UNKNOWN"
	}
}

// DataEvent captures raw bytes.
type DataEvent struct {
	// Size is the number of bytes transferred.
	Size int `cbor:"1,keyasint"`

	// Data is the transferred bytes (may be truncated for large chunks).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewDataEvent builds a DataEvent, truncating data to MaxDataSize.
// The bytes are copied.
func NewDataEvent(data []byte) *DataEvent {
	ev := &DataEvent{Size: len(data)}
	if len(data) > MaxDataSize {
		data = data[:MaxDataSize]
		ev.Truncated = true
	}
	ev.Data = append([]byte(nil), data...)
	return ev
}

// Connection state names used in StateChangeEvent.
const (
	StateListening  = "LISTENING"
	StateConnecting = "CONNECTING"
	StateConnected  = "CONNECTED"
	StateClosed     = "CLOSED"
)

// StateChangeEvent captures connection lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures an I/O failure.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
