package tube

import "bytes"

// Buffer is an ordered byte queue with partial consumption and push-back.
// The zero value is an empty buffer ready to use.
//
// A Buffer is owned by exactly one transport handle and is not safe for
// concurrent use.
type Buffer struct {
	data []byte
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Len returns the number of bytes currently held.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Add appends data to the tail. The bytes are copied.
func (b *Buffer) Add(data []byte) {
	b.data = append(b.data, data...)
}

// Get drains and returns the first n bytes.
// If n <= 0 or n >= Len, the whole buffer is drained.
func (b *Buffer) Get(n int) []byte {
	if n <= 0 || n >= len(b.data) {
		out := b.data
		b.data = nil
		if out == nil {
			return []byte{}
		}
		return out
	}

	out := make([]byte, n)
	copy(out, b.data[:n])
	b.data = b.data[n:]
	return out
}

// Unget pushes data back onto the head of the buffer, keeping its order,
// so a following Get(len(data)) returns data unchanged.
func (b *Buffer) Unget(data []byte) {
	if len(data) == 0 {
		return
	}
	merged := make([]byte, 0, len(data)+len(b.data))
	merged = append(merged, data...)
	merged = append(merged, b.data...)
	b.data = merged
}

// Bytes returns the buffered bytes without consuming them.
// The slice aliases the buffer and is only valid until the next mutation.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Index returns the position of the left-most occurrence of delim,
// or -1 if delim is not buffered.
func (b *Buffer) Index(delim []byte) int {
	return bytes.Index(b.data, delim)
}
