package transport

import "github.com/pwngo/pwn/pkg/tube"

// Compile-time interface satisfaction checks.
var (
	_ tube.Transport  = (*Sock)(nil)
	_ tube.Transport  = (*Remote)(nil)
	_ tube.Transport  = (*Listener)(nil)
	_ tube.Duplicator = (*Sock)(nil)
	_ tube.Duplicator = (*Remote)(nil)
	_ tube.Duplicator = (*Listener)(nil)
)
