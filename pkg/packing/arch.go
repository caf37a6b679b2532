// Package packing converts integers to and from their in-memory byte
// layout for a target architecture.
//
// There is no global context: every call takes a Context value.
package packing

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Endianness is the byte order of a target.
type Endianness uint8

const (
	Little Endianness = iota
	Big
)

// String returns the endianness name.
func (e Endianness) String() string {
	if e == Big {
		return "big"
	}
	return "little"
}

// byteOrder reads and appends fixed-width integers.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func (e Endianness) order() byteOrder {
	if e == Big {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Arch describes the word layout of a target.
type Arch struct {
	Name   string
	Endian Endianness
	Bits   int
}

// WordSize returns the native word size in bytes.
func (a Arch) WordSize() int {
	return a.Bits / 8
}

func (a Arch) String() string {
	return fmt.Sprintf("%s (%d-bit %s-endian)", a.Name, a.Bits, a.Endian)
}

// Known architectures.
var (
	AARCH64   = Arch{"aarch64", Little, 64}
	ALPHA     = Arch{"alpha", Little, 64}
	AVR       = Arch{"avr", Little, 8}
	AMD64     = Arch{"amd64", Little, 64}
	ARM       = Arch{"arm", Little, 32}
	CRIS      = Arch{"cris", Little, 32}
	I386      = Arch{"i386", Little, 32}
	IA64      = Arch{"ia64", Big, 64}
	M68K      = Arch{"m68k", Big, 32}
	MIPS      = Arch{"mips", Little, 32}
	MIPS64    = Arch{"mips64", Little, 64}
	MSP430    = Arch{"msp430", Little, 16}
	POWERPC   = Arch{"powerpc", Big, 32}
	POWERPC64 = Arch{"powerpc64", Big, 64}
	S390      = Arch{"s390", Big, 32}
	SPARC     = Arch{"sparc", Big, 32}
	SPARC64   = Arch{"sparc64", Big, 64}
	THUMB     = Arch{"thumb", Little, 32}
	VAX       = Arch{"vax", Little, 32}
)

var archs = map[string]Arch{}

func init() {
	for _, a := range []Arch{
		AARCH64, ALPHA, AVR, AMD64, ARM, CRIS, I386, IA64, M68K, MIPS,
		MIPS64, MSP430, POWERPC, POWERPC64, S390, SPARC, SPARC64, THUMB, VAX,
	} {
		archs[a.Name] = a
	}
	// Common aliases.
	archs["x86_64"] = AMD64
	archs["x86"] = I386
	archs["arm64"] = AARCH64
	archs["ppc"] = POWERPC
	archs["ppc64"] = POWERPC64
}

// ParseArch looks up an architecture by name (case-insensitive).
func ParseArch(name string) (Arch, error) {
	a, ok := archs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Arch{}, fmt.Errorf("%w: %q", ErrUnknownArch, name)
	}
	return a, nil
}

// Context carries the target layout used by every packing call.
type Context struct {
	Arch Arch
}

// DefaultContext targets i386.
func DefaultContext() Context {
	return Context{Arch: I386}
}

// WithArch returns a copy of c targeting arch.
func (c Context) WithArch(arch Arch) Context {
	c.Arch = arch
	return c
}

// WithEndian returns a copy of c with the byte order replaced.
func (c Context) WithEndian(e Endianness) Context {
	c.Arch.Endian = e
	return c
}
