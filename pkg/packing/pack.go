package packing

import "fmt"

// P8 packs v into one byte.
func P8(_ Context, v uint8) []byte {
	return []byte{v}
}

// P16 packs v into two bytes.
func P16(ctx Context, v uint16) []byte {
	return ctx.Arch.Endian.order().AppendUint16(nil, v)
}

// P32 packs v into four bytes.
func P32(ctx Context, v uint32) []byte {
	return ctx.Arch.Endian.order().AppendUint32(nil, v)
}

// P64 packs v into eight bytes.
func P64(ctx Context, v uint64) []byte {
	return ctx.Arch.Endian.order().AppendUint64(nil, v)
}

// U8 unpacks the first byte of b.
func U8(_ Context, b []byte) (uint8, error) {
	if len(b) < 1 {
		return 0, fmt.Errorf("%w: need 1 byte, got %d", ErrShortInput, len(b))
	}
	return b[0], nil
}

// U16 unpacks the first two bytes of b.
func U16(ctx Context, b []byte) (uint16, error) {
	if len(b) < 2 {
		return 0, fmt.Errorf("%w: need 2 bytes, got %d", ErrShortInput, len(b))
	}
	return ctx.Arch.Endian.order().Uint16(b), nil
}

// U32 unpacks the first four bytes of b.
func U32(ctx Context, b []byte) (uint32, error) {
	if len(b) < 4 {
		return 0, fmt.Errorf("%w: need 4 bytes, got %d", ErrShortInput, len(b))
	}
	return ctx.Arch.Endian.order().Uint32(b), nil
}

// U64 unpacks the first eight bytes of b.
func U64(ctx Context, b []byte) (uint64, error) {
	if len(b) < 8 {
		return 0, fmt.Errorf("%w: need 8 bytes, got %d", ErrShortInput, len(b))
	}
	return ctx.Arch.Endian.order().Uint64(b), nil
}

// Pack packs v at the native word size of ctx.Arch.
func Pack(ctx Context, v uint64) ([]byte, error) {
	return packWidth(ctx, v, ctx.Arch.Bits)
}

func packWidth(ctx Context, v uint64, bits int) ([]byte, error) {
	if bits < 64 && v>>bits != 0 {
		return nil, fmt.Errorf("%w: %#x in %d bits", ErrOverflow, v, bits)
	}
	switch bits {
	case 8:
		return P8(ctx, uint8(v)), nil
	case 16:
		return P16(ctx, uint16(v)), nil
	case 32:
		return P32(ctx, uint32(v)), nil
	case 64:
		return P64(ctx, v), nil
	default:
		return nil, fmt.Errorf("%w: %d bits", ErrUnsupported, bits)
	}
}

// Unpack reads one native word from b.
func Unpack(ctx Context, b []byte) (uint64, error) {
	switch ctx.Arch.Bits {
	case 8:
		v, err := U8(ctx, b)
		return uint64(v), err
	case 16:
		v, err := U16(ctx, b)
		return uint64(v), err
	case 32:
		v, err := U32(ctx, b)
		return uint64(v), err
	case 64:
		return U64(ctx, b)
	default:
		return 0, fmt.Errorf("%w: %d bits", ErrUnsupported, ctx.Arch.Bits)
	}
}
