package packing

import (
	"fmt"
	"slices"
)

// Filler replaces bytes that FlatAt leaves unset.
const Filler byte = 'a'

// Field places a value at a fixed offset in FlatAt output.
type Field struct {
	Offset int
	Value  any
}

// Flat concatenates the flattened form of each item.
//
// Bytes, strings and []byte are copied as-is. uint16, uint32 and
// uint64 are packed at their own width; int and uint at the native word
// size. Slices of these types are flattened element by element.
func Flat(ctx Context, items ...any) ([]byte, error) {
	var out []byte
	for _, item := range items {
		b, err := flatten(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// FlatAt lays fields out at their offsets. Gaps are filled with Filler.
// Overlapping fields return ErrOverlap.
func FlatAt(ctx Context, fields ...Field) ([]byte, error) {
	sorted := slices.Clone(fields)
	slices.SortStableFunc(sorted, func(a, b Field) int { return a.Offset - b.Offset })

	var out []byte
	end := 0
	for _, f := range sorted {
		if f.Offset < 0 {
			return nil, fmt.Errorf("negative offset %d", f.Offset)
		}
		b, err := flatten(ctx, f.Value)
		if err != nil {
			return nil, err
		}
		if len(b) == 0 {
			continue
		}
		if f.Offset < end {
			return nil, fmt.Errorf("%w: offset %d overlaps data ending at %d", ErrOverlap, f.Offset, end)
		}
		for len(out) < f.Offset {
			out = append(out, Filler)
		}
		out = append(out, b...)
		end = len(out)
	}
	return out, nil
}

func flatten(ctx Context, item any) ([]byte, error) {
	switch v := item.(type) {
	case uint8:
		return []byte{v}, nil
	case []byte:
		return slices.Clone(v), nil
	case string:
		return []byte(v), nil
	case uint16:
		return P16(ctx, v), nil
	case uint32:
		return P32(ctx, v), nil
	case uint64:
		return P64(ctx, v), nil
	case int:
		if v < 0 {
			return packWidth(ctx, uint64(v)&wordMask(ctx.Arch.Bits), ctx.Arch.Bits)
		}
		return Pack(ctx, uint64(v))
	case uint:
		return Pack(ctx, uint64(v))
	case []uint16:
		return flattenSlice(ctx, v)
	case []uint32:
		return flattenSlice(ctx, v)
	case []uint64:
		return flattenSlice(ctx, v)
	case []int:
		return flattenSlice(ctx, v)
	case []string:
		return flattenSlice(ctx, v)
	case []any:
		return Flat(ctx, v...)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnflattenable, item)
	}
}

func flattenSlice[T any](ctx Context, items []T) ([]byte, error) {
	var out []byte
	for _, item := range items {
		b, err := flatten(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}

// wordMask truncates negative ints to two's complement at the word size.
func wordMask(bits int) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return 1<<bits - 1
}
