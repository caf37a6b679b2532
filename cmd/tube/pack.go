package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pwngo/pwn/pkg/config"
	tubelog "github.com/pwngo/pwn/pkg/log"
	"github.com/pwngo/pwn/pkg/packing"
)

func runPack(args []string, w io.Writer) error {
	fs, g := newFlagSet("pack", "<value>...", "Print integers packed for a target architecture")
	arch := fs.String("arch", "", "Target architecture (default from config: i386)")
	bits := fs.Int("bits", 0, "Pack at this width instead of the word size (8, 16, 32, 64)")
	raw := fs.Bool("raw", false, "Write raw bytes instead of a quoted string")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("at least one value required")
	}

	cfg, err := g.load(fs)
	if err != nil {
		return err
	}
	out, err := packValues(cfg, *arch, *bits, fs.Args())
	if err != nil {
		return err
	}

	if *raw {
		_, err = w.Write(out)
		return err
	}
	_, err = fmt.Fprintln(w, tubelog.QuoteBytes(out))
	return err
}

// packValues packs each value (decimal, 0x hex or 0 octal) and
// concatenates the results.
func packValues(cfg config.Config, arch string, bits int, values []string) ([]byte, error) {
	ctx := cfg.PackingContext()
	if arch != "" {
		a, err := packing.ParseArch(arch)
		if err != nil {
			return nil, err
		}
		ctx = ctx.WithArch(a)
	}
	if bits != 0 {
		ctx.Arch.Bits = bits
	}

	var out []byte
	for _, s := range values {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", s, err)
		}
		b, err := packing.Pack(ctx, v)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return out, nil
}
