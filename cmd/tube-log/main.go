// Command tube-log views and analyzes tube capture files.
//
// Capture files are written by the tube command with the -capture flag
// (or TUBE_CAPTURE), and by any program that attaches a log.FileLogger
// to a transport.
//
// Usage:
//
//	tube-log <command> [flags] <file.tlog>
//
// Commands:
//
//	view     View capture in human-readable format
//	export   Export capture to JSONL or CSV
//	filter   Filter capture and write to new file
//	stats    Show statistics about the capture
//
// Examples:
//
//	# View everything the peer sent, as a hex dump
//	tube-log view -direction in -hex session.tlog
//
//	# Export to CSV
//	tube-log export -format csv -o session.csv session.tlog
//
//	# Keep one connection
//	tube-log filter -conn-id 3f2a9c1e -o one.tlog session.tlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pwngo/pwn/cmd/tube-log/commands"
)

const usage = `tube-log - Tube Capture Analyzer

Usage:
  tube-log <command> [flags] <file.tlog>

Commands:
  view     View capture in human-readable format
  export   Export capture to JSONL or CSV
  filter   Filter capture and write to new file
  stats    Show statistics about the capture

Use "tube-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the shared filter flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (data, state, error)")
	fs.StringVar(&opts.Role, "role", "", "Filter by local role (client, server)")
	return opts
}

func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tube-log %s - %s

Usage:
  tube-log %s [flags] <file.tlog>

Flags:
`, name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and returns the capture path argument.
func parse(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View capture in human-readable format")
	filterOpts := filterFlags(fs)
	hexDump := fs.Bool("hex", false, "Show data as a hex dump")
	path := parse(fs, args)

	filter, err := filterOpts.Build()
	if err != nil {
		fatal(err)
	}
	if err := commands.RunView(path, commands.ViewOptions{Filter: filter, Hex: *hexDump}, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export capture to JSONL or CSV")
	filterOpts := filterFlags(fs)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parse(fs, args)

	filter, err := filterOpts.Build()
	if err != nil {
		fatal(err)
	}
	if err := commands.RunExport(path, *format, *output, filter); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter capture and write to new file")
	filterOpts := filterFlags(fs)
	output := fs.String("o", "", "Output file (required)")
	path := parse(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	filter, err := filterOpts.Build()
	if err != nil {
		fatal(err)
	}
	count, err := commands.RunFilter(path, *output, filter)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the capture")
	path := parse(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}
