// Command tube talks to a TCP peer interactively.
//
// Usage:
//
//	tube <command> [flags] [args]
//
// Commands:
//
//	connect  Connect to host:port and hand the session to the terminal
//	listen   Wait for one peer and hand the session to the terminal
//	browse   List listeners advertised via mDNS
//	pack     Print integers packed for a target architecture
//
// Global flags (accepted by every command):
//
//	-config string     Configuration file (.yaml, .yml or .toml)
//	-log-level string  Log level: debug, info, warn, error
//	-capture string    Write a traffic capture (CBOR) to this file
//	-no-color          Disable colored output
//
// Examples:
//
//	# Talk to a service
//	tube connect ctf.example.com 1337
//
//	# Catch a reverse shell on port 4444 and advertise it on the LAN
//	tube listen -port 4444 -advertise
//
//	# Record a session for later inspection with tube-log
//	tube connect -capture session.tlog 10.0.0.5 9001
//
//	# Pack an address for amd64
//	tube pack -arch amd64 0x401136
package main

import (
	"fmt"
	"os"
)

const usage = `tube - interactive TCP tubes

Usage:
  tube <command> [flags] [args]

Commands:
  connect  Connect to host:port and hand the session to the terminal
  listen   Wait for one peer and hand the session to the terminal
  browse   List listeners advertised via mDNS
  pack     Print integers packed for a target architecture

Use "tube <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "connect":
		err = runConnect(args)
	case "listen":
		err = runListen(args)
	case "browse":
		err = runBrowse(args)
	case "pack":
		err = runPack(args, os.Stdout)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
