// Command tasmc drives the compiler core from the command line: it
// reads a JSON-encoded typed AST (the serialized output of an external
// parser/checker) from a path argument or stdin and runs it through the
// Stack Manager, Monomorphizer, and Codegen Emitter.
package main

import (
	"fmt"
	"os"

	"github.com/vybium/tasmc/internal/tasmc/astjson"
	"github.com/vybium/tasmc/pkg/tasmc"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "compile":
		cmdCompile(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	case "cost":
		cmdCost(os.Args[2:])
	case "fmt":
		cmdFmt(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tasmc <compile|check|cost|fmt> [entry] [-target=triton|miden|openvm]")
}

func cmdCompile(args []string) {
	path, target := parseArgs(args)
	file, err := readFile(path)
	if err != nil {
		fatal(err.Error())
	}

	opts := tasmc.DefaultCompileOptions().WithTarget(target)
	res, err := tasmc.Compile(file, opts)
	if err != nil {
		fatal(err.Error())
	}
	for _, d := range res.Diagnostics {
		logStderr("diagnostic: " + d)
	}
	fmt.Println(res.Assembly)
}

func cmdCheck(args []string) {
	path, target := parseArgs(args)
	file, err := readFile(path)
	if err != nil {
		fatal(err.Error())
	}

	opts := tasmc.DefaultCompileOptions().WithTarget(target).WithStrictMode(true)
	if _, err := tasmc.Compile(file, opts); err != nil {
		fatal(err.Error())
	}
	logStderr("ok")
}

func cmdCost(_ []string) {
	logStderr("cost: not implemented in the core — the cost analyzer is a separate collaborator")
	os.Exit(1)
}

func cmdFmt(_ []string) {
	logStderr("fmt: not implemented in the core — formatting is a separate collaborator")
	os.Exit(1)
}

// parseArgs splits a subcommand's arguments into the entry path
// ("" meaning stdin) and the -target= flag (defaulting to triton).
func parseArgs(args []string) (path, target string) {
	target = "triton"
	for _, a := range args {
		if len(a) > len("-target=") && a[:len("-target=")] == "-target=" {
			target = a[len("-target="):]
			continue
		}
		if path == "" {
			path = a
		}
	}
	return path, target
}

func readFile(path string) (*tasmc.File, error) {
	var f *os.File
	if path == "" || path == "-" {
		f = os.Stdin
	} else {
		var err error
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
	}
	return astjson.Decode(f)
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "tasmc:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
