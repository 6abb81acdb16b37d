// Command asn1cst is a CLI tool for parsing ASN.1 modules into concrete
// syntax trees and checking them for syntax errors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/golangsnmp/asn1cst"
	"github.com/golangsnmp/asn1cst/cmd/internal/cliutil"
)

// Exit codes.
const (
	exitOK              = 0 // success
	exitError           = 1 // user error or processing failure
	exitStrictViolation = 2 // check found diagnostics at the failure threshold
)

const usage = `asn1cst - ASN.1 concrete syntax tree tool

Usage:
  asn1cst <command> [options] [arguments]

Commands:
  parse   Parse modules and print their syntax trees
  tokens  Print the token stream of a file
  check   Check modules for syntax errors (linter mode)
  deps    Show the import order of modules
  schema  Print the node type schema of the grammar
  paths   Show ASN.1 search paths
  version Show version

Arguments naming a file are read from disk. Any other argument is looked
up as a module name in the search paths, and "-" reads standard input.

Common options:
  -p, --path PATH   Add ASN.1 search path (repeatable)
  -v, --verbose     Enable debug logging
  -vv               Enable trace logging (implies -v)
  -h, --help        Show help

Examples:
  asn1cst parse Basic-Types.asn
  asn1cst parse --format json -p testdata/corpus Basic-Types
  asn1cst tokens Basic-Types.asn
  asn1cst check -p testdata/corpus
  asn1cst deps -p testdata/corpus
  asn1cst schema --format yaml
  asn1cst paths
`

type cli struct {
	verbose  int
	paths    []string
	helpFlag bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	var c cli
	args := os.Args[1:]
	var cmdArgs []string
	var cmd string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			c.helpFlag = true
		case arg == "-v" || arg == "--verbose":
			if c.verbose < 1 {
				c.verbose = 1
			}
		case arg == "-vv":
			c.verbose = 2
		case arg == "-p" || arg == "--path":
			if i+1 < len(args) {
				i++
				c.paths = append(c.paths, args[i])
			}
		case strings.HasPrefix(arg, "-p"):
			c.paths = append(c.paths, arg[2:])
		case strings.HasPrefix(arg, "--path="):
			c.paths = append(c.paths, arg[7:])
		case arg == "-":
			cmdArgs = append(cmdArgs, arg)
		case len(arg) > 0 && arg[0] == '-':
			cmdArgs = append(cmdArgs, arg)
		default:
			if cmd == "" {
				cmd = arg
			} else {
				cmdArgs = append(cmdArgs, arg)
			}
		}
	}

	if c.helpFlag && cmd == "" {
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	}

	if cmd == "" {
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitError
	}

	switch cmd {
	case "parse":
		return c.cmdParse(cmdArgs)
	case "tokens":
		return c.cmdTokens(cmdArgs)
	case "check":
		return c.cmdCheck(cmdArgs)
	case "deps":
		return c.cmdDeps(cmdArgs)
	case "schema":
		return c.cmdSchema(cmdArgs)
	case "paths":
		return c.cmdPaths(cmdArgs)
	case "version":
		printVersion()
		return exitOK
	case "help":
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitError
	}
}

func (c *cli) setupLogger() *slog.Logger {
	if c.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.verbose >= 2 {
		level = asn1cst.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// options returns the parser options shared by all commands.
func (c *cli) options(extra ...asn1cst.Option) []asn1cst.Option {
	var opts []asn1cst.Option
	if logger := c.setupLogger(); logger != nil {
		opts = append(opts, asn1cst.WithLogger(logger))
	}
	return append(opts, extra...)
}

// buildSource returns a source over the -p paths, or over the system
// search paths when none were given.
func (c *cli) buildSource() (asn1cst.Source, error) {
	if len(c.paths) == 0 {
		return asn1cst.SystemSource(c.setupLogger()), nil
	}
	var sources []asn1cst.Source
	for _, p := range c.paths {
		if src, err := asn1cst.DirTree(p); err == nil {
			sources = append(sources, src)
		} else {
			fmt.Fprintf(os.Stderr, "warning: cannot access path %s: %v\n", p, err)
		}
	}
	if len(sources) == 0 {
		return nil, asn1cst.ErrNoSources
	}
	return asn1cst.Multi(sources...), nil
}

// readInput reads a command argument: standard input for "-", a file when
// arg names one, and otherwise the module called arg in the search paths.
func (c *cli) readInput(arg string) (string, []byte, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		return "<stdin>", data, err
	}
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		return arg, data, err
	}
	src, err := c.buildSource()
	if err != nil {
		return arg, nil, err
	}
	r, path, err := src.Find(arg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return arg, nil, fmt.Errorf("no file or module named %s", arg)
		}
		return arg, nil, err
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	return path, data, err
}

func printVersion() {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}
	fmt.Printf("asn1cst %s (node types schema %d)\n", version, asn1cst.SchemaVersion)
}

func printError(format string, args ...any) {
	cliutil.PrintError(format, args...)
}
