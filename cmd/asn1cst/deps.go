package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golangsnmp/asn1cst"
)

const depsUsage = `asn1cst deps - Show the import order of ASN.1 modules

Usage:
  asn1cst deps [options] [FILE|DIR|MODULE...]

Parses the given files (or every file in the search paths) and prints the
modules so that each comes after the modules it imports from. Circular
imports and imported modules that were not found are reported after the
order.

Options:
  --format FMT   Output format: text, json, yaml (default: text)
  --imports      List each module's imports under it
  -h, --help     Show help

Exit status is 2 when there are circular imports.

Examples:
  asn1cst deps -p testdata/corpus
  asn1cst deps --imports asn1/
  asn1cst deps --format yaml asn1/
`

// DepsOutput is the JSON and YAML output for the deps command.
type DepsOutput struct {
	Order   []string            `json:"order" yaml:"order"`
	Cycles  [][]string          `json:"cycles,omitempty" yaml:"cycles,omitempty"`
	Missing []string            `json:"missing,omitempty" yaml:"missing,omitempty"`
	Imports map[string][]string `json:"imports,omitempty" yaml:"imports,omitempty"`
}

func (c *cli) cmdDeps(args []string) int {
	fs := flag.NewFlagSet("deps", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, depsUsage) }

	format := fs.String("format", "text", "output format")
	showImports := fs.Bool("imports", false, "list imports")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, depsUsage)
		return exitOK
	}

	switch *format {
	case "text", "json", "yaml":
		// ok
	default:
		printError("unknown format: %s", *format)
		return exitError
	}

	src, err := c.checkSource(fs.Args())
	if err != nil {
		printError("%v", err)
		return exitError
	}
	results, err := asn1cst.ParseAll(context.Background(), src, c.options()...)
	if err != nil {
		printError("%v", err)
		return exitError
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "warning: %s: %v\n", r.Path, r.Err)
		}
	}

	ig := asn1cst.BuildImportGraph(results)
	exit := exitOK
	if len(ig.Cycles) > 0 {
		exit = exitStrictViolation
	}

	if *format != "text" {
		out := DepsOutput{Order: ig.Order, Cycles: ig.Cycles, Missing: ig.Missing}
		if *showImports {
			out.Imports = ig.Imports
		}
		if err := encode(os.Stdout, *format, out); err != nil {
			printError("output encoding failed: %v", err)
			return exitError
		}
		return exit
	}

	missing := make(map[string]bool, len(ig.Missing))
	for _, m := range ig.Missing {
		missing[m] = true
	}
	for _, m := range ig.Order {
		if missing[m] {
			continue
		}
		fmt.Println(m)
		if *showImports {
			for _, imp := range ig.Imports[m] {
				fmt.Printf("  %s\n", imp)
			}
		}
	}
	for _, cyc := range ig.Cycles {
		fmt.Printf("cycle: %s\n", strings.Join(cyc, " -> "))
	}
	for _, m := range ig.Missing {
		fmt.Printf("missing: %s\n", m)
	}
	return exit
}
