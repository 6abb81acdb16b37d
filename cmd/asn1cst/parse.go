package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golangsnmp/asn1cst"
)

const parseUsage = `asn1cst parse - Parse modules and print their syntax trees

Usage:
  asn1cst parse [options] FILE|MODULE...

Options:
  --format FMT    Output format: sexp, tree, json, yaml (default: sexp)
  --at OFFSET     Print only the smallest node spanning byte OFFSET
  --no-extras     Leave comments out of tree, json and yaml output
  --diagnostics   Print diagnostics to stderr after each tree
  --strict        Exit with status 2 when any tree contains errors
  -h, --help      Show help

The sexp format lists named nodes only, with field labels. The tree format
lists every node with its field, zero-based position and, for leaves, its
text.

Examples:
  asn1cst parse Basic-Types.asn
  asn1cst parse --format tree -p testdata/corpus Basic-Types
  asn1cst parse --format json --no-extras Basic-Types.asn
  asn1cst parse --at 120 Basic-Types.asn
  echo 'T ::= INTEGER' | asn1cst parse -
`

type parseConfig struct {
	format      string
	at          int
	noExtras    bool
	diagnostics bool
	strict      bool
}

func (c *cli) cmdParse(args []string) int {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, parseUsage) }

	cfg := parseConfig{format: "sexp", at: -1}
	fs.StringVar(&cfg.format, "format", cfg.format, "output format")
	fs.IntVar(&cfg.at, "at", cfg.at, "byte offset")
	fs.BoolVar(&cfg.noExtras, "no-extras", false, "omit comments")
	fs.BoolVar(&cfg.diagnostics, "diagnostics", false, "print diagnostics")
	fs.BoolVar(&cfg.strict, "strict", false, "fail on syntax errors")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, parseUsage)
		return exitOK
	}

	switch cfg.format {
	case "sexp", "tree", "json", "yaml":
		// ok
	default:
		printError("unknown format: %s", cfg.format)
		return exitError
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		printError("no files or modules specified")
		fmt.Fprint(os.Stderr, parseUsage)
		return exitError
	}

	p := asn1cst.NewParser(c.options()...)
	var out ParseOutput
	exit := exitOK

	for _, in := range inputs {
		path, data, err := c.readInput(in)
		if err != nil {
			printError("%s: %v", in, err)
			return exitError
		}
		tree := p.Parse(data)
		if cfg.strict && tree.ErrorCount() > 0 {
			exit = exitStrictViolation
		}

		node := tree.RootNode()
		if cfg.at >= 0 {
			if cfg.at > len(data) {
				printError("%s: offset %d is past the end of the file (%d bytes)", path, cfg.at, len(data))
				return exitError
			}
			off := uint32(cfg.at)
			node = node.DescendantForByteRange(off, off)
		}

		diags := tree.Diagnostics(asn1cst.DefaultConfig())
		for i := range diags {
			diags[i].File = path
		}

		switch cfg.format {
		case "json", "yaml":
			f := FileJSON{
				Path:       path,
				ErrorCount: tree.ErrorCount(),
				Tree:       nodeJSON(node, "", !cfg.noExtras),
			}
			if cfg.diagnostics {
				f.Diagnostics = diagnosticsJSON(diags)
			}
			out.Files = append(out.Files, f)
			continue
		case "tree":
			if len(inputs) > 1 {
				fmt.Printf("%s:\n", path)
			}
			printTree(node, "", 0, !cfg.noExtras)
		default:
			if len(inputs) > 1 {
				fmt.Printf("%s:\n", path)
			}
			fmt.Println(node.String())
		}

		if cfg.diagnostics {
			for _, d := range diags {
				fmt.Fprintln(os.Stderr, d.String())
			}
		}
	}

	if cfg.format == "json" || cfg.format == "yaml" {
		if err := encode(os.Stdout, cfg.format, out); err != nil {
			printError("output encoding failed: %v", err)
			return exitError
		}
	}
	return exit
}

// printTree prints n and its descendants one per line, indented by depth.
func printTree(n *asn1cst.Node, field string, depth int, withExtras bool) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	if field != "" {
		b.WriteString(field)
		b.WriteString(": ")
	}
	switch {
	case n.IsMissing():
		b.WriteString("MISSING ")
		b.WriteString(n.Kind())
	case n.IsNamed():
		b.WriteString(n.Kind())
	default:
		b.WriteString(strconv.Quote(n.Kind()))
	}
	start, end := n.StartPoint(), n.EndPoint()
	fmt.Fprintf(&b, " [%d, %d] - [%d, %d]", start.Row, start.Column, end.Row, end.Column)
	if n.ChildCount() == 0 && n.IsNamed() && !n.IsMissing() {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(n.Text()))
	}
	fmt.Println(b.String())

	for i, child := range n.Children() {
		if child.IsExtra() && !withExtras {
			continue
		}
		printTree(child, n.FieldNameForChild(i), depth+1, withExtras)
	}
}
