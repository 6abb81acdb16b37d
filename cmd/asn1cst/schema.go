package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/golangsnmp/asn1cst"
	"github.com/golangsnmp/asn1cst/cmd/internal/cliutil"
)

const schemaUsage = `asn1cst schema - Print the node type schema of the grammar

Usage:
  asn1cst schema [options] [KIND...]

Prints every node kind the parser can produce, with its fields and child
types. Naming kinds restricts the output to them.

Options:
  --format FMT     Output format: json, yaml, text (default: json)
  -o, --output F   Write to file F instead of stdout
  -h, --help       Show help

Examples:
  asn1cst schema > node-types.json
  asn1cst schema --format yaml sequence-type component-type
  asn1cst schema --format text
`

func (c *cli) cmdSchema(args []string) int {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, schemaUsage) }

	format := fs.String("format", "json", "output format")
	output := fs.String("o", "", "output file")
	fs.StringVar(output, "output", "", "output file")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, schemaUsage)
		return exitOK
	}

	switch *format {
	case "json", "yaml", "text":
		// ok
	default:
		printError("unknown format: %s", *format)
		return exitError
	}

	nodeTypes := asn1cst.Language().NodeTypes()
	if fs.NArg() > 0 {
		want := make(map[string]bool, fs.NArg())
		for _, k := range fs.Args() {
			want[k] = true
		}
		var filtered []asn1cst.NodeType
		for _, nt := range nodeTypes {
			if want[nt.Type] {
				filtered = append(filtered, nt)
				delete(want, nt.Type)
			}
		}
		for k := range want {
			printError("unknown node kind: %s", k)
			return exitError
		}
		nodeTypes = filtered
	}

	w, closeFn, err := cliutil.GetOutput(*output)
	if err != nil {
		printError("cannot open output: %v", err)
		return exitError
	}

	if *format == "text" {
		err = writeSchemaText(w, nodeTypes)
	} else {
		err = encode(w, *format, nodeTypes)
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	if err != nil {
		printError("writing schema: %v", err)
		return exitError
	}
	return exitOK
}

// writeSchemaText lists the named kinds with their fields and children.
func writeSchemaText(w io.Writer, nodeTypes []asn1cst.NodeType) error {
	bw := bufio.NewWriter(w)
	for _, nt := range nodeTypes {
		if !nt.Named {
			continue
		}
		line := nt.Type
		if nt.Extra {
			line += " (extra)"
		}
		if len(nt.Subtypes) > 0 {
			line += " = " + typeList(nt.Subtypes, " | ")
		}
		fmt.Fprintln(bw, line)
		for _, name := range slices.Sorted(maps.Keys(nt.Fields)) {
			field := nt.Fields[name]
			fmt.Fprintf(bw, "  %s%s: %s\n", name, cardinality(field), typeList(field.Types, " | "))
		}
		if nt.Children != nil {
			fmt.Fprintf(bw, "  children%s: %s\n", cardinality(*nt.Children), typeList(nt.Children.Types, " | "))
		}
	}
	return bw.Flush()
}

func typeList(refs []asn1cst.TypeRef, sep string) string {
	names := make([]string, len(refs))
	for i, r := range refs {
		if r.Named {
			names[i] = r.Type
		} else {
			names[i] = fmt.Sprintf("%q", r.Type)
		}
	}
	return strings.Join(names, sep)
}

// cardinality renders a child slot as "", "?", "*" or "+".
func cardinality(c asn1cst.ChildType) string {
	switch {
	case c.Multiple && c.Required:
		return "+"
	case c.Multiple:
		return "*"
	case !c.Required:
		return "?"
	default:
		return ""
	}
}
