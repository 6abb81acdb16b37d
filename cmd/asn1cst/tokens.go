package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golangsnmp/asn1cst"
	"github.com/golangsnmp/asn1cst/internal/lexer"
)

const tokensUsage = `asn1cst tokens - Print the token stream of a file

Usage:
  asn1cst tokens [options] FILE|MODULE

Options:
  --trivia       Also print the whitespace and comments before each token
  --format FMT   Output format: text, json, yaml (default: text)
  -h, --help     Show help

Text output has one token per line: zero-based row and column, the token
kind, and the token text. A "^" after the position marks a token that
starts its line. Lexical diagnostics go to stderr.

Examples:
  asn1cst tokens Basic-Types.asn
  asn1cst tokens --trivia -p testdata/corpus Basic-Types
`

func (c *cli) cmdTokens(args []string) int {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, tokensUsage) }

	trivia := fs.Bool("trivia", false, "print trivia")
	format := fs.String("format", "text", "output format")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, tokensUsage)
		return exitOK
	}

	switch *format {
	case "text", "json", "yaml":
		// ok
	default:
		printError("unknown format: %s", *format)
		return exitError
	}

	if fs.NArg() != 1 {
		printError("expected exactly one file or module")
		fmt.Fprint(os.Stderr, tokensUsage)
		return exitError
	}

	path, data, err := c.readInput(fs.Arg(0))
	if err != nil {
		printError("%s: %v", fs.Arg(0), err)
		return exitError
	}

	// The tree maps byte offsets to rows and columns, and its diagnostics
	// carry the lexer's messages.
	tree := asn1cst.NewParser(c.options()...).Parse(data)
	toks, _ := lexer.New(data, c.setupLogger()).Tokenize()

	text := func(start, end uint32) string { return string(data[start:end]) }

	var out []TokenJSON
	for _, tok := range toks {
		start, end := uint32(tok.Span.Start), uint32(tok.Span.End)
		t := TokenJSON{
			Kind:  tok.Kind.String(),
			Text:  text(start, end),
			Start: pointJSON(tree.Point(start)),
			Line:  tok.LineStart,
		}
		if *trivia {
			for _, tv := range tok.Trivia {
				t.Trivia = append(t.Trivia, TriviaJSON{
					Kind: tv.Kind.String(),
					Text: text(uint32(tv.Span.Start), uint32(tv.Span.End)),
				})
			}
		}
		out = append(out, t)
	}

	for _, d := range tree.Diagnostics(asn1cst.StrictConfig()) {
		if d.Code == asn1cst.DiagParseError || d.Code == asn1cst.DiagMissingToken {
			continue
		}
		d.File = path
		fmt.Fprintln(os.Stderr, d.String())
	}

	if *format != "text" {
		if err := encode(os.Stdout, *format, out); err != nil {
			printError("output encoding failed: %v", err)
			return exitError
		}
		return exitOK
	}

	for _, t := range out {
		for _, tv := range t.Trivia {
			fmt.Printf("%14s %-20s %s\n", "", tv.Kind, strconv.Quote(tv.Text))
		}
		mark := " "
		if t.Line {
			mark = "^"
		}
		pos := fmt.Sprintf("%d:%d%s", t.Start.Row, t.Start.Column, mark)
		fmt.Printf("%-14s %-20s %s\n", pos, t.Kind, strconv.Quote(t.Text))
	}
	return exitOK
}
