// Package engine interprets a compiled grammar over the lexer's tokens and
// builds concrete syntax trees.
//
// The engine is a memoizing PEG interpreter. Alternatives are predicted
// from one token of lookahead and tried in precedence order; results of
// every rule at every position are memoized, failures included. Items
// that follow a commit point are repaired in place instead of failing,
// so parsing always produces a tree covering the whole input.
//
// Each rule result records how many tokens it examined. A subtree from a
// previous tree is reused only when every token in that window is
// unchanged, which makes incremental parsing exact.
package engine

import (
	"log/slog"

	"github.com/golangsnmp/asn1cst/cst"
	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/lexer"
	"github.com/golangsnmp/asn1cst/internal/types"
)

// Parser parses source text with one language. It holds no per-parse
// state and is safe for concurrent use.
type Parser struct {
	lang      *grammar.Language
	lexLogger *slog.Logger
	types.Logger
}

// New returns a parser for lang. Pass nil for logger to disable logging.
func New(lang *grammar.Language, logger *slog.Logger) *Parser {
	return &Parser{
		lang:      lang,
		lexLogger: types.ComponentLogger(logger, "lexer"),
		Logger:    types.Logger{L: types.ComponentLogger(logger, "engine")},
	}
}

// Language returns the parser's language.
func (p *Parser) Language() *grammar.Language { return p.lang }

// Result is the outcome of one parse.
type Result struct {
	Tree *cst.Tree
	// Tokens is the number of tokens in the source, end of input included.
	Tokens int
	// Reused is the number of subtrees taken over from the previous tree.
	Reused int
}

// Parse parses source from scratch.
func (p *Parser) Parse(source []byte) Result {
	s := p.newState(source)
	return s.finish(p)
}

// Reparse parses source, the text of old after edits, reusing unchanged
// subtrees of old. The resulting tree is identical to Parse(source).
func (p *Parser) Reparse(old *cst.Tree, source []byte, edits []Edit) Result {
	s := p.newState(source)
	if old != nil && old.Language() == p.lang {
		s.reuse = newReuseIndex(old, edits)
		p.Log(slog.LevelDebug, "reparse",
			slog.Int("edits", len(edits)),
			slog.Int("candidates", len(s.reuse.nodes)))
	}
	return s.finish(p)
}

func (p *Parser) newState(source []byte) *state {
	return &state{
		lang:   p.lang,
		source: source,
		lex:    lexer.New(source, p.lexLogger),
		memo:   make(map[memoKey]*memoEntry),
		Logger: p.Logger,
	}
}

func (s *state) finish(p *Parser) Result {
	root := s.parseRoot()
	tree := cst.NewTree(s.lang, s.source, root, s.lex.Diagnostics())
	p.Log(slog.LevelDebug, "parse complete",
		slog.Int("bytes", len(s.source)),
		slog.Int("tokens", len(s.tokens)),
		slog.Int("memo", len(s.memo)),
		slog.Int("reused", s.reused),
		slog.Bool("errors", root.HasError()))
	return Result{Tree: tree, Tokens: len(s.tokens), Reused: s.reused}
}

// parseRoot runs the start rule at the first token. The first module
// becomes the root itself; each further module with a header follows as a
// child node of the start rule's kind. The root node always spans the
// whole input: tokens no module consumes become ERROR nodes, and the
// trivia before end of input is attached last.
func (s *state) parseRoot() *cst.Subtree {
	start := s.lang.Start()
	items, end, ok := s.rule(start.ID, 0)
	if !ok {
		items, end = nil, 0
	}

	var children []cst.Child
	for _, c := range items {
		if c.Subtree.Rule() == start.ID && !c.Subtree.IsExtra() {
			for i := range c.Subtree.ChildCount() {
				children = append(children, cst.Child{Subtree: c.Subtree.Child(i), Field: c.Subtree.FieldAt(i)})
			}
			continue
		}
		children = append(children, c)
	}

	eof := s.eofIndex()
	for end < eof {
		next := end
		for next < eof && !s.startsModule(next) {
			next++
		}
		if next > end {
			s.Log(slog.LevelDebug, "unconsumed input",
				slog.Int("from", int(s.tokens[end].Span.Start)),
				slog.Int("tokens", next-end))
			children = append(children, s.errorItems(end, next)...)
			end = next
		}
		if end == eof {
			break
		}
		items, after, ok := s.rule(start.ID, end)
		if !ok || after == end {
			children = append(children, s.errorItems(end, end+1)...)
			end++
			continue
		}
		s.Log(slog.LevelDebug, "module",
			slog.Int("at", int(s.tokens[end].Span.Start)),
			slog.Int("tokens", after-end))
		children = append(children, items...)
		end = after
	}
	children = append(children, s.trivia(eof)...)

	return cst.NewBranch(start.Symbol, true, children, cst.Meta{
		Rule:   start.ID,
		Tokens: uint32(eof),
		Window: uint32(eof + 1),
	})
}

// startsModule reports whether token i begins a module header: a module
// reference that starts a line, an optional object identifier in braces
// and an optional IRI, then DEFINITIONS.
func (s *state) startsModule(i int) bool {
	t := s.peek(i)
	if t.Kind != lexer.TokTypeReference || !t.LineStart {
		return false
	}
	i++
	if s.peek(i).Kind == lexer.TokLBrace {
		depth := 0
		for ; ; i++ {
			switch s.peek(i).Kind {
			case lexer.TokLBrace:
				depth++
			case lexer.TokRBrace:
				depth--
			case lexer.TokEOF:
				return false
			}
			if depth == 0 {
				break
			}
		}
		i++
	}
	if s.peek(i).Kind == lexer.TokCString {
		i++
	}
	return s.peek(i).Kind == lexer.TokKwDefinitions
}
