// Package asn1cst parses ASN.1 module notation (X.680 family) into concrete
// syntax trees.
//
// The grammar is built once per process and shared by every parse:
//
//	tree := asn1cst.Parse(src)
//	for n := range tree.RootNode().Descendants() {
//	    if n.Kind() == "type-assignment" {
//	        fmt.Println(n.ChildByFieldName("name").Text())
//	    }
//	}
//
// Parsing never fails. Input the grammar cannot assign is kept in ERROR
// nodes and absent tokens appear as zero-width missing nodes, so a tree
// always covers its whole source. Use Tree.Diagnostics to report them.
package asn1cst

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/golangsnmp/asn1cst/grammar"
	"github.com/golangsnmp/asn1cst/internal/engine"
	"github.com/golangsnmp/asn1cst/internal/rules"
	"github.com/golangsnmp/asn1cst/internal/types"
)

// ErrNoSources is returned when ParseAll is called without a source.
var ErrNoSources = errors.New("no ASN.1 sources provided")

// LevelTrace is a custom log level more verbose than Debug.
// Use for per-item iteration logging (tokens, rule results, reuse).
// Enable with: &slog.HandlerOptions{Level: slog.Level(-8)}
const LevelTrace = types.LevelTrace

var (
	languageOnce sync.Once
	language     *grammar.Language
)

// Language returns the ASN.1 grammar. It is built on first use; later
// calls return the same value without allocating. The grammar is
// read-only and safe for concurrent use.
func Language() *grammar.Language {
	languageOnce.Do(func() {
		lang, err := rules.Build()
		if err != nil {
			panic("asn1cst: invalid grammar: " + err.Error())
		}
		language = lang
	})
	return language
}

// Option configures a Parser and ParseAll.
type Option func(*config)

type config struct {
	logger      *slog.Logger
	diagConfig  DiagnosticConfig
	workers     int
	noHeuristic bool
}

func newConfig(opts []Option) config {
	cfg := config{diagConfig: DefaultConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger for debug/trace output.
// If not set, no logging occurs (zero overhead).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithDiagnosticConfig sets the filtering applied to the diagnostics
// ParseAll reports. The default is DefaultConfig().
func WithDiagnosticConfig(cfg DiagnosticConfig) Option {
	return func(c *config) { c.diagConfig = cfg }
}

// WithWorkers bounds the number of files ParseAll parses at once. Zero
// or less means one per CPU.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// WithNoHeuristic makes ParseAll parse every listed file, including
// files that do not look like ASN.1 text.
func WithNoHeuristic() Option {
	return func(c *config) { c.noHeuristic = true }
}

// Parser parses ASN.1 text. A Parser holds no per-parse state and may be
// used from many goroutines at once.
type Parser struct {
	engine *engine.Parser
	logger types.Logger
}

// NewParser returns a parser for the ASN.1 grammar.
func NewParser(opts ...Option) *Parser {
	cfg := newConfig(opts)
	return &Parser{
		engine: engine.New(Language(), cfg.logger),
		logger: types.Logger{L: cfg.logger},
	}
}

// Parse parses source. The source must not be modified while the tree is
// in use.
func (p *Parser) Parse(source []byte) *Tree {
	return p.engine.Parse(source).Tree
}

// Reparse parses source, which is the source of old after edits, sharing
// unchanged subtrees with old. The result is identical to Parse(source).
// Edits are given in the order they were applied.
func (p *Parser) Reparse(old *Tree, source []byte, edits ...InputEdit) *Tree {
	res := p.engine.Reparse(old, source, edits)
	if p.logger.Enabled(slog.LevelDebug) {
		p.logger.Log(slog.LevelDebug, "reparsed",
			slog.Int("tokens", res.Tokens),
			slog.Int("reused", res.Reused))
	}
	return res.Tree
}

var (
	defaultParserOnce sync.Once
	defaultParser     *Parser
)

// Parse parses source with a shared parser that does not log.
func Parse(source []byte) *Tree {
	defaultParserOnce.Do(func() { defaultParser = NewParser() })
	return defaultParser.Parse(source)
}

// ComputeEdit describes the change from before to after as a single
// edit covering everything between their common prefix and suffix.
func ComputeEdit(before, after []byte) InputEdit {
	prefix := 0
	for prefix < len(before) && prefix < len(after) && before[prefix] == after[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(before)-prefix && suffix < len(after)-prefix &&
		before[len(before)-1-suffix] == after[len(after)-1-suffix] {
		suffix++
	}
	return InputEdit{
		StartByte:  uint32(prefix),
		OldEndByte: uint32(len(before) - suffix),
		NewEndByte: uint32(len(after) - suffix),
	}
}

// logEnabled returns true if logging is enabled at the given level.
func logEnabled(logger *slog.Logger, level slog.Level) bool {
	return logger != nil && logger.Enabled(context.Background(), level)
}
