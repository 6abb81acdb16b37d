package asn1cst

import (
	"bytes"
	"cmp"
	"context"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"
)

// FileResult is the outcome of parsing one file.
type FileResult struct {
	// Path is the file's path as reported by its source.
	Path string
	// Tree is nil when the file could not be read.
	Tree *Tree
	// Diagnostics are the tree's diagnostics after filtering by the
	// configured DiagnosticConfig, with File set to Path.
	Diagnostics []Diagnostic
	// Err is the read error, if any.
	Err error
}

// Failed reports whether the file could not be read or has a diagnostic
// at or above the failure threshold of cfg.
func (r FileResult) Failed(cfg DiagnosticConfig) bool {
	if r.Err != nil {
		return true
	}
	for _, d := range r.Diagnostics {
		if cfg.ShouldFail(d.Severity) {
			return true
		}
	}
	return false
}

// ParseAll parses every file source lists, several at a time, and returns
// the results sorted by path. Files that do not look like ASN.1 text are
// skipped unless WithNoHeuristic is given.
//
// Example:
//
//	results, err := asn1cst.ParseAll(ctx,
//	    asn1cst.MustDirTree("./asn1"),
//	    asn1cst.WithLogger(slog.Default()),
//	)
func ParseAll(ctx context.Context, source Source, opts ...Option) ([]FileResult, error) {
	if source == nil {
		return nil, ErrNoSources
	}
	cfg := newConfig(opts)
	logger := cfg.logger

	files, err := source.ListFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	workers := cfg.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logEnabled(logger, slog.LevelInfo) {
		logger.LogAttrs(ctx, slog.LevelInfo, "parallel parsing",
			slog.Int("files", len(files)),
			slog.Int("workers", workers))
	}

	p := NewParser(opts...)
	heuristic := defaultHeuristic()
	if cfg.noHeuristic {
		heuristic.enabled = false
	}

	results := make(chan FileResult, len(files))
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			content, err := source.ReadFile(path)
			if err != nil {
				results <- FileResult{Path: path, Err: err}
				return
			}
			if !heuristic.looksLikeASN1(content) {
				if logEnabled(logger, slog.LevelDebug) {
					logger.LogAttrs(ctx, slog.LevelDebug, "content rejected by heuristic",
						slog.String("path", path))
				}
				return
			}
			results <- p.parseFile(path, content, cfg.diagConfig)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []FileResult
	for r := range results {
		out = append(out, r)
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	slices.SortFunc(out, func(a, b FileResult) int {
		return cmp.Compare(a.Path, b.Path)
	})

	if logEnabled(logger, slog.LevelInfo) {
		logger.LogAttrs(ctx, slog.LevelInfo, "parallel parsing complete",
			slog.Int("parsed", len(out)))
	}
	return out, nil
}

// ParseModule finds the file of the named module in source and parses it.
// It returns an error wrapping fs.ErrNotExist when no file matches.
func ParseModule(source Source, name string, opts ...Option) (FileResult, error) {
	if source == nil {
		return FileResult{}, ErrNoSources
	}
	cfg := newConfig(opts)

	r, path, err := source.Find(name)
	if err != nil {
		return FileResult{Path: path, Err: err}, err
	}
	content, err := io.ReadAll(r)
	_ = r.Close()
	if err != nil {
		return FileResult{Path: path, Err: err}, err
	}
	return NewParser(opts...).parseFile(path, content, cfg.diagConfig), nil
}

func (p *Parser) parseFile(path string, content []byte, diagCfg DiagnosticConfig) FileResult {
	tree := p.Parse(content)
	diags := tree.Diagnostics(diagCfg)
	for i := range diags {
		diags[i].File = path
	}
	if p.logger.Enabled(slog.LevelDebug) {
		p.logger.Log(slog.LevelDebug, "parsed file",
			slog.String("path", path),
			slog.Int("bytes", len(content)),
			slog.Int("errors", tree.ErrorCount()))
	}
	return FileResult{Path: path, Tree: tree, Diagnostics: diags}
}

var sigAssign = []byte("::=")

type heuristicConfig struct {
	enabled         bool
	binaryCheckSize int
	maxSniffSize    int
}

func defaultHeuristic() heuristicConfig {
	return heuristicConfig{
		enabled:         true,
		binaryCheckSize: 1024,
		maxSniffSize:    128 * 1024,
	}
}

// looksLikeASN1 rejects binary content and text without a single
// assignment.
func (h *heuristicConfig) looksLikeASN1(content []byte) bool {
	if !h.enabled {
		return true
	}
	if len(content) == 0 {
		return false
	}

	checkLen := min(h.binaryCheckSize, len(content))
	if bytes.IndexByte(content[:checkLen], 0) >= 0 {
		return false
	}

	head := content[:min(h.maxSniffSize, len(content))]
	return bytes.Contains(head, sigAssign)
}
