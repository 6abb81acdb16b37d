package main

import (
	"cmp"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/golangsnmp/asn1cst"
)

const checkUsage = `asn1cst check - Check ASN.1 modules for syntax errors

Usage:
  asn1cst check [options] [FILE|DIR|MODULE...]

With no arguments every file in the search paths is checked.

Options:
  --level LVL     Report diagnostics at severity LVL or below: 0-6, or
                  strict, normal, permissive, silent (default: normal)
  --fail-on SEV   Exit 2 if any diagnostic at severity SEV or below: 0-6,
                  or a severity name (default: severe)
  --ignore CODE   Ignore diagnostic codes (repeatable, supports globs like "unterminated-*")
  --only CODE     Only report these codes (repeatable)
  --format FMT    Output format: text, json, sarif, compact (default: text)
  --group-by KEY  Group output: file, code, severity (default: none)
  --workers N     Number of files parsed at once (default: number of CPUs)
  --all-files     Parse files that do not look like ASN.1 too
  --summary       Show summary only (counts by severity)
  --quiet         No output, exit code only
  -h, --help      Show help

Severity Levels:
  0 = fatal       Cannot continue
  1 = severe      Structure was repaired
  2 = error       Should correct
  3 = minor       Minor issue
  4 = style       Style recommendation
  5 = warning     Might be correct
  6 = info        Informational

Examples:
  asn1cst check -p testdata/corpus
  asn1cst check Basic-Types.asn Broken-Module.asn
  asn1cst check --fail-on error asn1/               # Fail on lexical errors too
  asn1cst check --ignore "identifier-*" asn1/       # Skip identifier checks
  asn1cst check --format json asn1/                 # JSON output
  asn1cst check --format sarif asn1/                # SARIF for IDE/CI
  asn1cst check --group-by code asn1/               # Group by diagnostic code
`

type checkConfig struct {
	level    asn1cst.StrictnessLevel
	failOn   asn1cst.Severity
	ignore   []string
	only     []string
	format   string
	groupBy  string
	workers  int
	allFiles bool
	summary  bool
	quiet    bool
}

type checkResult struct {
	Diagnostics []checkDiagnostic `json:"diagnostics,omitempty"`
	Summary     checkSummary      `json:"summary"`
	ExitCode    int               `json:"-"`
}

type checkDiagnostic struct {
	Severity    string `json:"severity"`
	SeverityNum int    `json:"severity_num"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
}

type checkSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	ByCode     map[string]int `json:"by_code,omitempty"`
	Files      int            `json:"files"`
	Failed     int            `json:"failed"`
}

var severityNames = map[string]asn1cst.Severity{
	"fatal":   asn1cst.SeverityFatal,
	"severe":  asn1cst.SeveritySevere,
	"error":   asn1cst.SeverityError,
	"minor":   asn1cst.SeverityMinor,
	"style":   asn1cst.SeverityStyle,
	"warning": asn1cst.SeverityWarning,
	"info":    asn1cst.SeverityInfo,
}

var levelNames = map[string]asn1cst.StrictnessLevel{
	"strict":     asn1cst.StrictnessStrict,
	"normal":     asn1cst.StrictnessNormal,
	"permissive": asn1cst.StrictnessPermissive,
	"silent":     asn1cst.StrictnessSilent,
}

// parseSeverityArg accepts a severity number or name.
func parseSeverityArg(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > int(asn1cst.SeverityInfo) {
			return 0, fmt.Errorf("severity %d out of range 0-6", n)
		}
		return n, nil
	}
	if sev, ok := severityNames[strings.ToLower(s)]; ok {
		return int(sev), nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

func (c *cli) cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, checkUsage) }

	cfg := checkConfig{
		level:  asn1cst.StrictnessNormal,
		failOn: asn1cst.SeveritySevere,
		format: "text",
	}

	fs.Func("level", "report threshold", func(s string) error {
		if lvl, ok := levelNames[strings.ToLower(s)]; ok {
			cfg.level = lvl
			return nil
		}
		n, err := parseSeverityArg(s)
		cfg.level = asn1cst.StrictnessLevel(n)
		return err
	})
	fs.Func("fail-on", "failure threshold", func(s string) error {
		n, err := parseSeverityArg(s)
		cfg.failOn = asn1cst.Severity(n)
		return err
	})
	fs.Func("ignore", "ignore codes", func(s string) error {
		cfg.ignore = append(cfg.ignore, s)
		return nil
	})
	fs.Func("only", "only report these codes", func(s string) error {
		cfg.only = append(cfg.only, s)
		return nil
	})
	fs.StringVar(&cfg.format, "format", cfg.format, "output format")
	fs.StringVar(&cfg.groupBy, "group-by", cfg.groupBy, "grouping key")
	fs.IntVar(&cfg.workers, "workers", 0, "parallel parses")
	fs.BoolVar(&cfg.allFiles, "all-files", false, "skip the content heuristic")
	fs.BoolVar(&cfg.summary, "summary", false, "summary only")
	fs.BoolVar(&cfg.quiet, "quiet", false, "no output")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitError
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, checkUsage)
		return exitOK
	}

	switch cfg.format {
	case "text", "json", "sarif", "compact":
		// ok
	default:
		printError("unknown format: %s", cfg.format)
		return exitError
	}

	switch cfg.groupBy {
	case "", "file", "code", "severity":
		// ok
	default:
		printError("unknown group-by: %s", cfg.groupBy)
		return exitError
	}

	src, err := c.checkSource(fs.Args())
	if err != nil {
		printError("%v", err)
		return exitError
	}

	result, err := c.runCheck(src, cfg)
	if err != nil {
		printError("%v", err)
		return exitError
	}

	if !cfg.quiet {
		var err error
		switch cfg.format {
		case "json":
			err = printCheckJSON(result)
		case "sarif":
			err = printCheckSARIF(result)
		case "compact":
			printCheckCompact(result, cfg)
		default:
			printCheckText(result, cfg)
		}
		if err != nil {
			printError("output encoding failed: %v", err)
			return exitError
		}
	}

	return result.ExitCode
}

// checkSource builds the source for the check arguments: files are
// checked as given, directories recursively, and other arguments are
// looked up as module names. With no arguments the search paths are used.
func (c *cli) checkSource(args []string) (asn1cst.Source, error) {
	if len(args) == 0 {
		return c.buildSource()
	}
	var files []string
	var sources []asn1cst.Source
	var search asn1cst.Source
	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			src, err := asn1cst.DirTree(arg)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		case err == nil:
			files = append(files, arg)
		default:
			if search == nil {
				if search, err = c.buildSource(); err != nil {
					return nil, err
				}
			}
			r, path, err := search.Find(arg)
			if err != nil {
				return nil, fmt.Errorf("no file, directory or module named %s", arg)
			}
			_ = r.Close()
			files = append(files, path)
		}
	}
	if len(files) > 0 {
		sources = append(sources, asn1cst.Files(files...))
	}
	return asn1cst.Multi(sources...), nil
}

func (c *cli) runCheck(src asn1cst.Source, cfg checkConfig) (*checkResult, error) {
	diagCfg := asn1cst.DiagnosticConfig{
		Level:  cfg.level,
		FailAt: cfg.failOn,
		Ignore: cfg.ignore,
	}

	opts := []asn1cst.Option{asn1cst.WithDiagnosticConfig(diagCfg)}
	if cfg.workers > 0 {
		opts = append(opts, asn1cst.WithWorkers(cfg.workers))
	}
	if cfg.allFiles {
		opts = append(opts, asn1cst.WithNoHeuristic())
	}

	results, err := asn1cst.ParseAll(context.Background(), src, c.options(opts...)...)
	if err != nil {
		return nil, err
	}

	result := &checkResult{
		Summary: checkSummary{
			BySeverity: make(map[string]int),
			ByCode:     make(map[string]int),
			Files:      len(results),
		},
	}

	add := func(d checkDiagnostic) {
		result.Diagnostics = append(result.Diagnostics, d)
		result.Summary.Total++
		result.Summary.BySeverity[d.Severity]++
		result.Summary.ByCode[d.Code]++
	}

	for _, r := range results {
		if r.Failed(diagCfg) {
			result.Summary.Failed++
			result.ExitCode = exitStrictViolation
		}
		if r.Err != nil {
			add(checkDiagnostic{
				Severity:    asn1cst.SeverityFatal.String(),
				SeverityNum: int(asn1cst.SeverityFatal),
				Code:        "read-error",
				Message:     r.Err.Error(),
				File:        r.Path,
			})
			continue
		}
		for _, d := range r.Diagnostics {
			if len(cfg.only) > 0 && !matchesAny(d.Code, cfg.only) {
				continue
			}
			add(checkDiagnostic{
				Severity:    d.Severity.String(),
				SeverityNum: int(d.Severity),
				Code:        d.Code,
				Message:     d.Message,
				File:        d.File,
				Line:        d.Line,
				Column:      d.Column,
			})
		}
	}

	return result, nil
}

func matchesAny(code string, patterns []string) bool {
	for _, p := range patterns {
		if matchGlob(p, code) {
			return true
		}
	}
	return false
}

// matchGlob performs simple glob matching with * wildcard.
func matchGlob(pattern, s string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(s, pattern[:len(pattern)-1])
	}
	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(s, pattern[1:])
	}
	return pattern == s
}

func printCheckText(result *checkResult, cfg checkConfig) {
	if cfg.summary {
		printCheckSummary(result)
		return
	}

	switch cfg.groupBy {
	case "file":
		printCheckGrouped(result, func(d checkDiagnostic) string { return d.File })
	case "code":
		printCheckGrouped(result, func(d checkDiagnostic) string { return d.Code })
	case "severity":
		printCheckBySeverity(result)
	default:
		for _, d := range result.Diagnostics {
			printCheckDiagLine(d, true)
		}
	}

	if result.Summary.Total > 0 {
		fmt.Println()
		printCheckSummary(result)
	} else {
		fmt.Printf("No issues found in %d files\n", result.Summary.Files)
	}
}

// printCheckGrouped prints diagnostics under headings chosen by key.
func printCheckGrouped(result *checkResult, key func(checkDiagnostic) string) {
	groups := make(map[string][]checkDiagnostic)
	for _, d := range result.Diagnostics {
		k := key(d)
		if k == "" {
			k = "(unknown)"
		}
		groups[k] = append(groups[k], d)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		fmt.Printf("\n%s (%d):\n", k, len(groups[k]))
		for _, d := range groups[k] {
			fmt.Printf("  ")
			printCheckDiagLine(d, true)
		}
	}
}

func printCheckBySeverity(result *checkResult) {
	bySev := make(map[int][]checkDiagnostic)
	for _, d := range result.Diagnostics {
		bySev[d.SeverityNum] = append(bySev[d.SeverityNum], d)
	}

	sevs := make([]int, 0, len(bySev))
	for s := range bySev {
		sevs = append(sevs, s)
	}
	slices.Sort(sevs)

	for _, sev := range sevs {
		diags := bySev[sev]
		fmt.Printf("\n%s (%d):\n", diags[0].Severity, len(diags))
		for _, d := range diags {
			fmt.Printf("  ")
			printCheckDiagLine(d, false)
		}
	}
}

func printCheckDiagLine(d checkDiagnostic, withSeverity bool) {
	var parts []string
	if withSeverity {
		parts = append(parts, d.Severity+":")
	}
	if d.Code != "" {
		parts = append(parts, "["+d.Code+"]")
	}
	if d.File != "" {
		if d.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d:%d:", d.File, d.Line, d.Column))
		} else {
			parts = append(parts, d.File+":")
		}
	}
	parts = append(parts, d.Message)
	fmt.Println(strings.Join(parts, " "))
}

func printCheckSummary(result *checkResult) {
	fmt.Printf("Checked %d files, found %d issues", result.Summary.Files, result.Summary.Total)
	if result.Summary.Failed > 0 {
		fmt.Printf(", %d files failed", result.Summary.Failed)
	}
	fmt.Println(":")

	for sev := asn1cst.SeverityFatal; sev <= asn1cst.SeverityInfo; sev++ {
		name := sev.String()
		if count := result.Summary.BySeverity[name]; count > 0 {
			fmt.Printf("  %-8s %d\n", name+":", count)
		}
	}
}

func printCheckCompact(result *checkResult, cfg checkConfig) {
	if cfg.summary {
		fmt.Printf("%d issues in %d files\n", result.Summary.Total, result.Summary.Files)
		return
	}

	for _, d := range result.Diagnostics {
		loc := d.File
		if d.Line > 0 {
			loc = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
		}
		fmt.Printf("%s: %s [%s] %s\n", loc, d.Severity, d.Code, d.Message)
	}
}

func printCheckJSON(result *checkResult) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// SARIF (Static Analysis Results Interchange Format) output
// https://sarifweb.azurewebsites.net/
func printCheckSARIF(result *checkResult) error {
	sarif := sarifOutput{
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "asn1cst",
					InformationURI: "https://github.com/golangsnmp/asn1cst",
					Rules:          buildSARIFRules(result),
				},
			},
			Results: buildSARIFResults(result),
		}},
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(sarif)
}

type sarifOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           *sarifRegion  `json:"region,omitempty"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

func buildSARIFRules(result *checkResult) []sarifRule {
	seen := make(map[string]bool)
	var rules []sarifRule

	for _, d := range result.Diagnostics {
		if d.Code == "" || seen[d.Code] {
			continue
		}
		seen[d.Code] = true
		rules = append(rules, sarifRule{
			ID:               d.Code,
			ShortDescription: sarifMessage{Text: d.Code},
			DefaultConfig:    sarifDefaultConfig{Level: severityToSARIF(d.SeverityNum)},
		})
	}

	slices.SortFunc(rules, func(a, b sarifRule) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return rules
}

func buildSARIFResults(result *checkResult) []sarifResult {
	results := []sarifResult{}

	for _, d := range result.Diagnostics {
		r := sarifResult{
			RuleID:  d.Code,
			Level:   severityToSARIF(d.SeverityNum),
			Message: sarifMessage{Text: d.Message},
		}

		if d.File != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifact{URI: d.File},
				},
			}
			if d.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   d.Line,
					StartColumn: d.Column,
				}
			}
			r.Locations = append(r.Locations, loc)
		}

		results = append(results, r)
	}

	return results
}

func severityToSARIF(sev int) string {
	switch {
	case sev <= 2: // fatal, severe, error
		return "error"
	case sev <= 4: // minor, style
		return "warning"
	default: // warning, info
		return "note"
	}
}
