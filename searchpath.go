package asn1cst

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/golangsnmp/asn1cst/internal/types"
)

// PathEnv is the environment variable holding extra ASN.1 search
// directories, separated by colons. A leading "+" appends them to the
// configured directories, a leading "-" prepends them, and otherwise they
// replace them.
const PathEnv = "ASN1PATH"

type pathOp int

const (
	pathReplace pathOp = iota
	pathAppend
	pathPrepend
)

// SystemSource returns a Source over the system ASN.1 directories: the
// defaults, then "path" directives of the config files, then PathEnv.
// Directories that do not exist are left out. Pass nil to disable
// logging.
func SystemSource(logger *slog.Logger) Source {
	dirs := discoverSystemPaths(types.Logger{L: logger})
	sources := make([]Source, 0, len(dirs))
	for _, d := range dirs {
		if src, err := Dir(d); err == nil {
			sources = append(sources, src)
		}
	}
	return Multi(sources...)
}

// DiscoverSystemPaths returns the directories SystemSource searches, in
// order. Pass nil to disable logging.
func DiscoverSystemPaths(logger *slog.Logger) []string {
	return discoverSystemPaths(types.Logger{L: logger})
}

// discoverSystemPaths returns ASN.1 directories from the defaults, the
// config files and the environment, deduplicated and filtered to
// directories that exist.
func discoverSystemPaths(logger types.Logger) []string {
	paths := defaultPaths()
	for _, cf := range configFiles() {
		paths = applyConfigFile(cf, paths, parseConfigLine, logger)
	}
	if v := os.Getenv(PathEnv); v != "" {
		paths = applyEnv(v, paths)
	}
	dirs := filterExistingDirs(dedup(paths))
	logger.Log(slog.LevelDebug, "search path", slog.Any("dirs", dirs))
	return dirs
}

func defaultPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".asn1"))
	}
	return append(paths,
		"/usr/share/asn1",
		"/usr/local/share/asn1",
	)
}

func configFiles() []string {
	files := []string{"/etc/asn1cst.conf"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".asn1cstrc"))
	}
	return files
}

// parseConfigLine parses a single config file line for path directives:
//
//	path /usr/share/asn1:/opt/asn1
//
// A leading colon on the value appends, a trailing colon prepends, and
// neither replaces. Lines with tag prefixes (e.g. "check: path ...") are
// skipped.
func parseConfigLine(line string) (pathOp, []string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return 0, nil, false
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, nil, false
	}

	if strings.HasSuffix(fields[0], ":") {
		return 0, nil, false
	}

	if fields[0] != "path" {
		return 0, nil, false
	}

	op, dirs := parseColonSemantic(fields[1])
	return op, dirs, true
}

// parseColonSemantic interprets leading/trailing colon semantics.
// Leading colon = append, trailing colon = prepend, neither = replace.
func parseColonSemantic(value string) (pathOp, []string) {
	if strings.HasPrefix(value, ":") {
		return pathAppend, splitPaths(strings.TrimPrefix(value, ":"))
	}
	if strings.HasSuffix(value, ":") {
		return pathPrepend, splitPaths(strings.TrimSuffix(value, ":"))
	}
	return pathReplace, splitPaths(value)
}

func applyEnv(value string, current []string) []string {
	if strings.HasPrefix(value, "+") {
		return applyOp(pathAppend, splitPaths(value[1:]), current)
	}
	if strings.HasPrefix(value, "-") {
		return applyOp(pathPrepend, splitPaths(value[1:]), current)
	}
	return splitPaths(value)
}

func applyOp(op pathOp, dirs, current []string) []string {
	switch op {
	case pathAppend:
		return append(current, dirs...)
	case pathPrepend:
		return append(dirs, current...)
	default:
		return dirs
	}
}

func applyConfigFile(path string, current []string, parseLine func(string) (pathOp, []string, bool), logger types.Logger) []string {
	f, err := os.Open(path)
	if err != nil {
		return current
	}
	defer f.Close() //nolint:errcheck // best-effort config file read

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		op, dirs, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		current = applyOp(op, dirs, current)
	}
	if err := scanner.Err(); err != nil {
		logger.Log(slog.LevelDebug, "error reading config file", slog.String("path", path), slog.Any("error", err))
	}
	return current
}

func splitPaths(s string) []string {
	if s == "" {
		return nil
	}
	var result []string
	for _, p := range strings.Split(s, ":") {
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func dedup(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	var result []string
	for _, p := range paths {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			result = append(result, p)
		}
	}
	return result
}

func filterExistingDirs(paths []string) []string {
	var result []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.IsDir() {
			result = append(result, p)
		}
	}
	return result
}
