package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golangsnmp/asn1cst"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteSchemaText(t *testing.T) {
	var b strings.Builder
	if err := writeSchemaText(&b, asn1cst.Language().NodeTypes()); err != nil {
		t.Fatalf("writeSchemaText() error = %v", err)
	}
	out := b.String()
	for _, want := range []string{"module-definition\n", "tagged-type\n", "  tag: tag\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("schema text missing %q", want)
		}
	}
}

func TestWriteSchemaTextError(t *testing.T) {
	err := writeSchemaText(failingWriter{}, asn1cst.Language().NodeTypes())
	if err == nil || err.Error() != "disk full" {
		t.Errorf("writeSchemaText() error = %v, want disk full", err)
	}
}

func TestCmdSchemaOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	c := &cli{}
	if code := c.cmdSchema([]string{"--format", "yaml", "-o", path, "tagged-type"}); code != exitOK {
		t.Fatalf("cmdSchema() = %d, want %d", code, exitOK)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "type: tagged-type") {
		t.Errorf("schema file:\n%s", data)
	}
}

func TestCmdSchemaUnwritableOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "schema.json")
	c := &cli{}
	if code := c.cmdSchema([]string{"-o", path}); code != exitError {
		t.Errorf("cmdSchema() = %d, want %d", code, exitError)
	}
}
