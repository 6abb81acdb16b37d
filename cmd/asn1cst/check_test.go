package main

import (
	"testing"

	"github.com/golangsnmp/asn1cst"
)

func TestParseSeverityArg(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"6", 6, false},
		{"7", 0, true},
		{"-1", 0, true},
		{"severe", 1, false},
		{"ERROR", 2, false},
		{"info", 6, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSeverityArg(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "parse-error", true},
		{"parse-error", "parse-error", true},
		{"parse-error", "missing-token", false},
		{"unterminated-*", "unterminated-string", true},
		{"*-token", "missing-token", true},
		{"*-token", "parse-error", false},
	}

	for _, tt := range tests {
		if got := matchGlob(tt.pattern, tt.s); got != tt.want {
			t.Errorf("matchGlob(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
		}
	}
}

func TestCardinality(t *testing.T) {
	tests := []struct {
		c    asn1cst.ChildType
		want string
	}{
		{asn1cst.ChildType{Required: true}, ""},
		{asn1cst.ChildType{}, "?"},
		{asn1cst.ChildType{Multiple: true}, "*"},
		{asn1cst.ChildType{Multiple: true, Required: true}, "+"},
	}

	for _, tt := range tests {
		if got := cardinality(tt.c); got != tt.want {
			t.Errorf("cardinality(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func TestNodeJSON(t *testing.T) {
	tree := asn1cst.Parse([]byte("-- c\nT ::= INTEGER\n"))

	full := nodeJSON(tree.RootNode(), "", true)
	if full.Kind != "module-definition" {
		t.Fatalf("root kind = %q", full.Kind)
	}
	if full.EndByte != uint32(len(tree.Source())) {
		t.Errorf("root ends at %d, want %d", full.EndByte, len(tree.Source()))
	}

	var find func(n *TreeNodeJSON, kind string) *TreeNodeJSON
	find = func(n *TreeNodeJSON, kind string) *TreeNodeJSON {
		if n.Kind == kind {
			return n
		}
		for _, c := range n.Children {
			if got := find(c, kind); got != nil {
				return got
			}
		}
		return nil
	}

	comment := find(full, "comment")
	if comment == nil || !comment.Extra || comment.Text != "-- c" {
		t.Errorf("comment = %+v", comment)
	}
	name := find(full, "type-reference")
	if name == nil || name.Field != "name" || name.Text != "T" {
		t.Errorf("type-reference = %+v", name)
	}
	if name != nil && (name.Start != PointJSON{Row: 1, Column: 0}) {
		t.Errorf("type-reference starts at %+v", name.Start)
	}

	bare := nodeJSON(tree.RootNode(), "", false)
	if find(bare, "comment") != nil {
		t.Error("extras should be dropped")
	}
}
