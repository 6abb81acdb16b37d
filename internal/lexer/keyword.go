package lexer

import (
	"cmp"
	"slices"
	"sort"
)

type keywordEntry struct {
	text string
	kind TokenKind
}

// keywords is the reserved word table sorted by text (ASCII byte order)
// for binary search. It is derived from tokenNames so the two can not
// drift apart.
var keywords = buildKeywordTable()

func buildKeywordTable() []keywordEntry {
	table := make([]keywordEntry, 0, int(tokKeywordEnd-tokKeywordStart))
	for k := tokKeywordStart + 1; k < tokKeywordEnd; k++ {
		table = append(table, keywordEntry{text: tokenNames[k], kind: k})
	}
	slices.SortFunc(table, func(a, b keywordEntry) int {
		return cmp.Compare(a.text, b.text)
	})
	return table
}

// LookupKeyword returns the token kind for a reserved word.
func LookupKeyword(text string) (TokenKind, bool) {
	idx := sort.Search(len(keywords), func(i int) bool {
		return keywords[i].text >= text
	})
	if idx < len(keywords) && keywords[idx].text == text {
		return keywords[idx].kind, true
	}
	return 0, false
}

// Keywords returns every reserved word in sorted order.
func Keywords() []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = kw.text
	}
	return out
}
