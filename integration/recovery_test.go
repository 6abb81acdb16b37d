package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golangsnmp/asn1cst"
)

func TestBrokenModuleDiagnostics(t *testing.T) {
	var broken *asn1cst.FileResult
	for _, r := range loadCorpus(t) {
		if r.Tree != nil && r.Tree.ErrorCount() > 0 {
			require.Nil(t, broken, "only one corpus module has errors")
			broken = &r
		}
	}
	require.NotNil(t, broken)
	assert.Contains(t, broken.Path, "Broken-Module")
	assert.True(t, broken.Failed(asn1cst.DefaultConfig()))

	codes := map[string]int{}
	for _, d := range broken.Diagnostics {
		codes[d.Code]++
		assert.Equal(t, broken.Path, d.File)
	}
	assert.Equal(t, 1, codes[asn1cst.DiagMissingToken], "missing comma")
	assert.Equal(t, 1, codes[asn1cst.DiagParseError], "junk component")
	assert.Positive(t, codes[asn1cst.DiagUnexpectedCharacter], "lexical error for ?")
}

func TestBrokenModuleLocality(t *testing.T) {
	a := assignments(t, getModule(t, "Broken-Module"))
	require.Len(t, a, 3)
	assert.False(t, a["Good"].HasError())
	assert.False(t, a["AlsoGood"].HasError())

	bad := a["Bad"]
	require.True(t, bad.HasError())
	seq := bad.ChildByFieldName("type")
	require.NotNil(t, seq)
	var names []string
	for _, c := range seq.NamedChildren() {
		if c.Kind() == "component-type" && !c.HasError() {
			names = append(names, c.ChildByFieldName("name").Text())
		}
	}
	assert.Equal(t, []string{"a", "b", "d"}, names)
}
