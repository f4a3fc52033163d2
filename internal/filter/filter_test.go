package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadAccessStyleEquality(t *testing.T) {
	f, err := Parse("(objectClass=person)")
	require.NoError(t, err)
	assert.Equal(t, Equal, f.Type)
	assert.Equal(t, "objectClass", f.Attribute)
	assert.Equal(t, "person", f.Value)
}

func TestParseSubstringScenario(t *testing.T) {
	f, err := Parse("(&(objectClass=*)(field=first*second*third*fourth))")
	require.NoError(t, err)
	require.Equal(t, And, f.Type)
	require.Len(t, f.Children, 2)

	var substr *Filter
	for _, c := range f.Children {
		if c.Type == Substring {
			substr = c
		}
	}
	require.NotNil(t, substr)
	assert.Equal(t, "field", substr.Attribute)
	require.Len(t, substr.Parts, 4)
	assert.Equal(t, SubPart{Initial, "first"}, substr.Parts[0])
	assert.Equal(t, SubPart{Any, "second"}, substr.Parts[1])
	assert.Equal(t, SubPart{Any, "third"}, substr.Parts[2])
	assert.Equal(t, SubPart{Final, "fourth"}, substr.Parts[3])
}

func TestFilterEvaluateScenario(t *testing.T) {
	e := Entry{DN: "cn=alice", Attributes: map[string][]string{
		"cn":          {"alice"},
		"objectClass": {"person", "top"},
	}}

	f, err := Parse("(&(objectClass=person)(cn=al*))")
	require.NoError(t, err)

	matched, err := Match(f, e)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestNotIsComplement(t *testing.T) {
	e := Entry{Attributes: map[string][]string{"cn": {"alice"}}}
	f, err := Parse("(cn=alice)")
	require.NoError(t, err)

	notF := &Filter{Type: Not, Child: f}

	direct, err := Match(f, e)
	require.NoError(t, err)
	negated, err := Match(notF, e)
	require.NoError(t, err)
	assert.Equal(t, !direct, negated)
}

func TestParseOrChildOrderIsNormalized(t *testing.T) {
	f1, err := Parse("(|(cn=a)(cn=b))")
	require.NoError(t, err)
	f2, err := Parse("(|(cn=b)(cn=a))")
	require.NoError(t, err)
	assert.True(t, Equal_(f1, f2), "stable sort should make equivalent Or filters structurally equal")
}

func TestTextAndAcceptsSingleChild(t *testing.T) {
	_, err := Parse("(&(cn=a))")
	assert.NoError(t, err, "text parser accepts a single child under a combiner")
}

func TestApproxUnsupported(t *testing.T) {
	f := &Filter{Type: Approx, Attribute: "cn", Value: "alice"}
	_, err := Match(f, Entry{Attributes: map[string][]string{"cn": {"alice"}}})
	assert.Error(t, err)
}

func TestMonotonicSubstringDoesNotEmitInitialAfterStar(t *testing.T) {
	parts := parseSubstringParts("*middle*")
	require.Len(t, parts, 1)
	assert.Equal(t, Any, parts[0].Kind)
}
