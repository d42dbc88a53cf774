package merge

import (
	"context"
	"testing"

	"arxml-merger/core/arxml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_RuleBasedMergeAttributes(t *testing.T) {
	// Two I-SIGNAL nodes with disjoint attribute sets merge into one node
	// carrying the union of both sets.
	left := wrap(`<I-SIGNAL length="8"><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>`)
	right := wrap(`<I-SIGNAL init-value="0"><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>`)

	opts := Options{
		Strategy: StrategyRuleBased,
		Rules: []Rule{
			{ElementType: "I-SIGNAL", Kind: KindDuplicateElement, Action: ActionMergeAttributes, Priority: 10},
		},
	}

	res, err := Merge(context.Background(), []Input{{Text: left}, {Text: right}}, opts)
	require.NoError(t, err)

	sig := res.Index.Get("/Pkg/Sig")
	require.NotNil(t, sig)
	length, _ := sig.Node.Attr("length")
	initValue, _ := sig.Node.Attr("init-value")
	assert.Equal(t, "8", length)
	assert.Equal(t, "0", initValue)

	require.Len(t, res.Resolutions, 1)
	assert.Equal(t, ActionMergeAttributes, res.Resolutions[0].Action)
	assert.False(t, res.Resolutions[0].Fallback)
}

func TestMerge_RuleBasedAttributeCollisionLaterWins(t *testing.T) {
	left := wrap(`<I-SIGNAL length="8"><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>`)
	right := wrap(`<I-SIGNAL length="16"><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>`)

	opts := Options{
		Strategy: StrategyRuleBased,
		Rules:    []Rule{{ElementType: "*", Kind: KindDuplicateElement, Action: ActionMergeAttributes, Priority: 1}},
	}

	res, err := Merge(context.Background(), []Input{{Text: left}, {Text: right}}, opts)
	require.NoError(t, err)

	assert.Equal(t, "16", signalAttr(t, res, "/Pkg/Sig", "length"))
}

func TestMerge_RuleBasedPriorityOrder(t *testing.T) {
	left := wrap(`<I-SIGNAL v="1"><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>`)
	right := wrap(`<I-SIGNAL v="2"><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>`)

	opts := Options{
		Strategy: StrategyRuleBased,
		Rules: []Rule{
			{ElementType: "*", Kind: KindDuplicateElement, Action: ActionKeepFirst, Priority: 1},
			{ElementType: "I-SIGNAL", Kind: KindDuplicateElement, Action: ActionKeepLast, Priority: 10},
		},
	}

	res, err := Merge(context.Background(), []Input{{Text: left}, {Text: right}}, opts)
	require.NoError(t, err)

	// The higher-priority I-SIGNAL rule decides, not the wildcard.
	assert.Equal(t, "2", signalAttr(t, res, "/Pkg/Sig", "v"))
}

func TestMerge_RuleBasedFallback(t *testing.T) {
	opts := Options{
		Strategy: StrategyRuleBased,
		Rules:    []Rule{{ElementType: "ECU-INSTANCE", Kind: KindDuplicateElement, Action: ActionKeepLast, Priority: 1}},
	}

	res, err := Merge(context.Background(), []Input{{Text: docA}, {Text: docB}}, opts)
	require.NoError(t, err)

	// No rule matches I-SIGNAL; conservative fallback keeps source 0 and the
	// fallback is recorded, never fatal.
	assert.Equal(t, "1", signalAttr(t, res, "/Pkg/SigX", "value"))
	require.Len(t, res.Resolutions, 1)
	assert.True(t, res.Resolutions[0].Fallback)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, CodeUnresolvedRule, res.Diagnostics[0].Code)
	assert.Equal(t, SeverityWarning, res.Diagnostics[0].Severity)
}

func TestMerge_TypeMismatchEscalated(t *testing.T) {
	left := wrap(`<I-SIGNAL><SHORT-NAME>Thing</SHORT-NAME></I-SIGNAL>`)
	right := wrap(`<SENDER-RECEIVER-INTERFACE><SHORT-NAME>Thing</SHORT-NAME></SENDER-RECEIVER-INTERFACE>`)

	res, err := Merge(context.Background(), []Input{{Text: left}, {Text: right}}, Options{})
	require.NoError(t, err)

	require.Len(t, res.Resolutions, 1)
	assert.Equal(t, KindTypeMismatch, res.Resolutions[0].Kind)

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, CodeTypeMismatch, res.Diagnostics[0].Code)
	assert.Equal(t, SeverityCritical, res.Diagnostics[0].Severity)

	// Conservative keeps the first definition's tag.
	thing := res.Index.Get("/Pkg/Thing")
	require.NotNil(t, thing)
	assert.Equal(t, "I-SIGNAL", thing.Node.Tag)
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "defaults", opts: Options{}},
		{name: "explicit strategies", opts: Options{Strategy: StrategyLatestWins, Fallback: StrategyConservative}},
		{name: "unknown strategy", opts: Options{Strategy: "majority_vote"}, wantErr: true},
		{name: "rule_based fallback only simple", opts: Options{Fallback: StrategyRuleBased}, wantErr: true},
		{name: "rule with bad action", opts: Options{Rules: []Rule{{ElementType: "*", Kind: KindDuplicateElement, Action: "explode"}}}, wantErr: true},
		{name: "rule with bad kind", opts: Options{Rules: []Rule{{ElementType: "*", Kind: "odd", Action: ActionKeepFirst}}}, wantErr: true},
		{
			name:    "merge_attributes on type_mismatch rule",
			opts:    Options{Rules: []Rule{{ElementType: "*", Kind: KindTypeMismatch, Action: ActionMergeAttributes}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOptions(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseRules(t *testing.T) {
	data := []byte(`{"rules": [
		{"element_type": "I-SIGNAL", "conflict_kind": "duplicate_element", "action": "merge_attributes", "priority": 10}
	]}`)

	rules, err := ParseRules(data)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "I-SIGNAL", rules[0].ElementType)
	assert.Equal(t, ActionMergeAttributes, rules[0].Action)
	assert.Equal(t, 10, rules[0].Priority)

	_, err = ParseRules([]byte(`{"rules": [{"element_type": "X", "conflict_kind": "duplicate_element", "action": "explode"}]}`))
	assert.Error(t, err)

	_, err = ParseRules([]byte(`not json`))
	assert.Error(t, err)
}

func TestCheckUniqueness(t *testing.T) {
	good, err := arxml.Parse(docB)
	require.NoError(t, err)
	assert.NoError(t, checkUniqueness(good))

	// Hand-built violation: two I-SIGNAL children named Sig under one parent.
	bad, err := arxml.Parse(wrap(`<I-SIGNAL><SHORT-NAME>Sig</SHORT-NAME></I-SIGNAL>`))
	require.NoError(t, err)
	elements := bad.Child("AR-PACKAGES").Children[0].Child("ELEMENTS")
	elements.Children = append(elements.Children, elements.Children[0].Clone())

	err = checkUniqueness(bad)
	require.Error(t, err)
	var ice *InternalConsistencyError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, arxml.Path("/Pkg/Sig"), ice.Path)
}
