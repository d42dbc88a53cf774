package merge

import (
	"context"
	"testing"

	"arxml-merger/core/arxml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_InteractiveFlow(t *testing.T) {
	ctx := context.Background()

	s, err := NewSession([]Input{{Text: docA}, {Text: docB}}, Options{Strategy: StrategyInteractive})
	require.NoError(t, err)

	conflict, err := s.Next(ctx)
	require.NoError(t, err)
	require.NotNil(t, conflict, "interactive run must suspend on the conflict")
	assert.Equal(t, arxml.Path("/Pkg/SigX"), conflict.Path)
	assert.Equal(t, KindDuplicateElement, conflict.Kind)
	require.Len(t, conflict.Candidates, 2)
	assert.Same(t, conflict, s.Pending())

	// Next is idempotent while a decision is outstanding.
	again, err := s.Next(ctx)
	require.NoError(t, err)
	assert.Same(t, conflict, again)

	require.NoError(t, s.Decide(ActionKeepLast))
	assert.Nil(t, s.Pending())

	conflict, err = s.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, conflict, "no further conflicts expected")

	res, err := s.Finish(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2", signalAttr(t, res, "/Pkg/SigX", "value"))
	require.Len(t, res.Resolutions, 1)
	assert.Equal(t, StrategyInteractive, res.Resolutions[0].Strategy)
	assert.Equal(t, ActionKeepLast, res.Resolutions[0].Action)
	assert.Equal(t, 1, res.Resolutions[0].Source)
}

func TestSession_InvalidDecision(t *testing.T) {
	left := wrap(`<I-SIGNAL><SHORT-NAME>Thing</SHORT-NAME></I-SIGNAL>`)
	right := wrap(`<CLIENT-SERVER-INTERFACE><SHORT-NAME>Thing</SHORT-NAME></CLIENT-SERVER-INTERFACE>`)

	s, err := NewSession([]Input{{Text: left}, {Text: right}}, Options{Strategy: StrategyInteractive})
	require.NoError(t, err)

	conflict, err := s.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conflict)
	require.Equal(t, KindTypeMismatch, conflict.Kind)

	// merge_attributes is out of range for a type mismatch: explicit error,
	// no silent fallback, and the conflict stays pending.
	err = s.Decide(ActionMergeAttributes)
	var ide *InvalidDecisionError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, KindTypeMismatch, ide.Kind)
	assert.NotNil(t, s.Pending())

	require.NoError(t, s.Decide(ActionKeepFirst))
}

func TestSession_DecideWithoutPending(t *testing.T) {
	s, err := NewSession([]Input{{Text: docA}}, Options{})
	require.NoError(t, err)
	assert.Error(t, s.Decide(ActionKeepFirst))
}

func TestSession_FinishRequiresCompletion(t *testing.T) {
	s, err := NewSession([]Input{{Text: docA}, {Text: docB}}, Options{Strategy: StrategyInteractive})
	require.NoError(t, err)

	_, err = s.Next(context.Background())
	require.NoError(t, err)

	// A pending conflict means no output may escape.
	_, err = s.Finish(context.Background())
	assert.Error(t, err)
}

func TestMerge_InteractiveViaCallback(t *testing.T) {
	var seen []arxml.Path
	opts := Options{
		Strategy: StrategyInteractive,
		Decide: func(c *Conflict) (Action, error) {
			seen = append(seen, c.Path)
			return ActionKeepFirst, nil
		},
	}

	res, err := Merge(context.Background(), []Input{{Text: docA}, {Text: docB}}, opts)
	require.NoError(t, err)

	assert.Equal(t, []arxml.Path{"/Pkg/SigX"}, seen)
	assert.Equal(t, "1", signalAttr(t, res, "/Pkg/SigX", "value"))
}

func TestMerge_InteractiveWithoutCallback(t *testing.T) {
	_, err := Merge(context.Background(), []Input{{Text: docA}, {Text: docB}}, Options{Strategy: StrategyInteractive})
	assert.Error(t, err)
}

func TestSession_WrapperChainsUnify(t *testing.T) {
	// Both documents contribute packages; the merged tree must hold one
	// AR-PACKAGES container with one Pkg, not two parallel hierarchies.
	res, err := Merge(context.Background(), []Input{{Text: docA}, {Text: docB}}, Options{})
	require.NoError(t, err)

	root := res.Document
	var pkgsCount int
	for _, c := range root.Children {
		if c.Tag == "AR-PACKAGES" {
			pkgsCount++
		}
	}
	assert.Equal(t, 1, pkgsCount)

	pkgs := root.Child("AR-PACKAGES")
	require.Len(t, pkgs.Children, 1)
	elements := pkgs.Children[0].Child("ELEMENTS")
	require.NotNil(t, elements)
	assert.Len(t, elements.Children, 2) // SigX + SigY
}
