package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"arxml-merger/core/merge"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mergedResult(t *testing.T) *merge.Result {
	t.Helper()

	docA := `<AUTOSAR><AR-PACKAGES><AR-PACKAGE><SHORT-NAME>Pkg</SHORT-NAME><ELEMENTS>` +
		`<I-SIGNAL><SHORT-NAME>SigX</SHORT-NAME><LENGTH>8</LENGTH></I-SIGNAL>` +
		`</ELEMENTS></AR-PACKAGE></AR-PACKAGES></AUTOSAR>`
	docB := `<AUTOSAR><AR-PACKAGES><AR-PACKAGE><SHORT-NAME>Pkg</SHORT-NAME><ELEMENTS>` +
		`<I-SIGNAL><SHORT-NAME>SigX</SHORT-NAME><LENGTH>16</LENGTH></I-SIGNAL>` +
		`</ELEMENTS></AR-PACKAGE></AR-PACKAGES></AUTOSAR>`

	result, err := merge.Merge(context.Background(), []merge.Input{
		{Name: "a.arxml", Text: docA},
		{Name: "b.arxml", Text: docB},
	}, merge.Options{})
	require.NoError(t, err)
	return result
}

func TestBuild(t *testing.T) {
	result := mergedResult(t)
	rep := Build(result, []string{"a.arxml", "b.arxml"}, "merged.arxml", merge.StrategyConservative)

	assert.True(t, rep.Success)
	assert.Equal(t, []string{"a.arxml", "b.arxml"}, rep.InputFiles)
	assert.Equal(t, merge.StrategyConservative, rep.Strategy)
	assert.Equal(t, 1, rep.Counts.TotalSignals)
	require.Len(t, rep.Resolutions, 1)
	assert.Equal(t, "/Pkg/SigX", string(rep.Resolutions[0].Path))
	assert.Contains(t, rep.Summary, "2 of 2 files merged")
}

func TestReportJSON(t *testing.T) {
	rep := Build(mergedResult(t), []string{"a.arxml", "b.arxml"}, "merged.arxml", merge.StrategyConservative)

	data, err := rep.JSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "conservative", decoded["merge_strategy"])
	assert.Equal(t, true, decoded["success"])
}

func TestWriteSignalCSV(t *testing.T) {
	rep := Build(mergedResult(t), []string{"a.arxml", "b.arxml"}, "merged.arxml", merge.StrategyConservative)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteSignalCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Signal Name", rows[0][0])
	assert.Equal(t, "SigX", rows[1][0])
	assert.Equal(t, "8", rows[1][3])
}

func TestWriteConflictCSV(t *testing.T) {
	rep := Build(mergedResult(t), []string{"a.arxml", "b.arxml"}, "merged.arxml", merge.StrategyConservative)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteConflictCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "/Pkg/SigX", rows[1][0])
	assert.Equal(t, "duplicate_element", rows[1][1])
	assert.Equal(t, "keep_first", rows[1][3])
	assert.Equal(t, "0", rows[1][4])
}

func TestWriteHTML(t *testing.T) {
	rep := Build(mergedResult(t), []string{"a.arxml", "b.arxml"}, "merged.arxml", merge.StrategyConservative)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteHTML(&buf))

	html := buf.String()
	assert.Contains(t, html, "ARXML Merge Report")
	assert.Contains(t, html, "/Pkg/SigX")
	assert.Contains(t, html, "conservative")
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
}
