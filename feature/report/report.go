package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"arxml-merger/core/merge"
)

// MergeReport is the full record of one merge run: inventory, resolution log,
// diagnostics and the run parameters.
type MergeReport struct {
	Timestamp   time.Time          `json:"timestamp"`
	InputFiles  []string           `json:"input_files"`
	OutputFile  string             `json:"output_file,omitempty"`
	Strategy    merge.Strategy     `json:"merge_strategy"`
	Success     bool               `json:"success"`
	Summary     string             `json:"summary"`
	Inventory   *Inventory         `json:"inventory"`
	Counts      InventorySummary   `json:"counts"`
	Resolutions []merge.Resolution `json:"resolutions"`
	Diagnostics []merge.Diagnostic `json:"diagnostics"`
}

// Build assembles a report from a finished merge run. The inventory is
// scanned from the merged tree, so it reflects what actually survived
// resolution rather than what any single input declared.
func Build(result *merge.Result, inputFiles []string, outputFile string, strategy merge.Strategy) *MergeReport {
	inv := ScanInventory(result.Index, outputFile)

	return &MergeReport{
		Timestamp:   time.Now(),
		InputFiles:  inputFiles,
		OutputFile:  outputFile,
		Strategy:    strategy,
		Success:     true,
		Summary:     result.Summary(),
		Inventory:   inv,
		Counts:      inv.Summarize(),
		Resolutions: result.Resolutions,
		Diagnostics: result.Diagnostics,
	}
}

// JSON renders the report as indented JSON.
func (r *MergeReport) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteSignalCSV writes the signal inventory as CSV.
func (r *MergeReport) WriteSignalCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Signal Name", "Source File", "Data Type", "Length", "Description", "Path"}); err != nil {
		return err
	}
	for _, sig := range r.Inventory.Signals {
		length := ""
		if sig.Length > 0 {
			length = fmt.Sprintf("%d", sig.Length)
		}
		if err := cw.Write([]string{sig.Name, sig.SourceFile, sig.DataType, length, sig.Description, sig.Path}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteConflictCSV writes the resolution log as CSV.
func (r *MergeReport) WriteConflictCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Path", "Conflict Kind", "Strategy", "Action", "Winning Source", "Fallback"}); err != nil {
		return err
	}
	for _, res := range r.Resolutions {
		fallback := ""
		if res.Fallback {
			fallback = "yes"
		}
		row := []string{
			string(res.Path),
			string(res.Kind),
			string(res.Strategy),
			string(res.Action),
			fmt.Sprintf("%d", res.Source),
			fallback,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
