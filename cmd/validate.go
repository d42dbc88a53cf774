package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"arxml-merger/core/config"
	"arxml-merger/core/logger"
	"arxml-merger/feature/validate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var validateJSON bool

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate ARXML files without merging",
	Long: `Checks each file for well-formed XML, AUTOSAR structure, valid and
unique short names, and resolvable references. Exits non-zero when any file
has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		svc := validate.NewService(cfg.Merge.Patterns(), logg)

		results := make([]*validate.FileResult, 0, len(args))
		invalid := 0
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			res := svc.ValidateText(filepath.Base(path), string(data))
			results = append(results, res)
			if !res.Valid {
				invalid++
			}
		}

		if validateJSON {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results: %w", err)
			}
			fmt.Println(string(data))
		} else {
			for _, res := range results {
				status := "OK"
				if !res.Valid {
					status = "INVALID"
				}
				fmt.Printf("%-40s %s (%d elements, %d issues)\n", res.Name, status, res.ElementCount, len(res.Issues))
				for _, issue := range res.Issues {
					fmt.Printf("    [%s] %s", issue.Severity, issue.Message)
					if issue.Path != "" {
						fmt.Printf(" at %s", issue.Path)
					}
					fmt.Println()
				}
			}
		}

		if invalid > 0 {
			logg.Error("Validation failed", zap.Int("invalid_files", invalid))
			return fmt.Errorf("%d of %d files invalid", invalid, len(args))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output results as JSON")
}
