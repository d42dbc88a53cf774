package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"arxml-merger/core/arxml"
	"arxml-merger/core/config"
	"arxml-merger/core/logger"
	"arxml-merger/core/merge"
	"arxml-merger/feature/report"
	"arxml-merger/feature/validate"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	mergeStrategy  string
	mergeFallback  string
	mergeRulesFile string
	mergeOutput    string
	mergeReportDir string
)

// mergeCmd represents the merge command
var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge ARXML files into one document",
	Long: `Merges two or more AUTOSAR XML files into a single document.

Conflicting element definitions are resolved by the selected strategy:
  conservative  keep the first definition (default)
  latest_wins   keep the last definition
  rule_based    consult a JSON rule list, fall back per --fallback
  interactive   ask on the terminal for every conflict

Examples:
  # Merge with defaults
  arxml-merger merge ecu1.arxml ecu2.arxml -o merged.arxml

  # Rule based with a custom rule set and full reports
  arxml-merger merge *.arxml --strategy rule_based --rules rules.json --report-dir reports/`,
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

		opts, strategy, err := buildMergeOptions(cfg, logg)
		if err != nil {
			return err
		}

		inputs := make([]merge.Input, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			inputs = append(inputs, merge.Input{Name: filepath.Base(path), Text: string(data)})
		}

		result, err := merge.Merge(cmd.Context(), inputs, opts)
		if err != nil {
			return fmt.Errorf("merge failed: %w", err)
		}

		for _, d := range result.Diagnostics {
			logDiagnostic(logg, d)
		}

		output := arxml.Serialize(result.Document)
		if err := os.WriteFile(mergeOutput, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", mergeOutput, err)
		}

		if mergeReportDir != "" {
			names := make([]string, len(inputs))
			for i, in := range inputs {
				names[i] = in.Name
			}
			if err := writeReports(result, names, strategy); err != nil {
				return err
			}
			logg.Info("Reports written", zap.String("dir", mergeReportDir))
		}

		fmt.Println(result.Summary())
		return nil
	},
}

// buildMergeOptions combines config defaults with command line flags; flags
// win. It returns the effective strategy alongside the options because the
// report records it.
func buildMergeOptions(cfg *config.Config, logg *zap.Logger) (merge.Options, merge.Strategy, error) {
	strategy := merge.Strategy(cfg.Merge.Strategy)
	if mergeStrategy != "" {
		strategy = merge.Strategy(mergeStrategy)
	}
	if strategy == "" {
		strategy = merge.StrategyConservative
	}
	if !strategy.IsValid() {
		return merge.Options{}, "", fmt.Errorf("unknown strategy: %s", strategy)
	}

	opts := merge.Options{
		Strategy:          strategy,
		Fallback:          merge.Strategy(mergeFallback),
		ReferencePatterns: cfg.Merge.Patterns(),
		Hook:              validate.NewService(cfg.Merge.Patterns(), logg).Hook(),
	}

	rulesPath := cfg.Merge.RulesFile
	if mergeRulesFile != "" {
		rulesPath = mergeRulesFile
	}
	if rulesPath != "" {
		data, err := os.ReadFile(rulesPath)
		if err != nil {
			return merge.Options{}, "", fmt.Errorf("failed to read rules file: %w", err)
		}
		rules, err := merge.ParseRules(data)
		if err != nil {
			return merge.Options{}, "", fmt.Errorf("invalid rules file %s: %w", rulesPath, err)
		}
		opts.Rules = rules
	} else if strategy == merge.StrategyRuleBased {
		opts.Rules = merge.DefaultRules()
	}

	if strategy == merge.StrategyInteractive {
		opts.Decide = promptDecision
	}

	return opts, strategy, nil
}

// promptDecision asks on the terminal how to resolve one conflict.
func promptDecision(c *merge.Conflict) (merge.Action, error) {
	fmt.Printf("\nConflict at %s (%s)\n", c.Path, c.Kind)
	for _, cand := range c.Candidates {
		fmt.Printf("  [%d] <%s> from input %d\n", cand.Source, cand.Node.Tag, cand.Source)
	}

	choices := "keep_first (f), keep_last (l), merge_attributes (m)"
	if c.Kind == merge.KindTypeMismatch {
		choices = "keep_first (f), keep_last (l)"
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Printf("Resolve with %s: ", choices)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read decision: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "f", "keep_first":
			return merge.ActionKeepFirst, nil
		case "l", "keep_last":
			return merge.ActionKeepLast, nil
		case "m", "merge_attributes":
			if c.Kind == merge.KindTypeMismatch {
				fmt.Println("merge_attributes cannot resolve a type mismatch")
				continue
			}
			return merge.ActionMergeAttributes, nil
		default:
			fmt.Println("Unrecognized choice.")
		}
	}
}

func writeReports(result *merge.Result, inputs []string, strategy merge.Strategy) error {
	if err := os.MkdirAll(mergeReportDir, 0755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	rep := report.Build(result, inputs, mergeOutput, strategy)

	data, err := rep.JSON()
	if err != nil {
		return fmt.Errorf("failed to render JSON report: %w", err)
	}
	if err := os.WriteFile(filepath.Join(mergeReportDir, "merge_report.json"), data, 0644); err != nil {
		return err
	}

	htmlFile, err := os.Create(filepath.Join(mergeReportDir, "merge_report.html"))
	if err != nil {
		return err
	}
	defer htmlFile.Close()
	if err := rep.WriteHTML(htmlFile); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}

	signalsFile, err := os.Create(filepath.Join(mergeReportDir, "signal_inventory.csv"))
	if err != nil {
		return err
	}
	defer signalsFile.Close()
	if err := rep.WriteSignalCSV(signalsFile); err != nil {
		return err
	}

	conflictsFile, err := os.Create(filepath.Join(mergeReportDir, "conflict_report.csv"))
	if err != nil {
		return err
	}
	defer conflictsFile.Close()
	return rep.WriteConflictCSV(conflictsFile)
}

func logDiagnostic(logg *zap.Logger, d merge.Diagnostic) {
	fields := []zap.Field{
		zap.String("code", d.Code),
		zap.String("path", string(d.Path)),
		zap.Int("source", d.Source),
	}
	switch d.Severity {
	case merge.SeverityCritical, merge.SeverityError:
		logg.Error(d.Message, fields...)
	case merge.SeverityWarning:
		logg.Warn(d.Message, fields...)
	default:
		logg.Info(d.Message, fields...)
	}
}

func init() {
	RootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringVarP(&mergeStrategy, "strategy", "s", "", "Conflict resolution strategy (conservative, latest_wins, rule_based, interactive)")
	mergeCmd.Flags().StringVar(&mergeFallback, "fallback", "", "Fallback strategy when no rule matches (conservative, latest_wins)")
	mergeCmd.Flags().StringVar(&mergeRulesFile, "rules", "", "JSON rule file for the rule_based strategy")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "merged.arxml", "Output file")
	mergeCmd.Flags().StringVar(&mergeReportDir, "report-dir", "", "Write JSON, HTML and CSV reports into this directory")
}
