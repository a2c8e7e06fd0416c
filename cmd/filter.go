package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/leadfilter-cli/internal/aiclassify"
	"github.com/sells-group/leadfilter-cli/internal/export"
	"github.com/sells-group/leadfilter-cli/internal/filter"
	"github.com/sells-group/leadfilter-cli/internal/model"
)

var (
	filterInput    string
	filterService  string
	filterMode     string
	filterBackend  string
	filterSave     bool
	filterXLSXPath string
	filterJSONPath string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a scraped lead list for a target service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if !model.ValidServiceType(filterService) {
			return eris.Errorf("unknown service type %q (see 'leadfilter categories')", filterService)
		}

		mode := filter.Mode(filterMode)

		validateMode := "filter"
		if mode == filter.ModeRule {
			validateMode = "filter-rule"
		}
		if filterBackend != "" {
			cfg.Filter.Backend = filterBackend
		}
		if err := cfg.Validate(validateMode); err != nil {
			return err
		}

		leads, err := loadLeads(filterInput)
		if err != nil {
			return err
		}

		ruleSet, err := loadRuleSet(cfg)
		if err != nil {
			return err
		}

		var classifier *aiclassify.BatchClassifier
		if mode == filter.ModeAI {
			backend, err := newBackend(cfg, filterBackend)
			if err != nil {
				return err
			}
			classifier = newBatchClassifier(backend, ruleSet, cfg)
		}

		o := filter.NewOrchestrator(ruleSet, classifier, cfg.Filter.MinConfidence)

		progress := func(p aiclassify.Progress) {
			fmt.Fprintf(os.Stderr, "\rclassifying... %d/%d (%.0f%%)", p.Processed, p.Total, p.Percentage)
			if p.Processed == p.Total {
				fmt.Fprintln(os.Stderr)
			}
		}

		result, verdicts, summary, err := o.Run(ctx, leads, filterService, mode, progress)
		if err != nil {
			return err
		}

		if filterSave {
			if err := saveRun(ctx, leads, verdicts, summary); err != nil {
				return err
			}
		}

		if filterXLSXPath != "" {
			if err := export.WriteXLSX(filterXLSXPath, result, summary); err != nil {
				return err
			}
		}

		if filterJSONPath != "" {
			if err := writeResultJSON(filterJSONPath, result, summary); err != nil {
				return err
			}
		}

		zap.L().Info("filter complete",
			zap.String("service", filterService),
			zap.String("mode", filterMode),
			zap.Int("total", summary.Total),
			zap.Int("accepted", summary.Included),
			zap.Int("excluded", summary.Excluded),
			zap.Float64("inclusion_rate", summary.InclusionRate),
			zap.Int("fallbacks", summary.FallbackCount),
		)
		return nil
	},
}

// loadLeads reads a JSON array of leads. The unmarshaler accepts both
// our field names and the raw scraper field names.
func loadLeads(path string) ([]model.Lead, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read leads file %s", path)
	}

	var leads []model.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, eris.Wrapf(err, "parse leads file %s", path)
	}
	if len(leads) == 0 {
		return nil, eris.Errorf("no leads in %s", path)
	}
	return leads, nil
}

func saveRun(ctx context.Context, leads []model.Lead, verdicts []model.Verdict, summary model.Summary) error {
	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	run, err := s.CreateRun(ctx, filterService, filterMode)
	if err != nil {
		return err
	}

	if _, err := s.SaveLeads(ctx, run.ID, leads); err != nil {
		return err
	}
	if err := s.SaveVerdicts(ctx, run.ID, verdicts); err != nil {
		return err
	}
	if err := s.CompleteRun(ctx, run.ID, summary); err != nil {
		return err
	}

	zap.L().Info("run saved", zap.String("run_id", run.ID))
	return nil
}

func writeResultJSON(path string, result model.BatchResult, summary model.Summary) error {
	out := struct {
		model.BatchResult
		Summary model.Summary `json:"summary"`
	}{BatchResult: result, Summary: summary}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal result")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return eris.Wrapf(err, "write result %s", path)
	}
	return nil
}

func init() {
	filterCmd.Flags().StringVar(&filterInput, "input", "", "path to JSON leads file (required)")
	filterCmd.Flags().StringVar(&filterService, "service", "", "target service type (required)")
	filterCmd.Flags().StringVar(&filterMode, "mode", "ai", "classification mode: ai or rule")
	filterCmd.Flags().StringVar(&filterBackend, "backend", "", "AI backend override: anthropic, openai, or proxy")
	filterCmd.Flags().BoolVar(&filterSave, "save", false, "persist the run to the store")
	filterCmd.Flags().StringVar(&filterXLSXPath, "xlsx", "", "write results to an XLSX workbook")
	filterCmd.Flags().StringVar(&filterJSONPath, "json", "", "write results to a JSON file")
	_ = filterCmd.MarkFlagRequired("input")
	_ = filterCmd.MarkFlagRequired("service")
	rootCmd.AddCommand(filterCmd)
}
