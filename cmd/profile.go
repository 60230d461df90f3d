package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/tablescribe/internal/analysis"
	"github.com/KaramelBytes/tablescribe/internal/dataset"
	"github.com/KaramelBytes/tablescribe/internal/utils"
	"github.com/spf13/cobra"
)

var (
	proOutputPath string
	proJSON       bool
	proDelimiter  string
	proSampleRows int
	proMaxRows    int
	proWorkers    int
	proSheet      string
	proTitle      string
	proQuiet      bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <files...>",
	Short: "Profile data files offline and print the report outline (no API calls)",
	Example: `  tablescribe profile sales.csv
  tablescribe profile sales.csv --json
  tablescribe profile data/*.parquet --quiet
  tablescribe profile survey.xlsx --sheet Responses -o survey-outline.md`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		seen := map[string]struct{}{}
		for _, arg := range args {
			matches, _ := filepath.Glob(arg)
			if len(matches) == 0 {
				// treat as literal path if exists
				if _, err := os.Stat(arg); err == nil {
					matches = []string{arg}
				}
			}
			for _, m := range matches {
				if _, ok := seen[m]; ok {
					continue
				}
				seen[m] = struct{}{}
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		sort.Strings(files)

		if proOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output works with a single input file (%d matched)", len(files))
		}

		delim, err := parseDelimiter(proDelimiter)
		if err != nil {
			return err
		}
		loadOpt := dataset.Options{
			Delimiter: delim,
			MaxRows:   proMaxRows,
			Sheet:     proSheet,
		}

		anOpt := analysis.DefaultOptions()
		if cfg != nil {
			if cfg.SampleRows > 0 {
				anOpt.SampleRows = cfg.SampleRows
			}
			if cfg.Workers > 0 {
				anOpt.Workers = cfg.Workers
			}
			if cfg.HighNullRatio > 0 {
				anOpt.HighNullRatio = cfg.HighNullRatio
			}
		}
		if cmd.Flags().Changed("sample-rows") && proSampleRows >= 0 {
			anOpt.SampleRows = proSampleRows
		}
		if cmd.Flags().Changed("workers") && proWorkers > 0 {
			anOpt.Workers = proWorkers
		}
		anOpt.Title = proTitle

		total := len(files)
		for i, path := range files {
			if total > 1 && !proQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := dataset.LoadFile(path, loadOpt)
			if err != nil {
				return err
			}
			res, err := analysis.Run(cmd.Context(), ds, anOpt)
			if err != nil {
				return err
			}

			var out string
			if proJSON {
				b, err := utils.PrettyJSON(res.Outline)
				if err != nil {
					return fmt.Errorf("encode outline: %w", err)
				}
				out = string(b)
			} else {
				out = res.Outline.Markdown()
			}

			if proOutputPath != "" {
				if err := os.WriteFile(proOutputPath, []byte(out), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Printf("✓ Wrote outline to %s\n", proOutputPath)
				continue
			}
			fmt.Println(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&proOutputPath, "output", "o", "", "optional path to write the outline (single file only)")
	profileCmd.Flags().BoolVar(&proJSON, "json", false, "emit the outline as JSON instead of Markdown")
	profileCmd.Flags().StringVar(&proDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	profileCmd.Flags().IntVar(&proSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	profileCmd.Flags().IntVar(&proMaxRows, "max-rows", 0, "maximum rows to ingest (0 = unlimited)")
	profileCmd.Flags().IntVar(&proWorkers, "workers", 0, "profile columns concurrently with this many workers")
	profileCmd.Flags().StringVar(&proSheet, "sheet", "", "XLSX: sheet name to analyze (default first sheet)")
	profileCmd.Flags().StringVar(&proTitle, "title", "", "override the outline title")
	profileCmd.Flags().BoolVar(&proQuiet, "quiet", false, "suppress progress output")
}
