package cmd

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KaramelBytes/tablescribe/internal/ai"
	"github.com/KaramelBytes/tablescribe/internal/analysis"
	"github.com/KaramelBytes/tablescribe/internal/dataset"
	"github.com/KaramelBytes/tablescribe/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	repModel       string
	repModelPreset string
	repProvider    string
	repMaxTokens   int
	repTemp        float64
	repAttempts    int
	repDryRun      bool
	repQuiet       bool
	repPrintPrompt bool
	repPromptLimit int
	repBudgetLimit float64
	repOutputPath  string
	repFormat      string
	repOllamaHost  string
	repTimeoutSec  int
	repMaxRows     int
	repSampleRows  int
	repWorkers     int
	repDelimiter   string
	repSheet       string
	repTitle       string
)

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Profile a data file and generate a narrated analysis report",
	Example: `  tablescribe report sales.csv
  tablescribe report sales.csv --dry-run
  tablescribe report events.parquet --model gemini-1.5-pro --format html -o report.html
  tablescribe report survey.xlsx --sheet Responses --provider ollama --model llama3.1:8b-instruct
  tablescribe report orders.csv --budget-limit 0.05 --max-rows 50000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		// Ensure flags that can carry over between invocations are reset to defaults
		// unless explicitly provided in THIS run. Use Visit to detect set flags in this parse.
		if f := cmd.Flags(); f != nil {
			provided := map[string]bool{}
			f.Visit(func(fl *pflag.Flag) {
				provided[fl.Name] = true
			})
			if !provided["budget-limit"] {
				repBudgetLimit = 0
			}
			if !provided["print-prompt"] {
				repPrintPrompt = false
			}
			if !provided["provider"] {
				repProvider = ""
			}
			if !provided["model"] {
				repModel = ""
			}
			if !provided["max-tokens"] {
				repMaxTokens = 0
			}
			if !provided["timeout-sec"] {
				repTimeoutSec = 600
			}
			if !provided["dry-run"] {
				repDryRun = false
			}
			if !provided["prompt-limit"] {
				repPromptLimit = 0
			}
		}

		ext, err := reportExt(repFormat)
		if err != nil {
			return err
		}

		delim, err := parseDelimiter(repDelimiter)
		if err != nil {
			return err
		}
		loadOpt := dataset.Options{
			Delimiter: delim,
			Sheet:     repSheet,
		}
		if cmd.Flags().Changed("max-rows") {
			loadOpt.MaxRows = repMaxRows
		} else if cfg != nil && cfg.MaxRows > 0 {
			loadOpt.MaxRows = cfg.MaxRows
		}

		ds, err := dataset.LoadFile(path, loadOpt)
		if err != nil {
			return err
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
		if cmd.Flags().Changed("sample-rows") && repSampleRows >= 0 {
			anOpt.SampleRows = repSampleRows
		}
		if cmd.Flags().Changed("workers") && repWorkers > 0 {
			anOpt.Workers = repWorkers
		}
		anOpt.Title = repTitle

		res, err := analysis.Run(cmd.Context(), ds, anOpt)
		if err != nil {
			return err
		}
		outline := res.Outline

		if !repQuiet {
			fmt.Printf("✓ Profiled %s: %d rows, %d columns, %d sections\n", path, outline.Rows, outline.Columns, len(outline.Sections))
			if outline.Truncated {
				fmt.Printf("⚠ Input truncated at %d rows (--max-rows)\n", outline.Rows)
			}
		}

		// Apply provider-preset via explicit --provider (offline, no network)
		providerUsed := ""
		if repProvider != "" {
			if preset, ok := ai.PresetCatalog(repProvider); ok {
				ai.MergeCatalog(preset)
				providerUsed = repProvider
				if !repQuiet {
					fmt.Printf("Using built-in provider preset: %s (merged into catalog)\n", repProvider)
				}
			} else {
				return fmt.Errorf("unknown --provider: %s (try gemini|google|ollama|local)", repProvider)
			}
		}

		// Apply provider and/or tier presets via --model-preset if requested (offline, no network)
		if repModelPreset != "" {
			provider := repModelPreset
			tier := ""
			if strings.Contains(repModelPreset, ":") {
				parts := strings.SplitN(repModelPreset, ":", 2)
				provider, tier = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
			} else {
				switch repModelPreset {
				case "cheap", "balanced", "high-context":
					provider = ""
					tier = repModelPreset
				}
			}
			if provider != "" {
				if preset, ok := ai.PresetCatalog(provider); ok {
					ai.MergeCatalog(preset)
					providerUsed = provider
					if !repQuiet {
						fmt.Printf("Using built-in provider preset: %s (merged into catalog)\n", provider)
					}
				} else if tier == "" {
					return fmt.Errorf("unknown --model-preset: %s (try gemini|ollama or :cheap|:balanced|:high-context)", repModelPreset)
				}
			}
			if tier != "" && repModel == "" {
				prov := providerUsed
				if prov == "" && repProvider != "" {
					prov = repProvider
				}
				if name, ok := ai.RecommendModel(prov, tier); ok {
					repModel = name
					if prov == "" {
						prov = "default"
					}
					if !repQuiet {
						fmt.Printf("Selected model by tier preset (%s:%s): %s\n", prov, tier, name)
					}
				} else {
					return fmt.Errorf("unknown tier in --model-preset: %s (use cheap|balanced|high-context)", tier)
				}
			}
		}

		model := selectModel(cfg, repModel)

		maxTokens := repMaxTokens
		if maxTokens == 0 && cfg != nil && cfg.MaxTokens > 0 {
			maxTokens = cfg.MaxTokens
		}
		if maxTokens == 0 {
			maxTokens = 1024
		}

		temp := repTemp
		if temp == 0 && cfg != nil && cfg.Temperature > 0 {
			temp = cfg.Temperature
		}
		if temp == 0 {
			temp = 0.4
		}

		attempts := repAttempts
		if attempts == 0 && cfg != nil && cfg.NarrateAttempts > 0 {
			attempts = cfg.NarrateAttempts
		}
		if attempts == 0 {
			attempts = 3
		}

		client, providerName, err := buildRuntime(cfg, runtimeOptions{
			ProviderFlag: repProvider,
			OllamaHost:   repOllamaHost,
		})
		if err != nil {
			return err
		}
		if closer, ok := client.(io.Closer); ok {
			defer func() { _ = closer.Close() }()
		}

		// Per-section prompts drive token and cost estimates
		prompts := make([]string, len(outline.Sections))
		totalPromptTokens := 0
		largest := 0
		for i := range outline.Sections {
			prompts[i] = ai.SectionPrompt(outline, i)
			n := utils.CountTokens(prompts[i])
			if repPromptLimit > 0 && n > repPromptLimit {
				if !repQuiet {
					fmt.Printf("⚠ Section %d prompt exceeds --prompt-limit (%d > %d). Truncating before send...\n", i+1, n, repPromptLimit)
				}
				prompts[i] = utils.TruncateToTokenLimit(prompts[i], repPromptLimit)
				n = utils.CountTokens(prompts[i])
			}
			totalPromptTokens += n
			if n > largest {
				largest = n
			}
		}

		if !repQuiet {
			fmt.Printf("Tokens: total≈%d across %d section prompts (largest≈%d)\n", totalPromptTokens, len(prompts), largest)
		}

		// Model metadata and pricing warnings
		var estCost float64
		if mi, ok := ai.LookupModel(model); ok {
			if debug {
				fmt.Printf("Model: %s, context: %d tokens, largest prompt: %d, max-tokens: %d\n", mi.Name, mi.ContextTokens, largest, maxTokens)
			}
			if !repDryRun && largest+maxTokens > mi.ContextTokens {
				msg := fmt.Sprintf("⚠ Largest section prompt (%d tokens) + max-tokens (%d) exceeds %s context window (~%d tokens).\n",
					largest, maxTokens, mi.Name, mi.ContextTokens)
				if !repQuiet {
					fmt.Print(msg)
				}
				if providerName == ai.ProviderOllama {
					return fmt.Errorf("context window exceeded for local model '%s'.\n"+
						"  Required: %d tokens (prompt) + %d (max-tokens) = %d total\n"+
						"  Available: %d tokens\n\n"+
						"Solutions:\n"+
						"  1. Reduce --sample-rows to shrink section prompts\n"+
						"  2. Reduce --max-tokens\n"+
						"  3. Use a model with a larger context window",
						model, largest, maxTokens, largest+maxTokens, mi.ContextTokens)
				}
			}
			if cost, ok := ai.EstimateCostUSD(model, totalPromptTokens, maxTokens*len(prompts)); ok {
				estCost = cost
				if !repQuiet {
					fmt.Printf("Estimated max cost: ~$%.4f (in %.4f/out %.4f per 1K tokens)\n", cost, mi.InputPerK, mi.OutputPerK)
				}
			}
		}

		if err := enforceBudget(estCost, repBudgetLimit); err != nil {
			return err
		}

		if repDryRun {
			if !repQuiet {
				// Deterministic dry-run request id for observability
				sum := sha1.Sum([]byte(strings.Join(prompts, "\n")))
				rid := fmt.Sprintf("sim_%x", sum[:6])
				fmt.Println("\n--dry-run: no API call will be made. Section prompts below --")
				fmt.Printf("Request ID (dry-run): %s\n", rid)
			}
			for i, p := range prompts {
				fmt.Printf("\n-- section %d/%d: %s --\n", i+1, len(prompts), outline.Sections[i].Title())
				fmt.Println(p)
			}
			return nil
		}

		if repPrintPrompt && !repQuiet {
			fmt.Println("\n--print-prompt: sending the following section prompts --")
			for i, p := range prompts {
				fmt.Printf("\n-- section %d/%d: %s --\n", i+1, len(prompts), outline.Sections[i].Title())
				fmt.Println(p)
			}
		}

		timeoutSec := repTimeoutSec
		if timeoutSec <= 0 {
			timeoutSec = 600
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeoutSec)*time.Second)
		defer cancel()

		narOpt := ai.DefaultNarrationOptions()
		narOpt.Model = model
		narOpt.MaxTokens = maxTokens
		narOpt.Temperature = temp
		narOpt.Attempts = attempts
		narOpt.PromptLimit = repPromptLimit
		if cfg != nil {
			if cfg.RetryBaseDelayMs > 0 {
				narOpt.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
			}
			if cfg.RetryMaxDelayMs > 0 {
				narOpt.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
			}
		}
		if !repQuiet {
			narOpt.OnSection = func(i int, title string) {
				fmt.Printf("⚙ [%d/%d] Narrating %s (model=%s) ...\n", i+1, len(outline.Sections), title, model)
			}
		}

		rep, err := ai.NarrateOutline(ctx, client, outline, narOpt)
		if err != nil {
			return friendlyNarrationError(err, providerName, model)
		}

		if !repQuiet {
			fmt.Printf("✓ Narration complete: tokens in≈%d out≈%d total≈%d\n",
				rep.Usage.PromptTokens, rep.Usage.CompletionTokens, rep.Usage.TotalTokens)
			if cost, ok := ai.EstimateCostUSD(model, rep.Usage.PromptTokens, rep.Usage.CompletionTokens); ok && cost > 0 {
				fmt.Printf("Actual cost: ~$%.4f\n", cost)
			}
		}

		outPath := repOutputPath
		if outPath == "" {
			outPath = defaultReportPath(ext)
		}
		if err := writeReport(cmd.Context(), rep, ext, outPath, cfg); err != nil {
			return err
		}
		if !repQuiet {
			fmt.Printf("💾 Saved report to %s\n", outPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&repModel, "model", "", "override model (default from config)")
	reportCmd.Flags().StringVar(&repModelPreset, "model-preset", "", "apply preset: provider catalog (gemini|google|ollama|local) or tier (cheap|balanced|high-context) or <provider>:<tier>")
	reportCmd.Flags().StringVar(&repProvider, "provider", "", "explicit provider to merge catalog and guide tier selection (gemini|google|ollama|local)")
	reportCmd.Flags().IntVar(&repMaxTokens, "max-tokens", 0, "max tokens per section response")
	reportCmd.Flags().Float64Var(&repTemp, "temp", 0, "sampling temperature")
	reportCmd.Flags().IntVar(&repAttempts, "attempts", 0, "narration attempts per section before giving up")
	reportCmd.Flags().BoolVar(&repDryRun, "dry-run", false, "profile the file and print section prompts without calling the API")
	reportCmd.Flags().BoolVar(&repPrintPrompt, "print-prompt", false, "print the section prompts being sent to the API")
	reportCmd.Flags().Float64Var(&repBudgetLimit, "budget-limit", 0, "fail if estimated max cost (USD) exceeds this budget")
	reportCmd.Flags().StringVarP(&repOutputPath, "output", "o", "", "output path (default data-analysis-<uuid>.<ext>)")
	reportCmd.Flags().StringVar(&repFormat, "format", "pdf", "output format: pdf|html|markdown")
	reportCmd.Flags().BoolVar(&repQuiet, "quiet", false, "suppress non-essential output")
	reportCmd.Flags().StringVar(&repOllamaHost, "ollama-host", "", "override Ollama host (e.g., http://127.0.0.1:11434)")
	reportCmd.Flags().IntVar(&repTimeoutSec, "timeout-sec", 600, "overall narration timeout in seconds (default 600)")
	reportCmd.Flags().IntVar(&repMaxRows, "max-rows", 0, "maximum rows to ingest (0 = unlimited)")
	reportCmd.Flags().IntVar(&repSampleRows, "sample-rows", 5, "number of sample rows to include in the report")
	reportCmd.Flags().IntVar(&repWorkers, "workers", 0, "profile columns concurrently with this many workers")
	reportCmd.Flags().StringVar(&repDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	reportCmd.Flags().StringVar(&repSheet, "sheet", "", "XLSX: sheet name to analyze (default first sheet)")
	reportCmd.Flags().StringVar(&repTitle, "title", "", "override the report title")
	reportCmd.Flags().IntVar(&repPromptLimit, "prompt-limit", 0, "truncate each section prompt to roughly this many tokens before sending (0 = no limit)")
}
