package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/tablescribe/internal/ai"
	cfgpkg "github.com/KaramelBytes/tablescribe/internal/config"
	"github.com/KaramelBytes/tablescribe/internal/render"
	"github.com/KaramelBytes/tablescribe/internal/utils"
	"github.com/google/uuid"
)

type runtimeOptions struct {
	ProviderFlag string
	OllamaHost   string
}

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	httpTimeout := 60 * time.Second
	retryMax := 3
	baseDelay := 500 * time.Millisecond
	maxDelay := 4 * time.Second
	if cfg != nil {
		if cfg.HTTPTimeoutSec > 0 {
			httpTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		}
		if cfg.RetryMaxAttempts > 0 {
			retryMax = cfg.RetryMaxAttempts
		}
		if cfg.RetryBaseDelayMs > 0 {
			baseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		}
		if cfg.RetryMaxDelayMs > 0 {
			maxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		}
	}

	providerName := strings.ToLower(strings.TrimSpace(opts.ProviderFlag))
	if providerName == "" && cfg != nil && cfg.DefaultProvider != "" {
		providerName = strings.ToLower(cfg.DefaultProvider)
	}
	if providerName == "" {
		providerName = ai.ProviderGemini
	}

	switch providerName {
	case "local", "ollama":
		providerName = ai.ProviderOllama
	case "google", "gemini":
		providerName = ai.ProviderGemini
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" && cfg != nil && cfg.GeminiAPIKey != "" {
		apiKey = cfg.GeminiAPIKey
	}

	rc := ai.RuntimeConfig{
		HTTPTimeout: httpTimeout,
		RetryMax:    retryMax,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
		APIKey:      apiKey,
	}

	if providerName == ai.ProviderOllama {
		host := strings.TrimSpace(opts.OllamaHost)
		if host == "" {
			if v := os.Getenv("TABLESCRIBE_OLLAMA_HOST"); v != "" {
				host = v
			}
		}
		if host == "" && cfg != nil && cfg.OllamaHost != "" {
			host = cfg.OllamaHost
		}
		if host == "" {
			host = "http://127.0.0.1:11434"
		}
		rc.Host = host
		if v := os.Getenv("TABLESCRIBE_OLLAMA_TIMEOUT_SEC"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				rc.HTTPTimeout = time.Duration(n) * time.Second
			}
		}
		if cfg != nil && cfg.OllamaTimeoutSec > 0 {
			rc.HTTPTimeout = time.Duration(cfg.OllamaTimeoutSec) * time.Second
		}
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s", providerName)
	}
	return client, providerName, nil
}

func selectModel(cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return "gemini-1.5-flash"
}

func enforceBudget(estCost, limit float64) error {
	if limit > 0 && estCost > 0 && estCost > limit {
		return fmt.Errorf("✗ Estimated cost ~$%.4f exceeds budget limit ~$%.4f", estCost, limit)
	}
	return nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	default:
		return 0, fmt.Errorf("unsupported --delimiter: %s", s)
	}
}

// reportExt maps a --format value to its file extension.
func reportExt(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "pdf":
		return "pdf", nil
	case "html":
		return "html", nil
	case "markdown", "md":
		return "md", nil
	default:
		return "", fmt.Errorf("unsupported --format: %s (use pdf|html|markdown)", format)
	}
}

func defaultReportPath(ext string) string {
	return fmt.Sprintf("data-analysis-%s.%s", uuid.NewString(), ext)
}

// writeReport converts the narrated report to the requested format and writes
// it to path. PDF goes through an HTML intermediate and headless Chrome.
func writeReport(ctx context.Context, rep *ai.NarratedReport, ext, path string, cfg *cfgpkg.Global) error {
	md := rep.Markdown()
	switch ext {
	case "md":
		return utils.SafeWriteFile(path, []byte(md))
	case "html":
		page, err := render.HTML(rep.Outline.Title, md)
		if err != nil {
			return err
		}
		return utils.SafeWriteFile(path, []byte(page))
	default:
		page, err := render.HTML(rep.Outline.Title, md)
		if err != nil {
			return err
		}
		opt := render.PDFOptions{}
		if cfg != nil {
			opt.ExecPath = cfg.ChromePath
			if cfg.RenderTimeoutSec > 0 {
				opt.Timeout = time.Duration(cfg.RenderTimeoutSec) * time.Second
			}
		}
		return render.PDF(ctx, page, path, opt)
	}
}

// friendlyNarrationError rewraps narration failures with actionable hints for
// common provider error classes.
func friendlyNarrationError(err error, providerName, model string) error {
	var (
		narErr  *ai.NarrationError
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		brErr   *ai.BadRequestError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
		unreach *ai.UnreachableError
	)
	section := ""
	if errors.As(err, &narErr) {
		section = narErr.Section
	}
	switch {
	case errors.As(err, &unreach):
		if providerName == ai.ProviderOllama {
			return fmt.Errorf("Ollama not reachable at %s. Ensure Ollama is running (see https://ollama.com) and host is correct. You can set TABLESCRIBE_OLLAMA_HOST or config 'ollama_host'. Detail: %w", unreach.Host, err)
		}
		return fmt.Errorf("endpoint unreachable. Check your network and provider settings: %w", err)
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: set GEMINI_API_KEY or add gemini_api_key in config (~/.tablescribe/config.yaml): %w", err)
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Errorf("rate limited, try again in ~%ds: %w", int(rlErr.RetryAfter.Seconds()), err)
		}
		return fmt.Errorf("rate limited by provider, please retry: %w", err)
	case errors.As(err, &nfErr):
		if providerName == ai.ProviderOllama {
			return fmt.Errorf("local model not available (%s). Install it with 'ollama pull %s' or choose another model. %w", model, model, err)
		}
		return fmt.Errorf("model not found (%s). Verify the model name or inspect the catalog via 'tablescribe models show': %w", model, err)
	case errors.As(err, &brErr):
		return fmt.Errorf("request invalid. Try reducing --max-tokens or --sample-rows: %w", err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	case section != "":
		return fmt.Errorf("narration failed on section %q: %w", section, err)
	default:
		return fmt.Errorf("narration failed: %w", err)
	}
}
