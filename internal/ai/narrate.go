package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KaramelBytes/tablescribe/internal/analysis"
	"github.com/KaramelBytes/tablescribe/internal/utils"
)

// NarrationOptions control the per-section narration calls.
type NarrationOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// Attempts bounds how many times a failed or malformed section response
	// is retried before the whole narration aborts.
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// PromptLimit, when positive, truncates each section prompt to roughly
	// this many tokens before sending.
	PromptLimit int
	// OnSection, when set, is called before each section is sent.
	OnSection func(i int, title string)
}

// DefaultNarrationOptions returns the defaults used by the report command.
func DefaultNarrationOptions() NarrationOptions {
	return NarrationOptions{
		MaxTokens:   1024,
		Temperature: 0.4,
		Attempts:    3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    4 * time.Second,
	}
}

// SectionNarration is the JSON shape the model must return for one section.
type SectionNarration struct {
	Prose string `json:"prose"`
	Code  string `json:"code,omitempty"`
}

// NarratedReport pairs an outline with model prose for each of its sections.
// Narrations is parallel to Outline.Sections.
type NarratedReport struct {
	Outline    *analysis.ReportOutline
	Narrations []SectionNarration
	Model      string
	Usage      Usage
}

// NarrateOutline asks the runtime for prose for every outline section, in
// order. Sections are narrated one call at a time so a wide dataset never has
// to fit a single context window. A section that still fails after the
// configured attempts aborts the narration with a NarrationError.
func NarrateOutline(ctx context.Context, rt Runtime, outline *analysis.ReportOutline, opt NarrationOptions) (*NarratedReport, error) {
	if rt == nil {
		return nil, errors.New("runtime cannot be nil")
	}
	if outline == nil || len(outline.Sections) == 0 {
		return nil, errors.New("outline has no sections")
	}
	if opt.Model == "" {
		return nil, errors.New("model cannot be empty")
	}
	if opt.Attempts <= 0 {
		opt.Attempts = 3
	}
	if opt.BaseDelay <= 0 {
		opt.BaseDelay = 500 * time.Millisecond
	}

	out := &NarratedReport{
		Outline:    outline,
		Narrations: make([]SectionNarration, len(outline.Sections)),
		Model:      opt.Model,
	}
	for i := range outline.Sections {
		title := outline.Sections[i].Title()
		if opt.OnSection != nil {
			opt.OnSection(i, title)
		}
		nar, usage, err := narrateSection(ctx, rt, outline, i, opt)
		if err != nil {
			return nil, &NarrationError{Section: title, Attempts: opt.Attempts, Err: err}
		}
		out.Narrations[i] = nar
		out.Usage.PromptTokens += usage.PromptTokens
		out.Usage.CompletionTokens += usage.CompletionTokens
		out.Usage.TotalTokens += usage.TotalTokens
	}
	return out, nil
}

func narrateSection(ctx context.Context, rt Runtime, outline *analysis.ReportOutline, i int, opt NarrationOptions) (SectionNarration, Usage, error) {
	user := SectionPrompt(outline, i)
	if opt.PromptLimit > 0 {
		user = utils.TruncateToTokenLimit(user, opt.PromptLimit)
	}
	req := GenerateRequest{
		Model: opt.Model,
		Messages: []Message{
			{Role: "system", Content: narrationSystem},
			{Role: "user", Content: user},
		},
		MaxTokens:    opt.MaxTokens,
		Temperature:  opt.Temperature,
		ResponseJSON: true,
	}

	backoff := opt.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= opt.Attempts; attempt++ {
		if ctx.Err() != nil {
			return SectionNarration{}, Usage{}, ctx.Err()
		}
		resp, err := rt.Generate(ctx, req)
		if err != nil {
			// Context errors are final. Transport retries live inside the
			// runtime; this loop retries the narration contract itself.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return SectionNarration{}, Usage{}, err
			}
			lastErr = err
		} else {
			nar, perr := parseSectionNarration(resp)
			if perr == nil {
				return nar, resp.Usage, nil
			}
			lastErr = perr
		}
		if attempt < opt.Attempts {
			sleep := withJitter(backoff)
			var rle *RateLimitError
			if errors.As(lastErr, &rle) && rle.RetryAfter > 0 {
				sleep = rle.RetryAfter
			}
			if opt.MaxDelay > 0 && sleep > opt.MaxDelay {
				sleep = opt.MaxDelay
			}
			time.Sleep(sleep)
			backoff *= 2
		}
	}
	return SectionNarration{}, Usage{}, lastErr
}

func parseSectionNarration(resp *GenerateResponse) (SectionNarration, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return SectionNarration{}, errors.New("no content returned from model")
	}
	text := stripCodeFence(resp.Choices[0].Message.Content)
	var nar SectionNarration
	if err := json.Unmarshal([]byte(text), &nar); err != nil {
		return SectionNarration{}, fmt.Errorf("malformed narration JSON: %w", err)
	}
	nar.Prose = strings.TrimSpace(nar.Prose)
	nar.Code = strings.TrimSpace(nar.Code)
	if nar.Prose == "" {
		return SectionNarration{}, errors.New("narration JSON has empty prose")
	}
	return nar, nil
}

// stripCodeFence removes a surrounding markdown code fence that some models
// wrap around JSON output even in JSON mode.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Markdown renders the narrated report as a standalone document: the model's
// prose per section, optional code snippets, and the sample-row appendix.
func (r *NarratedReport) Markdown() string {
	o := r.Outline
	var b strings.Builder
	b.WriteString("# " + o.Title + "\n\n")
	if o.Source != "" {
		b.WriteString(fmt.Sprintf("*%s*\n\n", o.Source))
	}
	b.WriteString(o.GeneratedAt.Format("2006-01-02 - 15:04:05") + "\n")
	for i := range o.Sections {
		b.WriteString("\n## " + o.Sections[i].Title() + "\n\n")
		nar := r.Narrations[i]
		if nar.Prose != "" {
			b.WriteString(nar.Prose + "\n")
		}
		if nar.Code != "" {
			b.WriteString("\n```python\n" + nar.Code + "\n```\n")
		}
	}
	if tbl := o.SampleRowsMarkdown(); tbl != "" {
		b.WriteString("\n## Sample Rows\n\n")
		b.WriteString(tbl)
	}
	return b.String()
}
