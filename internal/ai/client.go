package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type Message struct {
	Role    string
	Content string
}

type GenerateRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// ResponseJSON asks the backend for a strict JSON object response
	// when the provider supports constrained output.
	ResponseJSON bool
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Choice struct {
	Message Message
}

type GenerateResponse struct {
	Choices   []Choice
	Usage     Usage
	RequestID string
}

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
	RequestID  string         `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.Code != "" {
			if e.RequestID != "" {
				return fmt.Sprintf("api error: status=%d code=%s request_id=%s message=%s", e.StatusCode, e.Code, e.RequestID, e.Message)
			}
			return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
		}
		if e.RequestID != "" {
			return fmt.Sprintf("api error: status=%d request_id=%s message=%s", e.StatusCode, e.RequestID, e.Message)
		}
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error: status=%d request_id=%s", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// GeminiClient talks to the Google Gemini API through the official SDK.
type GeminiClient struct {
	apiKey           string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration

	mu     sync.Mutex
	client *genai.Client
	// extra options let tests point the SDK at a local endpoint
	opts []option.ClientOption
}

// NewGeminiClient returns a client with default retry strategy.
func NewGeminiClient(apiKey string) *GeminiClient {
	return NewGeminiClientWithRetry(apiKey, 3, 500*time.Millisecond, 4*time.Second)
}

// NewGeminiClientWithRetry allows customizing retry/backoff behavior.
func NewGeminiClientWithRetry(apiKey string, retryMax int, baseDelay, maxDelay time.Duration) *GeminiClient {
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &GeminiClient{
		apiKey:           apiKey,
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
	}
}

// service lazily builds the underlying SDK client. The SDK wants a context
// at construction time and the runtime registry has none, so the first
// Generate call pays for the dial.
func (c *GeminiClient) service(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.client = cl
	return cl, nil
}

// Close releases the underlying SDK client if one was built.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *GeminiClient) ValidateModel(model string) error {
	if model == "" {
		return errors.New("model cannot be empty")
	}
	return nil
}

func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if c.apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is missing")
	}
	if err := c.ValidateModel(req.Model); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}
	client, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(req.Model)
	if req.Temperature > 0 {
		model.SetTemperature(float32(req.Temperature))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.ResponseJSON {
		model.ResponseMIMEType = "application/json"
	}

	// System messages become the model's system instruction; the rest are
	// joined into a single user turn, which is how the SDK expects one-shot
	// prompts.
	var sys, prompt strings.Builder
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			if sys.Len() > 0 {
				sys.WriteString("\n\n")
			}
			sys.WriteString(msg.Content)
			continue
		}
		if prompt.Len() > 0 {
			prompt.WriteString("\n\n")
		}
		prompt.WriteString(msg.Content)
	}
	if sys.Len() > 0 {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(sys.String())}}
	}

	// retry settings from client config
	maxAttempts := c.retryMaxAttempts
	backoff := c.retryBaseDelay
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Respect context cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := model.GenerateContent(ctx, genai.Text(prompt.String()))
		if err != nil {
			lastErr = classifyGeminiError(err)
			if attempt < maxAttempts && isRetryableAIError(lastErr) {
				// Respect Retry-After when the provider sent one.
				sleep := withJitter(backoff)
				var rle *RateLimitError
				if errors.As(lastErr, &rle) && rle.RetryAfter > 0 {
					sleep = rle.RetryAfter
				}
				if c.retryMaxDelay > 0 && sleep > c.retryMaxDelay {
					sleep = c.retryMaxDelay
				}
				time.Sleep(sleep)
				backoff *= 2
				continue
			}
			return nil, lastErr
		}
		text := responseText(resp)
		if text == "" {
			// Blocked or empty candidates; not worth a transport retry.
			return nil, fmt.Errorf("model %s returned no content", req.Model)
		}
		out := &GenerateResponse{
			Choices: []Choice{{Message: Message{Role: "assistant", Content: text}}},
		}
		if um := resp.UsageMetadata; um != nil {
			out.Usage = Usage{
				PromptTokens:     int(um.PromptTokenCount),
				CompletionTokens: int(um.CandidatesTokenCount),
				TotalTokens:      int(um.TotalTokenCount),
			}
		}
		return out, nil
	}
	return nil, lastErr
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// classifyGeminiError maps SDK errors to the typed error set.
func classifyGeminiError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		apiErr := &APIError{StatusCode: gerr.Code, Message: gerr.Message}
		var ra time.Duration
		if gerr.Header != nil {
			if v := gerr.Header.Get("Retry-After"); v != "" {
				if secs, perr := parseRetryAfterSeconds(v); perr == nil && secs > 0 {
					ra = time.Duration(secs) * time.Second
				}
			}
		}
		return classifyAPIError(apiErr, ra)
	}
	if isRetryableNetErr(err) {
		return &UnreachableError{Host: "generativelanguage.googleapis.com", Err: err}
	}
	return err
}

// isRetryableAIError reports whether a classified error deserves another attempt.
func isRetryableAIError(err error) bool {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var srv *ServerError
	if errors.As(err, &srv) {
		return true
	}
	var un *UnreachableError
	return errors.As(err, &un)
}

func isRetryableNetErr(err error) bool {
	// net errors like timeouts
	var nerr net.Error
	if errors.As(err, &nerr) {
		if nerr.Timeout() {
			return true
		}
	}
	// EOF or connection reset
	if errors.Is(err, io.EOF) {
		return true
	}
	return false
}

// parseRetryAfterSeconds tries to interpret Retry-After header value as seconds or HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	// Try integer seconds first
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	// Try HTTP-date
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// classifyAPIError maps generic APIError to typed errors for better UX.
func classifyAPIError(apiErr *APIError, retryAfter time.Duration) error {
	sc := apiErr.StatusCode
	msg := apiErr.Message
	code := apiErr.Code
	// Auth
	if sc == http.StatusUnauthorized || sc == http.StatusForbidden {
		return &AuthError{APIError: apiErr}
	}
	// Rate limiting
	if sc == http.StatusTooManyRequests {
		return &RateLimitError{APIError: apiErr, RetryAfter: retryAfter}
	}
	// Not found -> model not found if message/code suggests it
	if sc == http.StatusNotFound {
		if code == "model_not_found" || containsAllFold(msg, "model", "not", "found") || containsFold(msg, "is not found") {
			return &ModelNotFoundError{APIError: apiErr}
		}
		return apiErr
	}
	// Bad request
	if sc == http.StatusBadRequest {
		return &BadRequestError{APIError: apiErr}
	}
	// Quota/billing signals (heuristic)
	if code == "quota_exceeded" || containsAnyFold(msg, "quota", "billing", "limit exceeded") {
		return &QuotaExceededError{APIError: apiErr}
	}
	// Server errors
	if sc >= 500 && sc <= 599 {
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}

func containsAllFold(s string, subs ...string) bool {
	for _, sub := range subs {
		if !containsFold(s, sub) {
			return false
		}
	}
	return true
}

func containsAnyFold(s string, subs ...string) bool {
	for _, sub := range subs {
		if containsFold(s, sub) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	if s == "" || sub == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// withJitter returns a backoff duration with +/- 20% jitter applied.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	// jitter factor in [0.8, 1.2)
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
