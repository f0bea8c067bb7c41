// Package gemini is a REST client for the Gemini generateContent API.
// It reports provider rate limiting as a distinct error type carrying a
// best-effort retry-delay hint, which the explanation orchestrator uses
// to drive its retry and fallback policy.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RateLimitError signals that the provider rejected a request for quota
// reasons. RetryAfter is zero when the provider gave no usable hint.
type RateLimitError struct {
	Model      string
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("model %s rate limited: %s", e.Model, e.Message)
}

// RetryHint satisfies domain.RateLimited so callers can drive their
// backoff without depending on this package.
func (e *RateLimitError) RetryHint() time.Duration {
	return e.RetryAfter
}

// IsRateLimit reports whether err is (or wraps) a rate-limit error.
func IsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewClient creates a Gemini client. It returns an error when the API key
// env var is unset; callers treat that as the expected "unconfigured"
// mode rather than a failure.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		client:  &http.Client{Timeout: t},
	}, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate produces text for the prompt using the named model.
func (c *Client) Generate(ctx context.Context, prompt, model string) (string, error) {
	body := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	data, _ := json.Marshal(body)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling model %s: %w", model, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out generateResponse
	_ = json.Unmarshal(payload, &out)

	if resp.StatusCode == http.StatusTooManyRequests {
		msg := resp.Status
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", &RateLimitError{
			Model:      model,
			Message:    msg,
			RetryAfter: parseRetryDelay(msg, resp.Header.Get("Retry-After")),
		}
	}
	if resp.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("model %s failed: %s", model, out.Error.Message)
		}
		return "", fmt.Errorf("model %s failed: %s", model, resp.Status)
	}

	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model %s returned no candidates", model)
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// delayPattern matches hints like "retry in 7 seconds" or "retry in 34.5s"
// embedded in free-text provider error messages.
var delayPattern = regexp.MustCompile(`(?i)retry in ([0-9]+(?:\.[0-9]+)?)\s*s`)

// parseRetryDelay extracts a retry hint from the error message or the
// Retry-After header. The hint is best effort; zero means "no hint".
func parseRetryDelay(message, retryAfterHeader string) time.Duration {
	if retryAfterHeader != "" {
		if secs, err := strconv.Atoi(retryAfterHeader); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	m := delayPattern.FindStringSubmatch(message)
	if len(m) == 2 {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 0
}
