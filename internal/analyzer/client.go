package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"scribed/internal/types"
)

// Generator is the external text-generation capability. It may fail
// transiently or return any text whatsoever; the normalizer compensates.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClient implements Generator against the Gemini REST API.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client
	logger          *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.0-flash",
		Timeout:         90 * time.Second,
		MaxOutputTokens: 8192,
	}
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(config GeminiConfig, logger *zap.Logger) *GeminiClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	maxTokens := config.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	return &GeminiClient{
		apiKey:          config.APIKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Model returns the configured model.
func (c *GeminiClient) Model() string {
	return c.model
}

// Generate sends the prompt and returns the raw completion text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	// Auto-apply timeout if context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()

	if c.apiKey == "" {
		return "", fmt.Errorf("%w: API key not configured", types.ErrServiceUnavailable)
	}

	// Rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:      0.1,
			MaxOutputTokens:  c.maxOutputTokens,
			ResponseMimeType: "application/json",
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	// Retry loop for transient failures and rate limits.
	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", types.ErrServiceUnavailable, ctx.Err())
			}
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("%w: status %d: %s", types.ErrServiceUnavailable,
				resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var geminiResp GeminiResponse
		if err := json.Unmarshal(body, &geminiResp); err != nil {
			return "", fmt.Errorf("%w: unparsable response body: %v", types.ErrServiceUnavailable, err)
		}

		if geminiResp.Error != nil {
			return "", fmt.Errorf("%w: API error: %s", types.ErrServiceUnavailable, geminiResp.Error.Message)
		}

		if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("%w: no completion returned", types.ErrServiceUnavailable)
		}

		var result strings.Builder
		for _, part := range geminiResp.Candidates[0].Content.Parts {
			result.WriteString(part.Text)
		}

		response := strings.TrimSpace(result.String())
		c.logger.Debug("generation completed",
			zap.Duration("elapsed", time.Since(startTime)),
			zap.Int("response_len", len(response)),
			zap.Int("total_tokens", geminiResp.UsageMetadata.TotalTokenCount))
		return response, nil
	}

	c.logger.Warn("generation gave up",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Error(lastErr))
	return "", fmt.Errorf("%w: max retries exceeded: %v", types.ErrServiceUnavailable, lastErr)
}
