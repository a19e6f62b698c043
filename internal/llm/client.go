// Package llm implements the LLMExtractor contract of spec.md §4.2: a
// single HTTP-JSON round trip that turns case text into an ExtractedCase,
// styled after the teacher's pkg/processing/classifier/openai.go (same
// retry-on-parse-failure shape and prompt-building helpers), generalized
// from document classification to the Washington-State issue taxonomy.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/go-playground/validator/v10"

	"github.com/techjusticelab/opinion-ingest/internal/models"
)

// Client extracts a structured case from raw opinion text.
type Client interface {
	Extract(ctx context.Context, caseText string) (*models.ExtractedCase, error)
}

type httpClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
	validate   *validator.Validate
	log        *zap.Logger
}

func NewClient(baseURL, model string, timeout time.Duration, log *zap.Logger) Client {
	return &httpClient{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		log:        log,
	}
}

type extractRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Text           string `json:"text"`
	ResponseFormat string `json:"response_format"`
}

type extractResponse struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Extract sends the fixed prompt plus truncated case text and parses the
// JSON reply into an ExtractedCase, retrying once with a stricter prompt on
// parse or validation failure (spec.md §4.2 "Failure").
func (c *httpClient) Extract(ctx context.Context, caseText string) (*models.ExtractedCase, error) {
	truncated := Truncate(caseText, maxWindowChars)

	result, firstErr := c.attempt(ctx, BuildPrompt(truncated), truncated)
	if firstErr == nil {
		return result, nil
	}
	if c.log != nil {
		c.log.Warn("llm extraction failed, retrying with stricter prompt", zap.Error(firstErr))
	}

	result, err := c.attempt(ctx, BuildStrictPrompt(truncated), truncated)
	if err != nil {
		return nil, fmt.Errorf("llm extraction failed after retry: %w (first attempt: %v)", err, firstErr)
	}
	return result, nil
}

func (c *httpClient) attempt(ctx context.Context, prompt, text string) (*models.ExtractedCase, error) {
	raw, err := c.doRequest(ctx, prompt, text)
	if err != nil {
		return nil, err
	}
	return c.parse(raw)
}

func (c *httpClient) doRequest(ctx context.Context, prompt, text string) (string, error) {
	reqBody := extractRequest{
		Model:          c.model,
		Prompt:         prompt,
		Text:           text,
		ResponseFormat: "json_object",
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed extractResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// Some LLM servers return the schema directly rather than wrapped
		// in a {"content": ...} envelope; fall back to the raw body.
		return string(respBody), nil
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("llm error: %s", parsed.Error)
	}
	if parsed.Content != "" {
		return parsed.Content, nil
	}
	return string(respBody), nil
}

// parse extracts the JSON object from the LLM's reply (tolerating leading
// or trailing prose around it) and validates it against ExtractedCase's
// struct tags.
func (c *httpClient) parse(raw string) (*models.ExtractedCase, error) {
	jsonStr, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var result models.ExtractedCase
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("unmarshal extracted case: %w", err)
	}

	coerceEnums(&result)

	if err := c.validate.Struct(&result); err != nil {
		return nil, fmt.Errorf("extracted case failed validation: %w", err)
	}

	return &result, nil
}
