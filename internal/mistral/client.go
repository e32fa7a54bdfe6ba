// Package mistral implements both upstream engine contracts (OCR and chat
// completion) against a Mistral-style HTTP API.
package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/triunai/receipt-ocr/constants"
	"github.com/triunai/receipt-ocr/internal/encode"
	"github.com/triunai/receipt-ocr/internal/ocr"
)

type Config struct {
	BaseURL     string
	APIKey      string
	OCRModel    string
	ChatModel   string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Client is the long-lived engine handle shared across requests. It holds no
// mutable state after construction.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 45 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{cfg: cfg, httpClient: httpClient, log: logger}
}

// Process sends the encoded document to the OCR endpoint and returns the
// paginated result. Implements ocr.Engine.
func (c *Client) Process(ctx context.Context, payload encode.Payload) (ocr.Response, error) {
	document := map[string]any{}
	switch payload.Kind {
	case constants.KindImage:
		document["type"] = "image_url"
		document["image_url"] = payload.DataURI
	case constants.KindDocument:
		document["type"] = "document_url"
		document["document_url"] = payload.DataURI
	default:
		return ocr.Response{}, fmt.Errorf("unknown payload kind %q", payload.Kind)
	}

	body := map[string]any{
		"model":                c.cfg.OCRModel,
		"document":             document,
		"include_image_base64": false,
	}

	raw, _, err := c.postJSON(ctx, c.endpoint("/v1/ocr"), body)
	if err != nil {
		return ocr.Response{}, err
	}

	var resp ocr.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return ocr.Response{}, fmt.Errorf("decode ocr response: %w", err)
	}
	return resp, nil
}

// Complete sends the prompt to the chat completions endpoint in JSON mode and
// returns the single completion content. Implements llm.CompletionEngine.
// Malformed content is not an error here; the structuring stage owns parsing.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":           c.cfg.ChatModel,
		"temperature":     c.cfg.Temperature,
		"max_tokens":      c.cfg.MaxTokens,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}

	raw, _, err := c.postJSON(ctx, c.endpoint("/v1/chat/completions"), body)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}
	return cc.Choices[0].Message.Content, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

// postJSON sends a JSON request and returns the raw response body. Non-2xx
// responses become errors embedding the status code and body, so a 429 stays
// visible to the structuring stage's rate-limit detection.
func (c *Client) postJSON(ctx context.Context, url string, body any) ([]byte, int, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		c.log.Error("mistral.http.encode_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		c.log.Error("mistral.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	c.log.Info("mistral.http.request",
		"req_id", reqID,
		"url", url,
		"content_length", len(bs),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("mistral.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("mistral.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Info("mistral.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("mistral status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.StatusCode, nil
}
