package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/triunai/receipt-ocr/internal/common"
	"github.com/triunai/receipt-ocr/internal/document"
)

// Config holds the structuring stage retry behavior.
type Config struct {
	MaxRetries  int           // attempt ceiling, default 3
	BackoffUnit time.Duration // one backoff "time unit", default 1s
}

// Structurer turns extracted OCR text into a validated ParsedDocument by
// prompting the completion engine and retrying on recoverable failure.
type Structurer struct {
	engine CompletionEngine
	cfg    Config
	logger *slog.Logger

	// SleepFn blocks only the invoking goroutine between attempts.
	// Overridable in tests so backoff never wall-clocks.
	SleepFn func(time.Duration)
}

func NewStructurer(engine CompletionEngine, cfg Config, logger *slog.Logger) *Structurer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = time.Second
	}
	return &Structurer{engine: engine, cfg: cfg, logger: logger, SleepFn: time.Sleep}
}

// Structure runs the per-attempt procedure up to the retry ceiling:
// complete -> parse (direct, then sanitized) -> schema-validate -> decode.
// Parse and validation failures back off linearly ((attempt+1) units);
// detected rate limits back off exponentially (2^attempt units) and still
// consume an attempt. Any other engine error fails immediately with
// COMPLETION_UPSTREAM. Exhaustion degrades to the fallback sentinel so the
// caller always receives a well-formed document.
func (s *Structurer) Structure(ctx context.Context, text string) (document.ParsedDocument, error) {
	prompt := BuildExtractionPrompt(text)

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		content, err := s.engine.Complete(ctx, prompt)
		if err != nil {
			if isRateLimited(err) {
				wait := time.Duration(1<<attempt) * s.cfg.BackoffUnit
				s.logger.Warn("llm.structure.rate_limited",
					"attempt", attempt+1, "wait", wait.String(), "error", err)
				lastErr = err
				s.SleepFn(wait)
				continue
			}
			s.logger.Error("llm.structure.engine_error", "attempt", attempt+1, "error", err)
			return document.ParsedDocument{}, common.NewCompletionUpstream(err)
		}

		raw := []byte(strings.TrimSpace(content))
		if !json.Valid(raw) {
			cleaned := ExtractJSONObject(string(raw))
			if cleaned == "" {
				lastErr = fmt.Errorf("no JSON object found in completion")
				s.logger.Warn("llm.structure.no_json",
					"attempt", attempt+1, "content_excerpt", excerpt(content, 300))
				s.SleepFn(time.Duration(attempt+1) * s.cfg.BackoffUnit)
				continue
			}
			raw = []byte(cleaned)
		}

		doc, err := document.Decode(raw)
		if err != nil {
			lastErr = err
			s.logger.Warn("llm.structure.invalid",
				"attempt", attempt+1, "error", err, "content_excerpt", excerpt(string(raw), 300))
			s.SleepFn(time.Duration(attempt+1) * s.cfg.BackoffUnit)
			continue
		}

		s.logger.Info("llm.structure.ok",
			"attempt", attempt+1,
			"vendor", doc.Vendor,
			"total", doc.Total,
			"item_count", len(doc.Items),
		)
		return doc, nil
	}

	s.logger.Warn("llm.structure.exhausted",
		"attempts", s.cfg.MaxRetries, "last_error", lastErr)
	return document.Fallback(), nil
}

// isRateLimited inspects an engine error's message for a 429 status or
// rate-limit wording. The upstream client embeds the HTTP status in its
// error text, so both transports and SDK-style errors are covered.
func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate limit")
}

func excerpt(s string, n int) string {
	return truncateRunes(s, n)
}
