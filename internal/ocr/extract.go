package ocr

import (
	"context"
	"log/slog"
	"strings"

	"github.com/triunai/receipt-ocr/internal/common"
	"github.com/triunai/receipt-ocr/internal/encode"
)

// Extractor is the OCR extraction stage: payload -> concatenated page text.
type Extractor struct {
	engine Engine
	logger *slog.Logger
}

func NewExtractor(engine Engine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, logger: logger}
}

// ExtractText runs one OCR engine call and concatenates all non-empty page
// texts in page order, joined by a blank line, preferring markdown over plain
// text per page. There is no retry at this stage; engine failures surface
// immediately as OCR_UPSTREAM and an empty concatenation as EMPTY_EXTRACTION.
func (e *Extractor) ExtractText(ctx context.Context, payload encode.Payload) (string, error) {
	resp, err := e.engine.Process(ctx, payload)
	if err != nil {
		e.logger.Error("ocr.extract.engine_error", "kind", payload.Kind, "error", err)
		return "", common.NewOCRUpstream(err)
	}

	parts := make([]string, 0, len(resp.Pages))
	for _, page := range resp.Pages {
		switch {
		case page.Markdown != "":
			parts = append(parts, page.Markdown)
		case page.Text != "":
			parts = append(parts, page.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n\n"))

	if text == "" {
		e.logger.Warn("ocr.extract.empty", "kind", payload.Kind, "pages", len(resp.Pages))
		return "", common.NewEmptyExtraction()
	}

	e.logger.Info("ocr.extract.ok",
		"kind", payload.Kind,
		"pages", len(resp.Pages),
		"text_len", len(text),
	)
	return text, nil
}
