// Package pipeline sequences Encoder -> OCR extraction -> structuring into
// the single operation the service layer calls.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/triunai/receipt-ocr/internal/document"
	"github.com/triunai/receipt-ocr/internal/encode"
	"github.com/triunai/receipt-ocr/internal/llm"
	"github.com/triunai/receipt-ocr/internal/ocr"
)

// Pipeline owns no per-request state; every invocation gets its own payload,
// prompt, and retry counter, so concurrent calls need no locking.
type Pipeline struct {
	ocr        *ocr.Extractor
	structurer *llm.Structurer
	logger     *slog.Logger
}

func New(extractor *ocr.Extractor, structurer *llm.Structurer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{ocr: extractor, structurer: structurer, logger: logger}
}

// Process turns raw file bytes plus a declared media type into a validated
// ParsedDocument. Encoder and OCR failures short-circuit as typed errors;
// structuring only propagates a fatal engine failure, since parse/validation
// exhaustion is absorbed into the fallback sentinel inside the structurer.
func (p *Pipeline) Process(ctx context.Context, data []byte, mediaType string) (document.ParsedDocument, error) {
	payload, err := encode.Encode(data, mediaType)
	if err != nil {
		p.logger.Warn("pipeline.encode.rejected", "media_type", mediaType, "size", len(data))
		return document.ParsedDocument{}, err
	}
	p.logger.Info("pipeline.encode.ok", "kind", payload.Kind, "media_type", mediaType, "size", len(data))

	text, err := p.ocr.ExtractText(ctx, payload)
	if err != nil {
		return document.ParsedDocument{}, err
	}

	doc, err := p.structurer.Structure(ctx, text)
	if err != nil {
		return document.ParsedDocument{}, err
	}

	p.logger.Info("pipeline.process.ok",
		"vendor", doc.Vendor,
		"total", doc.Total,
		"item_count", len(doc.Items),
	)
	return doc, nil
}
