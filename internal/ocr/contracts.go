package ocr

import (
	"context"

	"github.com/triunai/receipt-ocr/internal/encode"
)

// Page is one page of an OCR engine response. Engines may fill markdown,
// plain text, or both.
type Page struct {
	Index    int    `json:"index"`
	Markdown string `json:"markdown"`
	Text     string `json:"text"`
}

// Response is the paginated result of one OCR engine call, in page order.
type Response struct {
	Pages []Page `json:"pages"`
}

// Engine is the upstream OCR collaborator: payload in, pages out.
// Implemented by the mistral client in production and by fakes in tests.
type Engine interface {
	Process(ctx context.Context, payload encode.Payload) (Response, error)
}
