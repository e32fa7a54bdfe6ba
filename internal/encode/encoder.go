package encode

import (
	"encoding/base64"
	"strings"

	"github.com/triunai/receipt-ocr/constants"
	"github.com/triunai/receipt-ocr/internal/common"
)

// Payload is the inline representation the OCR engine accepts: raw file bytes
// wrapped as a self-describing base64 data URI, tagged with a document kind.
// It lives for exactly one request and is discarded after the OCR call.
type Payload struct {
	Kind      constants.DocumentKind
	MediaType string
	DataURI   string
}

// Encode wraps raw file bytes and their declared media type into a Payload.
// Pure transform, no network access.
//
// Media types beginning with "image/" become image payloads;
// "application/pdf" becomes a document payload; anything else is rejected
// with UNSUPPORTED_MEDIA_TYPE.
func Encode(data []byte, mediaType string) (Payload, error) {
	var kind constants.DocumentKind
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		kind = constants.KindImage
	case mediaType == "application/pdf":
		kind = constants.KindDocument
	default:
		return Payload{}, common.NewUnsupportedMediaType(mediaType)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return Payload{
		Kind:      kind,
		MediaType: mediaType,
		DataURI:   "data:" + mediaType + ";base64," + encoded,
	}, nil
}
