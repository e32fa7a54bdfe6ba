package constants

import "strings"

// DocumentKind tags a payload with the upstream document family.
type DocumentKind string

const (
	KindImage    DocumentKind = "image"
	KindDocument DocumentKind = "document"
)

// AllowedExtensions holds the file extensions accepted for upload and by the CLI.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"webp": {},
	"avif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeForExt maps a file extension to its declared media type.
// Returns "" for extensions we do not accept.
func MediaTypeForExt(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	default:
		return ""
	}
}
