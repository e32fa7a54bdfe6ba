package common

import (
	"errors"
	"fmt"
)

// ErrorCode identifies one variant of the pipeline error taxonomy.
type ErrorCode string

const (
	CodeUnsupportedMediaType ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
	CodeEmptyExtraction      ErrorCode = "EMPTY_EXTRACTION"
	CodeOCRUpstream          ErrorCode = "OCR_UPSTREAM"
	CodeCompletionUpstream   ErrorCode = "COMPLETION_UPSTREAM"
)

// PipelineError is the closed error type every pipeline failure maps into.
// Code tells the caller which variant it is; Cause carries the upstream error.
type PipelineError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Error constructors, one per taxonomy variant.

func NewUnsupportedMediaType(mediaType string) *PipelineError {
	return &PipelineError{
		Code:    CodeUnsupportedMediaType,
		Message: fmt.Sprintf("unsupported media type %q", mediaType),
	}
}

func NewEmptyExtraction() *PipelineError {
	return &PipelineError{
		Code:    CodeEmptyExtraction,
		Message: "no text extracted from document after successful OCR call",
	}
}

func NewOCRUpstream(cause error) *PipelineError {
	return &PipelineError{
		Code:    CodeOCRUpstream,
		Message: "ocr engine call failed",
		Cause:   cause,
	}
}

func NewCompletionUpstream(cause error) *PipelineError {
	return &PipelineError{
		Code:    CodeCompletionUpstream,
		Message: "completion engine call failed",
		Cause:   cause,
	}
}

// CodeOf returns the taxonomy code carried by err, or "" when err is not a
// PipelineError.
func CodeOf(err error) ErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
