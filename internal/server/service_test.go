package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/triunai/receipt-ocr/internal/encode"
	"github.com/triunai/receipt-ocr/internal/llm"
	"github.com/triunai/receipt-ocr/internal/ocr"
	"github.com/triunai/receipt-ocr/internal/pipeline"
)

type stubOCREngine struct {
	resp ocr.Response
	err  error
}

func (s *stubOCREngine) Process(_ context.Context, _ encode.Payload) (ocr.Response, error) {
	return s.resp, s.err
}

type stubCompletion struct {
	response string
	err      error
}

func (s *stubCompletion) Complete(_ context.Context, _ string) (string, error) {
	return s.response, s.err
}

func newTestRouter(ocrEngine ocr.Engine, completion llm.CompletionEngine) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	structurer := llm.NewStructurer(completion, llm.Config{MaxRetries: 3, BackoffUnit: time.Second}, logger)
	structurer.SleepFn = func(time.Duration) {}
	p := pipeline.New(ocr.NewExtractor(ocrEngine, logger), structurer, logger)

	svc := NewService(p, nil, nil, zap.NewNop())
	r := gin.New()
	svc.Register(r)
	return r
}

func multipartUpload(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestParseDocumentSuccess(t *testing.T) {
	router := newTestRouter(
		&stubOCREngine{resp: ocr.Response{Pages: []ocr.Page{{Markdown: "Total: $12.00\nVendor: Acme"}}}},
		&stubCompletion{response: `{"vendor":"Acme","total":12.0,"items":[]}`},
	)

	body, contentType := multipartUpload(t, "receipt.png", "image/png", []byte("png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Document struct {
			Vendor string  `json:"vendor"`
			Total  float64 `json:"total"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme", resp.Document.Vendor)
	assert.Equal(t, 12.0, resp.Document.Total)
}

func TestParseDocumentInfersMediaTypeFromFilename(t *testing.T) {
	router := newTestRouter(
		&stubOCREngine{resp: ocr.Response{Pages: []ocr.Page{{Markdown: "text"}}}},
		&stubCompletion{response: `{"vendor":"Acme","total":1,"items":[]}`},
	)

	// no part content type; the handler must fall back to the .pdf extension
	body, contentType := multipartUpload(t, "invoice.pdf", "", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseDocumentUnsupportedMediaType(t *testing.T) {
	router := newTestRouter(&stubOCREngine{}, &stubCompletion{response: "{}"})

	body, contentType := multipartUpload(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNSUPPORTED_MEDIA_TYPE")
}

func TestParseDocumentEmptyExtraction(t *testing.T) {
	router := newTestRouter(
		&stubOCREngine{resp: ocr.Response{Pages: []ocr.Page{{}}}},
		&stubCompletion{response: "{}"},
	)

	body, contentType := multipartUpload(t, "blank.png", "image/png", []byte("png"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_EXTRACTION")
}

func TestParseDocumentMissingFile(t *testing.T) {
	router := newTestRouter(&stubOCREngine{}, &stubCompletion{response: "{}"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/parse", bytes.NewBufferString(""))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubOCREngine{}, &stubCompletion{response: "{}"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
