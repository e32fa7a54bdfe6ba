package ocr

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triunai/receipt-ocr/internal/common"
	"github.com/triunai/receipt-ocr/internal/encode"
)

type fakeEngine struct {
	resp  Response
	err   error
	calls int
}

func (f *fakeEngine) Process(_ context.Context, _ encode.Payload) (Response, error) {
	f.calls++
	return f.resp, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func imagePayload(t *testing.T) encode.Payload {
	t.Helper()
	payload, err := encode.Encode([]byte("fake"), "image/png")
	require.NoError(t, err)
	return payload
}

func TestExtractTextJoinsPagesInOrder(t *testing.T) {
	engine := &fakeEngine{resp: Response{Pages: []Page{
		{Index: 0, Markdown: "page one"},
		{Index: 1, Markdown: "page two"},
		{Index: 2, Markdown: "page three"},
	}}}

	text, err := NewExtractor(engine, testLogger()).ExtractText(context.Background(), imagePayload(t))
	require.NoError(t, err)
	assert.Equal(t, "page one\n\npage two\n\npage three", text)
}

func TestExtractTextPrefersMarkdownOverText(t *testing.T) {
	engine := &fakeEngine{resp: Response{Pages: []Page{
		{Markdown: "md content", Text: "plain content"},
		{Text: "plain only"},
	}}}

	text, err := NewExtractor(engine, testLogger()).ExtractText(context.Background(), imagePayload(t))
	require.NoError(t, err)
	assert.Equal(t, "md content\n\nplain only", text)
}

func TestExtractTextSkipsEmptyPages(t *testing.T) {
	engine := &fakeEngine{resp: Response{Pages: []Page{
		{Markdown: "first"},
		{},
		{Text: "last"},
	}}}

	text, err := NewExtractor(engine, testLogger()).ExtractText(context.Background(), imagePayload(t))
	require.NoError(t, err)
	assert.Equal(t, "first\n\nlast", text)
}

func TestExtractTextTrimsResult(t *testing.T) {
	engine := &fakeEngine{resp: Response{Pages: []Page{{Markdown: "  padded  \n"}}}}

	text, err := NewExtractor(engine, testLogger()).ExtractText(context.Background(), imagePayload(t))
	require.NoError(t, err)
	assert.Equal(t, "padded", text)
}

func TestExtractTextEmptyExtraction(t *testing.T) {
	engine := &fakeEngine{resp: Response{Pages: []Page{{Markdown: "   "}, {}}}}

	_, err := NewExtractor(engine, testLogger()).ExtractText(context.Background(), imagePayload(t))
	require.Error(t, err)
	assert.Equal(t, common.CodeEmptyExtraction, common.CodeOf(err))
}

func TestExtractTextEngineFailure(t *testing.T) {
	cause := errors.New("connection refused")
	engine := &fakeEngine{err: cause}

	_, err := NewExtractor(engine, testLogger()).ExtractText(context.Background(), imagePayload(t))
	require.Error(t, err)
	assert.Equal(t, common.CodeOCRUpstream, common.CodeOf(err))
	assert.ErrorIs(t, err, cause)
	// no retry at this stage
	assert.Equal(t, 1, engine.calls)
}
