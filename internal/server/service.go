// Package server is the thin HTTP surface over the parsing pipeline. It owns
// upload handling and error translation only; all extraction logic lives in
// internal/pipeline.
package server

import (
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/triunai/receipt-ocr/constants"
	"github.com/triunai/receipt-ocr/internal/common"
	"github.com/triunai/receipt-ocr/internal/export"
	"github.com/triunai/receipt-ocr/internal/pipeline"
	"github.com/triunai/receipt-ocr/internal/repository"
)

// MaxUploadBytes caps a single document upload.
const MaxUploadBytes = 20 << 20

// Service wires the pipeline and optional persistence into gin handlers.
// Repo and exporter may be nil, in which case the service is parse-only.
type Service struct {
	pipeline *pipeline.Pipeline
	repo     *repository.DocumentRepository
	exporter *export.Service
	logger   *zap.Logger
}

func NewService(p *pipeline.Pipeline, repo *repository.DocumentRepository, exporter *export.Service, logger *zap.Logger) *Service {
	return &Service{pipeline: p, repo: repo, exporter: exporter, logger: logger}
}

// Register mounts all routes on the router.
func (s *Service) Register(r *gin.Engine) {
	r.GET("/healthz", s.health)

	api := r.Group("/api/v1")
	api.POST("/documents/parse", s.parseDocument)
	if s.repo != nil {
		api.GET("/documents", s.listDocuments)
	}
	if s.exporter != nil {
		api.GET("/documents/export", s.exportDocuments)
	}
}

func (s *Service) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Service) parseDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	if fileHeader.Size > MaxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		s.logger.Warn("upload open failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.Warn("upload read failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
		return
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if mediaType == "" || mediaType == "application/octet-stream" {
		if mt := constants.MediaTypeForExt(filepath.Ext(fileHeader.Filename)); mt != "" {
			mediaType = mt
		}
	}

	doc, err := s.pipeline.Process(c.Request.Context(), data, mediaType)
	if err != nil {
		code := common.CodeOf(err)
		s.logger.Warn("parse failed",
			zap.String("file", fileHeader.Filename),
			zap.String("code", string(code)),
			zap.Error(err),
		)
		c.JSON(statusForCode(code), gin.H{"error": err.Error(), "code": string(code)})
		return
	}

	resp := gin.H{"document": doc}
	if s.repo != nil {
		id, err := s.repo.Save(c.Request.Context(), fileHeader.Filename, mediaType, doc)
		if err != nil {
			// The parse result is still the product; persistence failure
			// must not turn a successful extraction into a client error.
			s.logger.Warn("persist failed", zap.String("file", fileHeader.Filename), zap.Error(err))
		} else {
			resp["id"] = id.String()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Service) listDocuments(c *gin.Context) {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recs, err := s.repo.List(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Warn("list documents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list documents failed"})
		return
	}

	out := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		out = append(out, gin.H{
			"id":          rec.ID.String(),
			"source_name": rec.SourceName,
			"media_type":  rec.MediaType,
			"document":    rec.Document,
			"created_at":  rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"documents": out})
}

func (s *Service) exportDocuments(c *gin.Context) {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	buf, err := s.exporter.ExportXLSX(c.Request.Context(), from, to)
	if err != nil {
		s.logger.Warn("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="documents.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf)
}

// statusForCode maps the pipeline error taxonomy onto HTTP statuses.
func statusForCode(code common.ErrorCode) int {
	switch code {
	case common.CodeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case common.CodeEmptyExtraction:
		return http.StatusUnprocessableEntity
	case common.CodeOCRUpstream, common.CodeCompletionUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
