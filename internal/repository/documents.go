package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/triunai/receipt-ocr/internal/document"
)

// StoredDocument is one persisted pipeline result.
type StoredDocument struct {
	ID         uuid.UUID
	SourceName string
	MediaType  string
	Document   document.ParsedDocument
	CreatedAt  time.Time
}

// DocumentRepository stores parsed documents in Postgres. The full document
// is kept as JSONB; vendor and total are lifted into columns for listing.
type DocumentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) *DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentRepository{pool: pool, logger: logger}
}

// Migrate creates the parsed_documents table if it does not exist.
func (r *DocumentRepository) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS parsed_documents (
	id          UUID PRIMARY KEY,
	source_name TEXT NOT NULL,
	media_type  TEXT NOT NULL,
	vendor      TEXT NOT NULL,
	total       DOUBLE PRECISION NOT NULL,
	doc         JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate parsed_documents: %w", err)
	}
	return nil
}

// Save inserts one parsed document and returns its generated ID.
func (r *DocumentRepository) Save(ctx context.Context, sourceName, mediaType string, doc document.ParsedDocument) (uuid.UUID, error) {
	id := uuid.New()
	body, err := json.Marshal(doc)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal document: %w", err)
	}

	const q = `
INSERT INTO parsed_documents (id, source_name, media_type, vendor, total, doc)
VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.pool.Exec(ctx, q, id, sourceName, mediaType, doc.Vendor, doc.Total, body); err != nil {
		return uuid.Nil, fmt.Errorf("insert parsed document: %w", err)
	}

	r.logger.Info("repository.documents.saved",
		"id", id.String(), "vendor", doc.Vendor, "total", doc.Total)
	return id, nil
}

// List returns stored documents newest first, optionally bounded by creation
// time (inclusive).
func (r *DocumentRepository) List(ctx context.Context, from, to *time.Time) ([]StoredDocument, error) {
	q := `
SELECT id, source_name, media_type, doc, created_at
FROM parsed_documents
WHERE ($1::timestamptz IS NULL OR created_at >= $1)
  AND ($2::timestamptz IS NULL OR created_at <= $2)
ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, fmt.Errorf("query parsed documents: %w", err)
	}
	defer rows.Close()

	var out []StoredDocument
	for rows.Next() {
		var rec StoredDocument
		var body []byte
		if err := rows.Scan(&rec.ID, &rec.SourceName, &rec.MediaType, &body, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan parsed document: %w", err)
		}
		if err := json.Unmarshal(body, &rec.Document); err != nil {
			return nil, fmt.Errorf("unmarshal stored document %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
