package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"coursehub/internal/models"
	"coursehub/internal/workflow"
)

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, doc models.ApplicationDocument) error {
	const query = `
		INSERT INTO application_documents (
			id, application_id, object_key, filename, content_type, size_bytes, uploaded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		doc.ID,
		doc.ApplicationID,
		doc.ObjectKey,
		doc.Filename,
		doc.ContentType,
		doc.SizeBytes,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (models.ApplicationDocument, error) {
	const query = `
		SELECT id, application_id, object_key, filename, content_type, size_bytes, uploaded_at
		FROM application_documents WHERE id = $1
	`

	var doc models.ApplicationDocument
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.ApplicationID,
		&doc.ObjectKey,
		&doc.Filename,
		&doc.ContentType,
		&doc.SizeBytes,
		&doc.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ApplicationDocument{}, &workflow.NotFoundError{Entity: "document", ID: id}
		}
		return models.ApplicationDocument{}, err
	}
	return doc, nil
}

func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]models.ApplicationDocument, error) {
	const query = `
		SELECT id, application_id, object_key, filename, content_type, size_bytes, uploaded_at
		FROM application_documents
		WHERE application_id = $1
		ORDER BY uploaded_at
	`

	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.ApplicationDocument
	for rows.Next() {
		var d models.ApplicationDocument
		if err := rows.Scan(&d.ID, &d.ApplicationID, &d.ObjectKey, &d.Filename, &d.ContentType, &d.SizeBytes, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
