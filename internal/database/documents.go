package database

import (
	"context"
	"errors"
	"time"

	"casefile/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrFolderNotFound = errors.New("folder does not exist")
var ErrAttachmentNotFound = errors.New("attachment does not exist")

type CreateDocumentParams struct {
	FolderID        int64
	Title           string
	AttachmentID    *int64
	DocReceivedDate *time.Time
	DocDeadlineDate *time.Time
	Memo            *string
}

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (*models.Document, error) {
	query := `
		INSERT INTO documents (folder_id, title, sort, attachment_id, doc_received_date, doc_deadline_date, memo, created_at, modified_at)
		VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(sort), 0) + 1 FROM documents WHERE folder_id = $1),
			$3, $4, $5, $6, $7, $7
		)
		RETURNING id, folder_id, title, sort, doc_received_date, doc_deadline_date, memo, created_at, modified_at
	`
	now := time.Now()

	var doc models.Document
	err := q.db.QueryRow(ctx, query,
		arg.FolderID,
		arg.Title,
		arg.AttachmentID,
		arg.DocReceivedDate,
		arg.DocDeadlineDate,
		arg.Memo,
		now,
	).Scan(
		&doc.ID,
		&doc.FolderID,
		&doc.Title,
		&doc.Sort,
		&doc.DocReceivedDate,
		&doc.DocDeadlineDate,
		&doc.Memo,
		&doc.CreatedAt,
		&doc.ModifiedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if pgErr.ConstraintName == "documents_attachment_id_fkey" {
				return nil, ErrAttachmentNotFound
			}
			return nil, ErrFolderNotFound
		}
		return nil, err
	}

	if arg.AttachmentID != nil {
		att, err := q.GetAttachmentByID(ctx, *arg.AttachmentID)
		if err != nil {
			return nil, err
		}
		doc.Attachment = att
	}

	return &doc, nil
}

type UpdateDocumentParams struct {
	ID              int64
	Title           string
	AttachmentID    *int64
	DocReceivedDate *time.Time
	DocDeadlineDate *time.Time
	Memo            *string
}

func (q *Queries) UpdateDocument(ctx context.Context, arg UpdateDocumentParams) (*models.Document, error) {
	query := `
		UPDATE documents
		SET title = $1, attachment_id = $2, doc_received_date = $3, doc_deadline_date = $4, memo = $5, modified_at = $6
		WHERE id = $7
		RETURNING id, folder_id, title, sort, doc_received_date, doc_deadline_date, memo, created_at, modified_at
	`
	now := time.Now()

	var doc models.Document
	err := q.db.QueryRow(ctx, query,
		arg.Title,
		arg.AttachmentID,
		arg.DocReceivedDate,
		arg.DocDeadlineDate,
		arg.Memo,
		now,
		arg.ID,
	).Scan(
		&doc.ID,
		&doc.FolderID,
		&doc.Title,
		&doc.Sort,
		&doc.DocReceivedDate,
		&doc.DocDeadlineDate,
		&doc.Memo,
		&doc.CreatedAt,
		&doc.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}

	if arg.AttachmentID != nil {
		att, err := q.GetAttachmentByID(ctx, *arg.AttachmentID)
		if err != nil {
			return nil, err
		}
		doc.Attachment = att
	}

	return &doc, nil
}

func (q *Queries) GetDocumentByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `
		SELECT
			d.id, d.folder_id, d.title, d.sort, d.doc_received_date, d.doc_deadline_date, d.memo,
			d.created_at, d.modified_at,
			a.id, a.original_name, a.extension, a.size_bytes, a.disk_key, a.created_at
		FROM documents d
		LEFT JOIN attachments a ON d.attachment_id = a.id
		WHERE d.id = $1
	`
	var doc models.Document
	var attID *int64
	var attName, attExt, attKey *string
	var attSize *int64
	var attCreated *time.Time

	err := q.db.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.FolderID, &doc.Title, &doc.Sort,
		&doc.DocReceivedDate, &doc.DocDeadlineDate, &doc.Memo,
		&doc.CreatedAt, &doc.ModifiedAt,
		&attID, &attName, &attExt, &attSize, &attKey, &attCreated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if attID != nil {
		doc.Attachment = &models.Attachment{
			ID:           *attID,
			OriginalName: *attName,
			Extension:    *attExt,
			SizeBytes:    *attSize,
			DiskKey:      *attKey,
			CreatedAt:    *attCreated,
		}
	}

	return &doc, nil
}

// GetDocumentsByCase returns every document filed under the case, attachments
// joined in, ordered by sort within each folder.
func (q *Queries) GetDocumentsByCase(ctx context.Context, caseID int64) ([]models.Document, error) {
	query := `
		SELECT
			d.id, d.folder_id, d.title, d.sort, d.doc_received_date, d.doc_deadline_date, d.memo,
			d.created_at, d.modified_at,
			a.id, a.original_name, a.extension, a.size_bytes, a.disk_key, a.created_at
		FROM documents d
		JOIN folders f ON d.folder_id = f.id
		LEFT JOIN attachments a ON d.attachment_id = a.id
		WHERE f.case_id = $1
		ORDER BY d.folder_id, d.sort, d.id
	`
	rows, err := q.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []models.Document
	for rows.Next() {
		var doc models.Document
		var attID *int64
		var attName, attExt, attKey *string
		var attSize *int64
		var attCreated *time.Time

		err := rows.Scan(
			&doc.ID, &doc.FolderID, &doc.Title, &doc.Sort,
			&doc.DocReceivedDate, &doc.DocDeadlineDate, &doc.Memo,
			&doc.CreatedAt, &doc.ModifiedAt,
			&attID, &attName, &attExt, &attSize, &attKey, &attCreated,
		)
		if err != nil {
			return nil, err
		}

		if attID != nil {
			doc.Attachment = &models.Attachment{
				ID:           *attID,
				OriginalName: *attName,
				Extension:    *attExt,
				SizeBytes:    *attSize,
				DiskKey:      *attKey,
				CreatedAt:    *attCreated,
			}
		}

		documents = append(documents, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if documents == nil {
		return []models.Document{}, nil
	}

	return documents, nil
}

func (q *Queries) DeleteDocument(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM documents WHERE id = $1`
	res, err := q.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

// UpdateDocumentPosition writes one entry of a document sort payload.
func (q *Queries) UpdateDocumentPosition(ctx context.Context, id int64, sort int) (bool, error) {
	query := `
		UPDATE documents
		SET sort = $1, modified_at = $2
		WHERE id = $3
	`
	now := time.Now()
	res, err := q.db.Exec(ctx, query, sort, now, id)
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}
