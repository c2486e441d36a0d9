package database

import (
	"context"
	"errors"

	"casefile/internal/models"

	"github.com/jackc/pgx/v5"
)

type CreateAttachmentParams struct {
	DiskKey      string
	OriginalName string
	Extension    string
	SizeBytes    int64
}

func (q *Queries) CreateAttachment(ctx context.Context, arg CreateAttachmentParams) (*models.Attachment, error) {
	query := `
		INSERT INTO attachments (disk_key, original_name, extension, size_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, original_name, extension, size_bytes, disk_key, created_at
	`
	var att models.Attachment
	err := q.db.QueryRow(ctx, query,
		arg.DiskKey,
		arg.OriginalName,
		arg.Extension,
		arg.SizeBytes,
	).Scan(
		&att.ID,
		&att.OriginalName,
		&att.Extension,
		&att.SizeBytes,
		&att.DiskKey,
		&att.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &att, nil
}

func (q *Queries) GetAttachmentByID(ctx context.Context, id int64) (*models.Attachment, error) {
	query := `
		SELECT id, original_name, extension, size_bytes, disk_key, created_at
		FROM attachments
		WHERE id = $1
	`
	var att models.Attachment
	err := q.db.QueryRow(ctx, query, id).Scan(
		&att.ID,
		&att.OriginalName,
		&att.Extension,
		&att.SizeBytes,
		&att.DiskKey,
		&att.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &att, nil
}
