package database

import (
	"context"
	"errors"

	"casefile/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateCaseSlug = errors.New("a case with this slug already exists")

func (q *Queries) GetCaseBySlug(ctx context.Context, slug string) (*models.Case, error) {
	query := `
		SELECT id, slug, title, created_at
		FROM cases
		WHERE slug = $1
	`
	var c models.Case
	err := q.db.QueryRow(ctx, query, slug).Scan(&c.ID, &c.Slug, &c.Title, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (q *Queries) CreateCase(ctx context.Context, slug string, title string) (*models.Case, error) {
	query := `
		INSERT INTO cases (slug, title)
		VALUES ($1, $2)
		RETURNING id, slug, title, created_at
	`
	var c models.Case
	err := q.db.QueryRow(ctx, query, slug, title).Scan(&c.ID, &c.Slug, &c.Title, &c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateCaseSlug
		}
		return nil, err
	}
	return &c, nil
}
