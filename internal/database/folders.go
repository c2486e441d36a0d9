package database

import (
	"context"
	"errors"
	"time"

	"casefile/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrParentFolderNotFound = errors.New("parent folder does not exist")

type CreateFolderParams struct {
	CaseID   int64
	ParentID *int64
	Name     string
}

// CreateFolder inserts a folder at the end of its sibling group. Sort values
// are dense 1..n per sibling group, so the new folder gets max(sort)+1.
func (q *Queries) CreateFolder(ctx context.Context, arg CreateFolderParams) (*models.Folder, error) {
	query := `
		INSERT INTO folders (case_id, parent_id, name, sort, created_at, modified_at)
		VALUES (
			$1, $2, $3,
			(SELECT COALESCE(MAX(sort), 0) + 1 FROM folders WHERE case_id = $1 AND parent_id IS NOT DISTINCT FROM $2),
			$4, $4
		)
		RETURNING id, case_id, parent_id, name, sort, created_at, modified_at
	`
	now := time.Now()

	var folder models.Folder
	err := q.db.QueryRow(ctx, query, arg.CaseID, arg.ParentID, arg.Name, now).Scan(
		&folder.ID,
		&folder.CaseID,
		&folder.ParentID,
		&folder.Name,
		&folder.Sort,
		&folder.CreatedAt,
		&folder.ModifiedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrParentFolderNotFound
		}
		return nil, err
	}

	return &folder, nil
}

func (q *Queries) GetFolderByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := `
		SELECT id, case_id, parent_id, name, sort, created_at, modified_at
		FROM folders
		WHERE id = $1
	`
	var folder models.Folder
	err := q.db.QueryRow(ctx, query, id).Scan(
		&folder.ID,
		&folder.CaseID,
		&folder.ParentID,
		&folder.Name,
		&folder.Sort,
		&folder.CreatedAt,
		&folder.ModifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &folder, nil
}

func (q *Queries) GetFoldersByCase(ctx context.Context, caseID int64) ([]models.Folder, error) {
	query := `
		SELECT id, case_id, parent_id, name, sort, created_at, modified_at
		FROM folders
		WHERE case_id = $1
		ORDER BY sort, id
	`
	rows, err := q.db.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		err := rows.Scan(
			&folder.ID,
			&folder.CaseID,
			&folder.ParentID,
			&folder.Name,
			&folder.Sort,
			&folder.CreatedAt,
			&folder.ModifiedAt,
		)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if folders == nil {
		return []models.Folder{}, nil
	}

	return folders, nil
}

func (q *Queries) RenameFolder(ctx context.Context, id int64, newName string) (bool, error) {
	query := `
		UPDATE folders
		SET name = $1, modified_at = $2
		WHERE id = $3
	`
	now := time.Now()
	res, err := q.db.Exec(ctx, query, newName, now, id)
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

// DeleteFolder removes the folder, its subtree and all contained documents
// (delete cascades are declared on the schema).
func (q *Queries) DeleteFolder(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM folders WHERE id = $1`
	res, err := q.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

// UpdateFolderPosition writes one entry of a folder sort payload. Re-parenting
// and reordering are the same operation on the wire.
func (q *Queries) UpdateFolderPosition(ctx context.Context, id int64, sort int, parentID *int64) (bool, error) {
	query := `
		UPDATE folders
		SET sort = $1, parent_id = $2, modified_at = $3
		WHERE id = $4
	`
	now := time.Now()
	res, err := q.db.Exec(ctx, query, sort, parentID, now, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrParentFolderNotFound
		}
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

// IsDescendantOf reports whether potentialParentID lies inside the subtree
// rooted at folderID (a folder counts as its own descendant). Used to reject
// sort payloads that would re-parent a folder under itself.
func (q *Queries) IsDescendantOf(ctx context.Context, folderID int64, potentialParentID int64) (bool, error) {
	if folderID == potentialParentID {
		return true, nil
	}

	query := `
		WITH RECURSIVE folder_children AS (
			SELECT id FROM folders WHERE id = $1

			UNION ALL

			SELECT f.id
			FROM folders f
			JOIN folder_children fc ON f.parent_id = fc.id
		)
		SELECT EXISTS (
			SELECT 1
			FROM folder_children
			WHERE id = $2
		);
	`
	var isDescendant bool
	err := q.db.QueryRow(ctx, query, folderID, potentialParentID).Scan(&isDescendant)
	return isDescendant, err
}
