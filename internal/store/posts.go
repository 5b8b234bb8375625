package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MediSynth-io/postsvc/internal/database"
	"github.com/MediSynth-io/postsvc/internal/models"
)

const postColumns = "id, body, created_at"

// CreatePost inserts a post. A nil body is passed through as NULL and
// rejected by the table's NOT NULL constraint.
func (s *Store) CreatePost(ctx context.Context, body *string) (*models.Post, error) {
	if s.db.Type == database.TypePostgres {
		return scanPost(s.db.QueryRowContext(ctx,
			"INSERT INTO posttable (body) VALUES ($1) RETURNING "+postColumns,
			body,
		))
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO posttable (body) VALUES (?)", body)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id)
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]*models.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+postColumns+" FROM posttable ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		p := &models.Post{}
		if err := rows.Scan(&p.ID, &p.Body, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost retrieves a post by ID
func (s *Store) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return scanPost(s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT "+postColumns+" FROM posttable WHERE id = ?"),
		id,
	))
}

// UpdatePost replaces the body of a post and returns the updated row.
func (s *Store) UpdatePost(ctx context.Context, id int64, body *string) (*models.Post, error) {
	if s.db.Type == database.TypePostgres {
		return scanPost(s.db.QueryRowContext(ctx,
			"UPDATE posttable SET body = $1 WHERE id = $2 RETURNING "+postColumns,
			body, id,
		))
	}

	result, err := s.db.ExecContext(ctx, "UPDATE posttable SET body = ? WHERE id = ?", body, id)
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetPost(ctx, id)
}

// DeletePost removes a post. Deleting a missing post is not an error.
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM posttable WHERE id = ?"), id)
	return err
}

// DeleteAllPosts removes every post.
func (s *Store) DeleteAllPosts(ctx context.Context) (*models.DeleteResult, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM posttable")
	if err != nil {
		return nil, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &models.DeleteResult{Command: "DELETE", RowCount: rows}, nil
}

func scanPost(row *sql.Row) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(&p.ID, &p.Body, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
