// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"tastetrail/internal/models"
)

// CommentStore handles database operations for reader comments and ratings.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// commentColumns selects a comment joined against its document's title.
// The join is a LEFT JOIN so comments on removed documents keep a nil title.
const commentColumns = `c.id, c.comment, c.rating, c.user_id, c.name, c.admin_reply, c.status,
	c.parent_id, c.post_id, c.post_type, p.title, c.created_at, c.updated_at`

const commentFrom = ` FROM comments c
	LEFT JOIN content p ON p.id = c.post_id AND p.collection_type = c.post_type`

func scanComment(scanner interface{ Scan(...any) error }) (models.Comment, error) {
	var c models.Comment
	err := scanner.Scan(
		&c.ID, &c.Comment, &c.Rating, &c.UserID, &c.Name, &c.AdminReply, &c.Status,
		&c.ParentID, &c.Post.ID, &c.Post.CollectionType, &c.PostTitle, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// FindByID retrieves a comment by id. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+commentFrom+` WHERE c.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return &c, nil
}

// FindTopLevel returns the reader's top-level comment on a document, if any.
// Returns nil if the reader has not commented on it yet.
func (s *CommentStore) FindTopLevel(ctx context.Context, userID string, ref models.ContentReference) (*models.Comment, error) {
	c, err := scanComment(s.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+commentFrom+`
		WHERE c.user_id = $1 AND c.post_id = $2 AND c.post_type = $3 AND c.parent_id IS NULL
		ORDER BY c.created_at DESC
		LIMIT 1
	`, userID, ref.ID, ref.CollectionType))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find top-level comment: %w", err)
	}
	return &c, nil
}

// ListApprovedForPost returns one page of approved comments on a document,
// newest first.
func (s *CommentStore) ListApprovedForPost(ctx context.Context, ref models.ContentReference, page, limit int) (*models.Page[models.Comment], error) {
	const where = ` WHERE c.post_id = $1 AND c.post_type = $2 AND c.status = 'approved'`
	return s.listPage(ctx, where, page, limit, ref.ID, ref.CollectionType)
}

// ListRatedByUser returns one page of the reader's rated comments, newest
// first, with post titles populated.
func (s *CommentStore) ListRatedByUser(ctx context.Context, userID string, page, limit int) (*models.Page[models.Comment], error) {
	const where = ` WHERE c.user_id = $1 AND c.rating IS NOT NULL`
	return s.listPage(ctx, where, page, limit, userID)
}

func (s *CommentStore) listPage(ctx context.Context, where string, page, limit int, args ...any) (*models.Page[models.Comment], error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments c`+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	n := len(args)
	query := `SELECT ` + commentColumns + commentFrom + where +
		fmt.Sprintf(` ORDER BY c.created_at DESC, c.id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return models.NewPage(items, total, page, limit), nil
}

// Create inserts a new comment and fills in its id and timestamps.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (comment, rating, user_id, name, status, parent_id, post_id, post_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, c.Comment, c.Rating, c.UserID, c.Name, c.Status, c.ParentID, c.Post.ID, c.Post.CollectionType,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Update rewrites the reader-editable fields and moderation status of a
// comment. Returns false if the comment does not exist.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) (bool, error) {
	err := s.db.QueryRowContext(ctx, `
		UPDATE comments
		SET comment = $1, rating = $2, name = $3, status = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, c.Comment, c.Rating, c.Name, c.Status, c.ID).Scan(&c.UpdatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update comment: %w", err)
	}
	return true, nil
}

// Delete removes a comment. Returns false if it did not exist.
func (s *CommentStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	return n > 0, nil
}
