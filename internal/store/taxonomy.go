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

// TaxonomyStore reads the CMS taxonomy collections.
type TaxonomyStore struct {
	db *sql.DB
}

// NewTaxonomyStore returns a new TaxonomyStore.
func NewTaxonomyStore(db *sql.DB) *TaxonomyStore {
	return &TaxonomyStore{db: db}
}

// ListByKind returns up to limit terms of one taxonomy collection sorted by
// title, together with the collection's total size.
func (s *TaxonomyStore) ListByKind(ctx context.Context, kind models.TaxonomyKind, limit int) ([]models.Taxonomy, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM taxonomies WHERE kind = $1`, kind,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count taxonomies: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug FROM taxonomies
		WHERE kind = $1
		ORDER BY title
		LIMIT $2
	`, kind, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list taxonomies: %w", err)
	}
	defer rows.Close()

	items := []models.Taxonomy{}
	for rows.Next() {
		var t models.Taxonomy
		if err := rows.Scan(&t.ID, &t.Title, &t.Slug); err != nil {
			return nil, 0, fmt.Errorf("scan taxonomy: %w", err)
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}
