// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access for the CMS schema: content
// documents, taxonomies and reader comments. Each store struct wraps a
// *sql.DB and exposes typed query methods.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"tastetrail/internal/models"
	"tastetrail/internal/slug"
)

// ContentStore handles read access to CMS content documents. All seven
// content collections share the content table, differentiated by
// collection_type.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

const contentColumns = `id, collection_type, title, slug, excerpt, featured_image, created_at, updated_at`

// scanContent scans a row into a ContentDocument.
func scanContent(scanner interface{ Scan(...any) error }) (models.ContentDocument, error) {
	var d models.ContentDocument
	err := scanner.Scan(
		&d.ID, &d.CollectionType, &d.Title, &d.Slug, &d.Excerpt,
		&d.FeaturedImage, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

// FindByIDs returns one page of published documents of the given collection
// whose ids are in ids. Documents come back in id order, not in the order
// of ids; callers restore their own ordering. Taxonomies are populated.
func (s *ContentStore) FindByIDs(ctx context.Context, ct models.CollectionType, ids []int64, page, limit int) (*models.Page[models.ContentDocument], error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM content
		WHERE collection_type = $1 AND id = ANY($2) AND status = 'published'
	`, ct, ids).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count content by ids: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE collection_type = $1 AND id = ANY($2) AND status = 'published'
		ORDER BY id
		LIMIT $3 OFFSET $4
	`, ct, ids, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("find content by ids: %w", err)
	}
	docs, err := collectContent(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTaxonomies(ctx, docs); err != nil {
		return nil, err
	}
	return models.NewPage(docs, total, page, limit), nil
}

// Search returns up to limit published documents of the collection whose
// title or slug contains term, case-insensitively. The slug also matches
// the accent-folded term, so "crème" finds "creme-brulee".
func (s *ContentStore) Search(ctx context.Context, ct models.CollectionType, term string, limit int) ([]models.ContentDocument, error) {
	pattern := "%" + escapeLike(term) + "%"
	slugPattern := pattern
	if folded := slug.Generate(term); folded != "" {
		slugPattern = "%" + escapeLike(folded) + "%"
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE collection_type = $1 AND status = 'published'
		  AND (title ILIKE $2 OR slug ILIKE $2 OR slug ILIKE $3)
		ORDER BY title
		LIMIT $4
	`, ct, pattern, slugPattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search content: %w", err)
	}
	docs, err := collectContent(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachTaxonomies(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByRef retrieves a single published document. Returns nil if not found.
func (s *ContentStore) FindByRef(ctx context.Context, ref models.ContentReference) (*models.ContentDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contentColumns+` FROM content
		WHERE collection_type = $1 AND id = $2 AND status = 'published'
	`, ref.CollectionType, ref.ID)
	d, err := scanContent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by ref: %w", err)
	}
	return &d, nil
}

func collectContent(rows *sql.Rows) ([]models.ContentDocument, error) {
	defer rows.Close()

	var docs []models.ContentDocument
	for rows.Next() {
		d, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		d.Details = models.NewDetails(d.CollectionType)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// attachTaxonomies loads the taxonomy links of docs in one query and
// assigns them to each document's details variant.
func (s *ContentStore) attachTaxonomies(ctx context.Context, docs []models.ContentDocument) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]int64, len(docs))
	byID := make(map[int64]*models.ContentDocument, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
		byID[docs[i].ID] = &docs[i]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ct.content_id, ct.facet, t.id, t.title, t.slug
		FROM content_taxonomies ct
		JOIN taxonomies t ON t.id = ct.taxonomy_id
		WHERE ct.content_id = ANY($1)
		ORDER BY ct.content_id, ct.facet, ct.position
	`, ids)
	if err != nil {
		return fmt.Errorf("load taxonomies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			contentID int64
			facet     models.FacetKey
			tax       models.Taxonomy
		)
		if err := rows.Scan(&contentID, &facet, &tax.ID, &tax.Title, &tax.Slug); err != nil {
			return fmt.Errorf("scan taxonomy: %w", err)
		}
		if d, ok := byID[contentID]; ok {
			assignTaxonomy(d.Details, facet, tax)
		}
	}
	return rows.Err()
}

// assignTaxonomy stores tax on the details field named by facet. Links whose
// facet does not belong to the document's variant are ignored.
func assignTaxonomy(details models.Details, facet models.FacetKey, tax models.Taxonomy) {
	switch d := details.(type) {
	case *models.RestaurantDetails:
		switch facet {
		case models.FacetPriceLevel:
			d.PriceLevel = &tax
		case models.FacetCuisine:
			d.Cuisine = append(d.Cuisine, tax)
		case models.FacetMoods:
			d.Moods = append(d.Moods, tax)
		case models.FacetDestination:
			d.Destination = &tax
		}
	case *models.FlavorDetails:
		switch facet {
		case models.FacetMealType:
			d.MealType = append(d.MealType, tax)
		case models.FacetOccasion:
			d.Occasion = append(d.Occasion, tax)
		case models.FacetDiet:
			d.Diet = append(d.Diet, tax)
		case models.FacetDifficultyLevel:
			d.DifficultyLevel = &tax
		}
	case *models.TravelDetails:
		switch facet {
		case models.FacetTravelStyle:
			d.TravelStyle = append(d.TravelStyle, tax)
		case models.FacetRegion:
			d.Region = &tax
		case models.FacetEnvironment:
			d.Environment = &tax
		}
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
