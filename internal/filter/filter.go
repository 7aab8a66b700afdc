// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package filter implements the dashboard's group filters, sort orders and
// "load more" visibility. Everything here is pure: inputs are never
// modified and the result is a new slice.
package filter

import (
	"cmp"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tastetrail/internal/models"
)

// ByGroup keeps the items whose collection type belongs to one of the
// active groups. With no active groups every item is kept.
func ByGroup[T any](items []T, active []models.Group, typeOf func(T) models.CollectionType) []T {
	if len(active) == 0 {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if slices.Contains(active, typeOf(it).Group()) {
			out = append(out, it)
		}
	}
	return out
}

// Docs applies ByGroup to content documents.
func Docs(docs []models.ContentDocument, active []models.Group) []models.ContentDocument {
	return ByGroup(docs, active, func(d models.ContentDocument) models.CollectionType { return d.CollectionType })
}

// Refs applies ByGroup to content references.
func Refs(refs []models.ContentReference, active []models.Group) []models.ContentReference {
	return ByGroup(refs, active, func(r models.ContentReference) models.CollectionType { return r.CollectionType })
}

// newCollator returns a collator ordering strings the way a reader expects
// in an English UI: case and accents only decide otherwise equal strings.
// A collator is not safe for concurrent use.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}

// SortCollections orders collections by key. SortNewest orders by creation
// time, SortAlphabetical by name, and anything else by last update, most
// recent first. Ties fall back to id ascending.
func SortCollections(cols []*models.UserCollection, key models.SortKey) []*models.UserCollection {
	out := slices.Clone(cols)

	var byKey func(a, b *models.UserCollection) int
	switch key {
	case models.SortNewest:
		byKey = func(a, b *models.UserCollection) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case models.SortAlphabetical:
		col := newCollator()
		byKey = func(a, b *models.UserCollection) int { return col.CompareString(a.Name, b.Name) }
	default:
		byKey = func(a, b *models.UserCollection) int { return b.UpdatedAt.Compare(a.UpdatedAt) }
	}

	slices.SortStableFunc(out, func(a, b *models.UserCollection) int {
		if c := byKey(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// SortRatings drops unrated comments and orders the rest by key.
// SortNewest orders by creation time, SortAlphabetical by the rated post's
// title (an unknown title sorts as empty, so first), and anything else by
// rating, highest first. Ties fall back to id ascending.
func SortRatings(comments []models.Comment, key models.SortKey) []models.Comment {
	out := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsRated() {
			out = append(out, c)
		}
	}

	var byKey func(a, b *models.Comment) int
	switch key {
	case models.SortNewest:
		byKey = func(a, b *models.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case models.SortAlphabetical:
		col := newCollator()
		byKey = func(a, b *models.Comment) int { return col.CompareString(a.Title(), b.Title()) }
	default:
		byKey = func(a, b *models.Comment) int { return cmp.Compare(*b.Rating, *a.Rating) }
	}

	slices.SortStableFunc(out, func(a, b models.Comment) int {
		if c := byKey(&a, &b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// PageSize is the number of items a dashboard list loads per page.
const PageSize = 8

// ShowLoadMore reports whether a "load more" control should be offered for
// a list of loaded items of which filtered survive the active filters.
// Unfiltered lists follow hasMore; filtered lists only offer more while the
// visible count is a whole number of pages.
func ShowLoadMore(hasMore bool, filtered, loaded, pageSize int) bool {
	if !hasMore || filtered == 0 {
		return false
	}
	if filtered == loaded {
		return true
	}
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return filtered%pageSize == 0
}
