package filter

import (
	"testing"
	"time"

	"tastetrail/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestByGroup(t *testing.T) {
	refs := []models.ContentReference{
		{ID: 1, CollectionType: models.CollectionRestaurants},
		{ID: 2, CollectionType: models.CollectionRecipes},
		{ID: 3, CollectionType: models.CollectionItineraries},
		{ID: 4, CollectionType: models.CollectionIngredients},
	}

	t.Run("no active groups keeps everything", func(t *testing.T) {
		got := Refs(refs, nil)
		if len(got) != len(refs) {
			t.Fatalf("len = %d, want %d", len(got), len(refs))
		}
		got[0].ID = 99
		if refs[0].ID != 1 {
			t.Error("result aliases the input slice")
		}
	})

	t.Run("flavor only", func(t *testing.T) {
		got := Refs(refs, []models.Group{models.GroupFlavor})
		if len(got) != 2 || got[0].ID != 2 || got[1].ID != 4 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("restaurants and travel", func(t *testing.T) {
		got := Refs(refs, []models.Group{models.GroupTravel, models.GroupRestaurants})
		if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("documents", func(t *testing.T) {
		docs := []models.ContentDocument{
			{ID: 1, CollectionType: models.CollectionTravelGuides},
			{ID: 2, CollectionType: models.CollectionTechniques},
		}
		got := Docs(docs, []models.Group{models.GroupTravel})
		if len(got) != 1 || got[0].ID != 1 {
			t.Errorf("got %+v", got)
		}
	})
}

func TestSortCollections(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cols := []*models.UserCollection{
		{ID: "b", Name: "pasta", CreatedAt: base, UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "a", Name: "Brunch", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: "c", Name: "Éclairs", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "d", Name: "Apples", CreatedAt: base.Add(time.Hour), UpdatedAt: base},
	}

	ids := func(cs []*models.UserCollection) string {
		s := ""
		for _, c := range cs {
			s += c.ID
		}
		return s
	}

	tests := []struct {
		key  models.SortKey
		want string
	}{
		{models.SortNewest, "cadb"},
		{models.SortAlphabetical, "dacb"},
		{"", "bcad"},
		{models.SortHighest, "bcad"},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if got := ids(SortCollections(cols, tt.key)); got != tt.want {
				t.Errorf("order = %s, want %s", got, tt.want)
			}
		})
	}

	if ids(cols) != "bacd" {
		t.Error("input was reordered")
	}
}

func TestSortRatings(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	comments := []models.Comment{
		{ID: 1, Rating: ptr(3), PostTitle: ptr("Tacos"), CreatedAt: base},
		{ID: 2, Rating: nil, PostTitle: ptr("Aioli"), CreatedAt: base.Add(5 * time.Hour)},
		{ID: 3, Rating: ptr(5), PostTitle: nil, CreatedAt: base.Add(time.Hour)},
		{ID: 4, Rating: ptr(5), PostTitle: ptr("burrata"), CreatedAt: base.Add(2 * time.Hour)},
		{ID: 5, Rating: ptr(1), PostTitle: ptr("Arepas"), CreatedAt: base.Add(3 * time.Hour)},
	}

	ids := func(cs []models.Comment) []int64 {
		out := make([]int64, len(cs))
		for i, c := range cs {
			out[i] = c.ID
		}
		return out
	}

	tests := []struct {
		key  models.SortKey
		want []int64
	}{
		{models.SortHighest, []int64{3, 4, 1, 5}},
		{"", []int64{3, 4, 1, 5}},
		{models.SortNewest, []int64{5, 4, 3, 1}},
		// A comment whose post is gone sorts first.
		{models.SortAlphabetical, []int64{3, 5, 4, 1}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := ids(SortRatings(comments, tt.key))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestShowLoadMore(t *testing.T) {
	tests := []struct {
		name     string
		hasMore  bool
		filtered int
		loaded   int
		want     bool
	}{
		{"no more pages", false, 8, 8, false},
		{"nothing visible", true, 0, 8, false},
		{"unfiltered", true, 5, 5, true},
		{"filtered full page", true, 8, 16, true},
		{"filtered partial page", true, 5, 16, false},
		{"filtered two pages", true, 16, 24, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShowLoadMore(tt.hasMore, tt.filtered, tt.loaded, PageSize); got != tt.want {
				t.Errorf("ShowLoadMore = %v, want %v", got, tt.want)
			}
		})
	}
}
