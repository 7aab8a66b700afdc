package database

import (
	"context"
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(context.Background(), testDSN(), DefaultPool)
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only inserts into an empty content table, so calling it twice
	// must not fail. Other packages may share the database; don't clear it.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var contentCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM content").Scan(&contentCount); err != nil {
		t.Fatalf("count content: %v", err)
	}
	if contentCount < 1 {
		t.Errorf("expected at least 1 content item, got %d", contentCount)
	}
}

func TestTaxonomySlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Gluten Free", "gluten-free"},
		{"$", "level-1"},
		{"$$$", "level-3"},
	}
	for _, tt := range tests {
		if got := taxonomySlug(tt.title); got != tt.want {
			t.Errorf("taxonomySlug(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
