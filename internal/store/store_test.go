// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tastetrail/internal/database"
	"tastetrail/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "tastetrail")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "tastetrail")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// insertDoc creates a published document with a unique slug and removes it
// (and its taxonomy links) when the test finishes.
func insertDoc(t *testing.T, db *sql.DB, ct models.CollectionType, title string) int64 {
	t.Helper()
	slug := "test-" + uuid.NewString()[:8]
	var id int64
	err := db.QueryRow(`
		INSERT INTO content (collection_type, title, slug, status)
		VALUES ($1, $2, $3, 'published') RETURNING id
	`, ct, title, slug).Scan(&id)
	if err != nil {
		t.Fatalf("insert content: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM content WHERE id = $1", id) })
	return id
}

// insertTaxonomy creates a taxonomy term with a unique slug.
func insertTaxonomy(t *testing.T, db *sql.DB, kind models.TaxonomyKind, title string) models.Taxonomy {
	t.Helper()
	tax := models.Taxonomy{Title: title, Slug: "test-" + uuid.NewString()[:8]}
	err := db.QueryRow(`
		INSERT INTO taxonomies (kind, title, slug) VALUES ($1, $2, $3) RETURNING id
	`, kind, tax.Title, tax.Slug).Scan(&tax.ID)
	if err != nil {
		t.Fatalf("insert taxonomy: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM taxonomies WHERE id = $1", tax.ID) })
	return tax
}

// linkTaxonomy attaches a taxonomy term to a document under facet.
func linkTaxonomy(t *testing.T, db *sql.DB, contentID int64, facet models.FacetKey, tax models.Taxonomy, position int) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO content_taxonomies (content_id, taxonomy_id, facet, position)
		VALUES ($1, $2, $3, $4)
	`, contentID, tax.ID, facet, position)
	if err != nil {
		t.Fatalf("link taxonomy: %v", err)
	}
}

// cleanComments removes every comment written by the given user ids.
func cleanComments(t *testing.T, db *sql.DB, userIDs ...string) {
	t.Helper()
	for _, uid := range userIDs {
		db.Exec("DELETE FROM comments WHERE user_id = $1", uid)
	}
}
