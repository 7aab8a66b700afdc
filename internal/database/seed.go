package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"tastetrail/internal/models"
	"tastetrail/internal/slug"
)

type seedDoc struct {
	collection models.CollectionType
	title      string
	excerpt    string
	facets     map[models.FacetKey][]string // facet -> taxonomy titles
}

var seedTaxonomies = map[models.TaxonomyKind][]string{
	models.TaxonomyPriceLevels:      {"$", "$$", "$$$"},
	models.TaxonomyCuisines:         {"Italian", "Japanese", "Mexican", "Lebanese"},
	models.TaxonomyMoods:            {"Cozy", "Lively", "Romantic"},
	models.TaxonomyDestinations:     {"Lisbon", "Kyoto", "Oaxaca"},
	models.TaxonomyMealTypes:        {"Breakfast", "Dinner", "Dessert"},
	models.TaxonomyOccasions:        {"Weeknight", "Holiday"},
	models.TaxonomyDiets:            {"Vegetarian", "Gluten Free"},
	models.TaxonomyDifficultyLevels: {"Easy", "Intermediate", "Advanced"},
	models.TaxonomyTravelStyles:     {"Food Trip", "Slow Travel", "Road Trip"},
	models.TaxonomyRegions:          {"Europe", "Asia", "Americas"},
	models.TaxonomyEnvironments:     {"Coastal", "Urban", "Mountain"},
}

var seedDocs = []seedDoc{
	{models.CollectionRestaurants, "Taberna do Mar", "Seafood by the river.", map[models.FacetKey][]string{
		models.FacetPriceLevel: {"$$"}, models.FacetCuisine: {"Italian", "Lebanese"},
		models.FacetMoods: {"Lively"}, models.FacetDestination: {"Lisbon"}}},
	{models.CollectionRestaurants, "Kissa Hoshi", "A quiet kissaten with tamago sando.", map[models.FacetKey][]string{
		models.FacetPriceLevel: {"$"}, models.FacetCuisine: {"Japanese"},
		models.FacetMoods: {"Cozy"}, models.FacetDestination: {"Kyoto"}}},
	{models.CollectionRestaurantGuides, "Where to Eat in Oaxaca", "Moles, markets and mezcal.", map[models.FacetKey][]string{
		models.FacetCuisine: {"Mexican"}, models.FacetDestination: {"Oaxaca"}}},
	{models.CollectionRecipes, "Weeknight Cacio e Pepe", "Three ingredients, ten minutes.", map[models.FacetKey][]string{
		models.FacetMealType: {"Dinner"}, models.FacetOccasion: {"Weeknight"},
		models.FacetDiet: {"Vegetarian"}, models.FacetDifficultyLevel: {"Easy"}}},
	{models.CollectionRecipes, "Holiday Tres Leches", "Soaked sponge for a crowd.", map[models.FacetKey][]string{
		models.FacetMealType: {"Dessert"}, models.FacetOccasion: {"Holiday"},
		models.FacetDifficultyLevel: {"Intermediate"}}},
	{models.CollectionTechniques, "How to Temper Chocolate", "Seeding method, no marble needed.", map[models.FacetKey][]string{
		models.FacetMealType: {"Dessert"}, models.FacetDifficultyLevel: {"Advanced"}}},
	{models.CollectionIngredients, "Sumac", "Tart, lemony, deep red.", map[models.FacetKey][]string{
		models.FacetDiet: {"Vegetarian", "Gluten Free"}}},
	{models.CollectionTravelGuides, "Lisbon for Food Lovers", "Pastéis, tascas and ginjinha.", map[models.FacetKey][]string{
		models.FacetTravelStyle: {"Food Trip"}, models.FacetRegion: {"Europe"}, models.FacetEnvironment: {"Coastal"}}},
	{models.CollectionItineraries, "Three Slow Days in Kyoto", "Temples in the morning, izakaya at night.", map[models.FacetKey][]string{
		models.FacetTravelStyle: {"Slow Travel", "Food Trip"}, models.FacetRegion: {"Asia"}, models.FacetEnvironment: {"Urban"}}},
}

// Seed populates the database with sample content for development.
// It is a no-op if any content already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM content").Scan(&count); err != nil {
		return fmt.Errorf("seed check content: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	taxonomyIDs := make(map[models.TaxonomyKind]map[string]int64)
	for kind, titles := range seedTaxonomies {
		taxonomyIDs[kind] = make(map[string]int64)
		for _, title := range titles {
			var id int64
			err := tx.QueryRow(`
				INSERT INTO taxonomies (kind, title, slug) VALUES ($1, $2, $3)
				ON CONFLICT (kind, slug) DO UPDATE SET title = EXCLUDED.title
				RETURNING id
			`, kind, title, taxonomySlug(title)).Scan(&id)
			if err != nil {
				return fmt.Errorf("seed taxonomy %s/%s: %w", kind, title, err)
			}
			taxonomyIDs[kind][title] = id
		}
	}

	for _, d := range seedDocs {
		var id int64
		err := tx.QueryRow(`
			INSERT INTO content (collection_type, title, slug, excerpt)
			VALUES ($1, $2, $3, $4) RETURNING id
		`, d.collection, d.title, slug.Generate(d.title), d.excerpt).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed content %q: %w", d.title, err)
		}

		for facet, titles := range d.facets {
			for pos, title := range titles {
				taxID, ok := taxonomyIDs[facet.Kind()][title]
				if !ok {
					return fmt.Errorf("seed content %q: unknown %s %q", d.title, facet, title)
				}
				if _, err := tx.Exec(`
					INSERT INTO content_taxonomies (content_id, taxonomy_id, facet, position)
					VALUES ($1, $2, $3, $4)
				`, id, taxID, facet, pos); err != nil {
					return fmt.Errorf("seed link %q -> %s: %w", d.title, title, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with sample content", "documents", len(seedDocs))
	return nil
}

// taxonomySlug keeps price symbols distinguishable, which slug.Generate would strip.
func taxonomySlug(title string) string {
	if s := slug.Generate(title); s != "" {
		return s
	}
	return fmt.Sprintf("level-%d", len(title))
}
