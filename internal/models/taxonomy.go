// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "fmt"

// Taxonomy is a single term in one of the CMS taxonomy collections
// (a cuisine, a price level, a region, ...).
type Taxonomy struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// TaxonomyKind names a CMS taxonomy collection.
type TaxonomyKind string

const (
	TaxonomyPriceLevels      TaxonomyKind = "price-levels"
	TaxonomyCuisines         TaxonomyKind = "cuisines"
	TaxonomyMoods            TaxonomyKind = "moods"
	TaxonomyDestinations     TaxonomyKind = "destinations"
	TaxonomyMealTypes        TaxonomyKind = "meal-types"
	TaxonomyOccasions        TaxonomyKind = "occasions"
	TaxonomyDiets            TaxonomyKind = "diets"
	TaxonomyDifficultyLevels TaxonomyKind = "difficulty-levels"
	TaxonomyTravelStyles     TaxonomyKind = "travel-styles"
	TaxonomyRegions          TaxonomyKind = "regions"
	TaxonomyEnvironments     TaxonomyKind = "environments"
)

// FacetKey is the document field a taxonomy is attached through, and the
// key used for search facets.
type FacetKey string

const (
	FacetPriceLevel      FacetKey = "priceLevel"
	FacetCuisine         FacetKey = "cuisine"
	FacetMoods           FacetKey = "moods"
	FacetDestination     FacetKey = "destination"
	FacetMealType        FacetKey = "mealType"
	FacetOccasion        FacetKey = "occasion"
	FacetDiet            FacetKey = "diet"
	FacetDifficultyLevel FacetKey = "difficultyLevel"
	FacetTravelStyle     FacetKey = "travelStyle"
	FacetRegion          FacetKey = "region"
	FacetEnvironment     FacetKey = "environment"
)

// facetKinds maps each facet key to the taxonomy collection it draws from.
var facetKinds = map[FacetKey]TaxonomyKind{
	FacetPriceLevel:      TaxonomyPriceLevels,
	FacetCuisine:         TaxonomyCuisines,
	FacetMoods:           TaxonomyMoods,
	FacetDestination:     TaxonomyDestinations,
	FacetMealType:        TaxonomyMealTypes,
	FacetOccasion:        TaxonomyOccasions,
	FacetDiet:            TaxonomyDiets,
	FacetDifficultyLevel: TaxonomyDifficultyLevels,
	FacetTravelStyle:     TaxonomyTravelStyles,
	FacetRegion:          TaxonomyRegions,
	FacetEnvironment:     TaxonomyEnvironments,
}

// Kind returns the taxonomy collection behind the facet.
func (k FacetKey) Kind() TaxonomyKind {
	return facetKinds[k]
}

// ParseTaxonomyKind validates a raw taxonomy collection name.
func ParseTaxonomyKind(s string) (TaxonomyKind, error) {
	for _, kind := range facetKinds {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown taxonomy collection %q", s)
}

// FacetDef describes how a facet is presented for filtering.
type FacetDef struct {
	Key      FacetKey `json:"id"`
	Title    string   `json:"title"`
	Multiple bool     `json:"multiple"`
}

// FacetsByGroup lists the facets offered for each content group, in display order.
var FacetsByGroup = map[Group][]FacetDef{
	GroupRestaurants: {
		{Key: FacetPriceLevel, Title: "Price"},
		{Key: FacetCuisine, Title: "Cuisine", Multiple: true},
		{Key: FacetMoods, Title: "Mood", Multiple: true},
		{Key: FacetDestination, Title: "Location"},
	},
	GroupFlavor: {
		{Key: FacetMealType, Title: "Meal Type", Multiple: true},
		{Key: FacetOccasion, Title: "Occasion", Multiple: true},
		{Key: FacetDiet, Title: "Diet", Multiple: true},
		{Key: FacetDifficultyLevel, Title: "Difficulty"},
	},
	GroupTravel: {
		{Key: FacetTravelStyle, Title: "Style", Multiple: true},
		{Key: FacetRegion, Title: "Region"},
		{Key: FacetEnvironment, Title: "Environment"},
	},
}
