// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strconv"
	"time"
)

// CollectionType names a CMS content collection. Every content document
// belongs to exactly one collection type.
type CollectionType string

const (
	CollectionRestaurants      CollectionType = "restaurants"
	CollectionRestaurantGuides CollectionType = "restaurant-guides"
	CollectionRecipes          CollectionType = "recipes"
	CollectionTechniques       CollectionType = "techniques"
	CollectionIngredients      CollectionType = "ingredients"
	CollectionTravelGuides     CollectionType = "travel-guides"
	CollectionItineraries      CollectionType = "itineraries"
)

// CollectionTypes lists every searchable content collection in display order.
var CollectionTypes = []CollectionType{
	CollectionRestaurants,
	CollectionRestaurantGuides,
	CollectionRecipes,
	CollectionTechniques,
	CollectionIngredients,
	CollectionTravelGuides,
	CollectionItineraries,
}

// ParseCollectionType validates a raw collection name.
func ParseCollectionType(s string) (CollectionType, error) {
	ct := CollectionType(s)
	if !ct.Valid() {
		return "", fmt.Errorf("unknown collection type %q", s)
	}
	return ct, nil
}

// Valid reports whether ct is one of the known content collections.
func (ct CollectionType) Valid() bool {
	_, ok := groupOf(ct)
	return ok
}

// Group returns the high-level family the collection type belongs to.
// Unknown collection types return the empty group.
func (ct CollectionType) Group() Group {
	g, _ := groupOf(ct)
	return g
}

// Group is one of the three high-level content families used for filtering.
type Group string

const (
	GroupRestaurants Group = "restaurants"
	GroupFlavor      Group = "flavor"
	GroupTravel      Group = "travel"
)

// Groups lists the content families in display order.
var Groups = []Group{GroupRestaurants, GroupFlavor, GroupTravel}

// ParseGroup validates a raw group id.
func ParseGroup(s string) (Group, error) {
	switch g := Group(s); g {
	case GroupRestaurants, GroupFlavor, GroupTravel:
		return g, nil
	}
	return "", fmt.Errorf("unknown group %q", s)
}

// Collections returns the concrete collection types that make up the group.
func (g Group) Collections() []CollectionType {
	switch g {
	case GroupRestaurants:
		return []CollectionType{CollectionRestaurants, CollectionRestaurantGuides}
	case GroupFlavor:
		return []CollectionType{CollectionRecipes, CollectionIngredients, CollectionTechniques}
	case GroupTravel:
		return []CollectionType{CollectionItineraries, CollectionTravelGuides}
	}
	return nil
}

// groupOf maps every collection type to its family. New collection types
// must be added here before anything else will accept them.
func groupOf(ct CollectionType) (Group, bool) {
	switch ct {
	case CollectionRestaurants, CollectionRestaurantGuides:
		return GroupRestaurants, true
	case CollectionRecipes, CollectionTechniques, CollectionIngredients:
		return GroupFlavor, true
	case CollectionTravelGuides, CollectionItineraries:
		return GroupTravel, true
	}
	return "", false
}

// ContentReference points at a content document without embedding its data.
// The (ID, CollectionType) pair is unique.
type ContentReference struct {
	ID             int64          `json:"id"`
	CollectionType CollectionType `json:"collectionType"`
}

// Key returns a stable string form of the reference, e.g. "recipes:12".
func (r ContentReference) Key() string {
	return string(r.CollectionType) + ":" + strconv.FormatInt(r.ID, 10)
}

// ContentDocument is a CMS record for a restaurant, recipe, travel guide or
// any other content collection. CollectionType and OriginalIndex are not
// stored in the CMS; they are attached when the document is fetched.
type ContentDocument struct {
	ID             int64          `json:"id"`
	CollectionType CollectionType `json:"collectionType"`
	OriginalIndex  int            `json:"originalIndex"`
	Title          string         `json:"title"`
	Slug           string         `json:"slug"`
	Excerpt        *string        `json:"excerpt,omitempty"`
	FeaturedImage  *string        `json:"featuredImage,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Details        Details        `json:"taxonomies,omitempty"`
}

// Ref returns the reference identifying this document.
func (d *ContentDocument) Ref() ContentReference {
	return ContentReference{ID: d.ID, CollectionType: d.CollectionType}
}

// Details carries the taxonomy relationships of a content document. The set
// of fields depends on the document's group, so Details is a closed sum:
// only RestaurantDetails, FlavorDetails and TravelDetails implement it.
type Details interface {
	group() Group
}

// RestaurantDetails holds taxonomies for restaurants and restaurant guides.
type RestaurantDetails struct {
	PriceLevel  *Taxonomy  `json:"priceLevel,omitempty"`
	Cuisine     []Taxonomy `json:"cuisine,omitempty"`
	Moods       []Taxonomy `json:"moods,omitempty"`
	Destination *Taxonomy  `json:"destination,omitempty"`
}

// FlavorDetails holds taxonomies for recipes, techniques and ingredients.
type FlavorDetails struct {
	MealType        []Taxonomy `json:"mealType,omitempty"`
	Occasion        []Taxonomy `json:"occasion,omitempty"`
	Diet            []Taxonomy `json:"diet,omitempty"`
	DifficultyLevel *Taxonomy  `json:"difficultyLevel,omitempty"`
}

// TravelDetails holds taxonomies for travel guides and itineraries.
type TravelDetails struct {
	TravelStyle []Taxonomy `json:"travelStyle,omitempty"`
	Region      *Taxonomy  `json:"region,omitempty"`
	Environment *Taxonomy  `json:"environment,omitempty"`
}

func (*RestaurantDetails) group() Group { return GroupRestaurants }
func (*FlavorDetails) group() Group     { return GroupFlavor }
func (*TravelDetails) group() Group     { return GroupTravel }

// NewDetails returns empty taxonomy details of the variant matching the
// collection type, or nil for unknown types.
func NewDetails(ct CollectionType) Details {
	switch ct.Group() {
	case GroupRestaurants:
		return &RestaurantDetails{}
	case GroupFlavor:
		return &FlavorDetails{}
	case GroupTravel:
		return &TravelDetails{}
	}
	return nil
}

// Page is one page of a paginated result. NextPage is set iff HasNextPage.
type Page[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"totalDocs"`
	HasNextPage bool `json:"hasNextPage"`
	NextPage    *int `json:"nextPage"`
	Page        int  `json:"page,omitempty"`
}

// NewPage builds a page from an offset query result, deriving HasNextPage
// and NextPage from the total count.
func NewPage[T any](docs []T, total, page, limit int) *Page[T] {
	if docs == nil {
		docs = []T{}
	}
	p := &Page[T]{Docs: docs, TotalDocs: total, Page: page}
	if limit > 0 && page*limit < total {
		next := page + 1
		p.HasNextPage = true
		p.NextPage = &next
	}
	return p
}
