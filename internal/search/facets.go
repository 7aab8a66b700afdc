// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"slices"

	"github.com/goccy/go-json"

	"tastetrail/internal/models"
)

// FacetValue is the value a document has for one facet: a single taxonomy
// slug or a list of them. A single value of "" means the document has no
// term for the facet and encodes as null.
type FacetValue struct {
	Multiple bool
	Value    string
	Values   []string
}

// Single returns a single-valued facet.
func Single(slug string) FacetValue { return FacetValue{Value: slug} }

// Multi returns a multi-valued facet.
func Multi(slugs ...string) FacetValue {
	if slugs == nil {
		slugs = []string{}
	}
	return FacetValue{Multiple: true, Values: slugs}
}

// present reports whether the value counts as set when narrowing. An empty
// list still counts; an empty single value does not.
func (v FacetValue) present() bool {
	return v.Multiple || v.Value != ""
}

// MarshalJSON encodes the value as a string, null or an array of strings.
func (v FacetValue) MarshalJSON() ([]byte, error) {
	if v.Multiple {
		vals := v.Values
		if vals == nil {
			vals = []string{}
		}
		return json.Marshal(vals)
	}
	if v.Value == "" {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}

// UnmarshalJSON accepts a string, null or an array of strings.
func (v *FacetValue) UnmarshalJSON(b []byte) error {
	var vals []string
	if len(b) > 0 && b[0] == '[' {
		if err := json.Unmarshal(b, &vals); err != nil {
			return err
		}
		*v = Multi(vals...)
		return nil
	}
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*v = FacetValue{}
	if s != nil {
		v.Value = *s
	}
	return nil
}

func slugs(ts []models.Taxonomy) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		if t.Slug != "" {
			out = append(out, t.Slug)
		}
	}
	return out
}

func slugOf(t *models.Taxonomy) string {
	if t == nil {
		return ""
	}
	return t.Slug
}

// facetsOf returns the facet values of a document's taxonomies.
func facetsOf(d models.Details) map[models.FacetKey]FacetValue {
	switch d := d.(type) {
	case *models.RestaurantDetails:
		return map[models.FacetKey]FacetValue{
			models.FacetPriceLevel:  Single(slugOf(d.PriceLevel)),
			models.FacetCuisine:     Multi(slugs(d.Cuisine)...),
			models.FacetMoods:       Multi(slugs(d.Moods)...),
			models.FacetDestination: Single(slugOf(d.Destination)),
		}
	case *models.FlavorDetails:
		return map[models.FacetKey]FacetValue{
			models.FacetMealType:        Multi(slugs(d.MealType)...),
			models.FacetOccasion:        Multi(slugs(d.Occasion)...),
			models.FacetDiet:            Multi(slugs(d.Diet)...),
			models.FacetDifficultyLevel: Single(slugOf(d.DifficultyLevel)),
		}
	case *models.TravelDetails:
		return map[models.FacetKey]FacetValue{
			models.FacetTravelStyle: Multi(slugs(d.TravelStyle)...),
			models.FacetRegion:      Single(slugOf(d.Region)),
			models.FacetEnvironment: Single(slugOf(d.Environment)),
		}
	}
	return map[models.FacetKey]FacetValue{}
}

// available accumulates the filter options offered for a set of hits,
// de-duplicated by slug in first-seen order.
type available struct {
	options map[models.FacetKey][]models.Taxonomy
}

func newAvailable() *available {
	return &available{options: map[models.FacetKey][]models.Taxonomy{}}
}

func (a *available) add(key models.FacetKey, terms ...models.Taxonomy) {
	for _, t := range terms {
		if slices.ContainsFunc(a.options[key], func(o models.Taxonomy) bool { return o.Slug == t.Slug }) {
			continue
		}
		a.options[key] = append(a.options[key], t)
	}
}

func (a *available) addOne(key models.FacetKey, t *models.Taxonomy) {
	if t != nil {
		a.add(key, *t)
	}
}

// collect records the options contributed by one document. Restaurants
// offer price and cuisine, flavor documents all four of their facets and
// travel documents none.
func (a *available) collect(d models.Details) {
	switch d := d.(type) {
	case *models.RestaurantDetails:
		a.addOne(models.FacetPriceLevel, d.PriceLevel)
		for _, c := range d.Cuisine {
			if c.Slug != "" {
				a.add(models.FacetCuisine, c)
			}
		}
	case *models.FlavorDetails:
		a.add(models.FacetMealType, d.MealType...)
		a.add(models.FacetOccasion, d.Occasion...)
		a.add(models.FacetDiet, d.Diet...)
		a.addOne(models.FacetDifficultyLevel, d.DifficultyLevel)
	case *models.TravelDetails:
	}
}
