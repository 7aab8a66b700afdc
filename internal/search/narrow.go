// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"slices"

	"tastetrail/internal/models"
)

// Narrow filters search results by group and by active facet filters. An
// empty group keeps every group. A result must satisfy every active
// filter: for a multi-valued filter it must carry all selected slugs, for a
// single-valued one the same slug. A result without a value for an active
// facet is dropped.
func Narrow(results []Result, group models.Group, active map[models.FacetKey]FacetValue) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if group != "" && r.CollectionType.Group() != group {
			continue
		}
		if matches(r, active) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Result, active map[models.FacetKey]FacetValue) bool {
	for key, want := range active {
		have, ok := r.Filters[key]
		if !ok || !have.present() {
			return false
		}
		if want.Multiple {
			if !have.Multiple {
				return false
			}
			for _, v := range want.Values {
				if !slices.Contains(have.Values, v) {
					return false
				}
			}
			continue
		}
		if have.Multiple || have.Value != want.Value {
			return false
		}
	}
	return true
}

// ActiveFilters builds the active filter set for group from raw values
// keyed by facet. Keys the group does not offer are ignored; single-valued
// facets take the first value.
func ActiveFilters(group models.Group, raw map[string][]string) map[models.FacetKey]FacetValue {
	out := map[models.FacetKey]FacetValue{}
	for _, def := range TagFiltersFor(group) {
		vals := raw[string(def.Key)]
		if len(vals) == 0 {
			continue
		}
		if def.Multiple {
			out[def.Key] = Multi(vals...)
		} else {
			out[def.Key] = Single(vals[0])
		}
	}
	return out
}
