package main

import (
	"context"
	"strings"
	"time"

	"github.com/pflikweert/offer-search-ws/internal/solr"
)

type facetValue struct {
	Value     string `json:"value"`
	Label     string `json:"label"`
	Count     int    `json:"count"`
	Checked   bool   `json:"checked"`
	SearchURL string `json:"search_url"`
	ResetLink string `json:"reset_link,omitempty"`
}

type facetBlock struct {
	Values    []facetValue `json:"values"`
	ResetLink string       `json:"reset_link,omitempty"`
}

type facetRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	From string  `json:"from,omitempty"`
	To   string  `json:"to,omitempty"`
}

type facetPriceRange struct {
	facetRange
	Rates map[string]float64 `json:"rates,omitempty"`
}

// getFacetDataResults assembles the filter sidebar: range blocks from
// the stats components, and value blocks from the facet counts joined
// against the configured lookups.
func (s *searchContext) getFacetDataResults() map[string]interface{} {
	facet := make(map[string]interface{})

	if stats := s.result.GetStatsField(solrFieldPrice); stats != nil {
		facet["price"] = facetPriceRange{
			facetRange: facetRange{
				Min:  stats.Min,
				Max:  stats.Max,
				From: s.params.get("price_from"),
				To:   s.params.get("price_to"),
			},
			Rates: s.svc.config.Rates,
		}
	}

	if stats := s.result.GetStatsField(solrFieldYear); stats != nil {
		facet["year"] = facetRange{
			Min: stats.Min,
			// allow next year's models
			Max:  float64(time.Now().Year() + 1),
			From: s.params.get("year_from"),
			To:   s.params.get("year_to"),
		}
	}

	facet["make"] = s.makeFacetBlock()
	facet["country"] = s.countryFacetBlock()
	facet["category"] = s.categoryFacetBlock()

	return facet
}

func (s *searchContext) makeFacetBlock() facetBlock {
	counts := s.facetCounts(solrFieldMake, "make")

	selected := s.params.values["make"]

	block := facetBlock{Values: []facetValue{}}
	if len(selected) > 0 {
		block.ResetLink = s.getSearchURLWithout("make")
	}

	for _, count := range counts {
		m := s.svc.makeByName(count.Value)
		if m == nil {
			continue
		}

		checked := sliceContainsString(selected, m.Slug, true) || sliceContainsString(selected, m.Name, true)

		value := facetValue{
			Value:   m.Slug,
			Label:   titleCase(m.Name),
			Count:   count.Count,
			Checked: checked,
		}

		if checked == true {
			value.SearchURL = s.getSearchURLWith("make", withoutString(selected, m.Slug, m.Name))
			value.ResetLink = value.SearchURL
		} else {
			value.SearchURL = s.getSearchURLWith("make", append(append([]string(nil), selected...), m.Slug))
		}

		block.Values = append(block.Values, value)
	}

	return block
}

func (s *searchContext) countryFacetBlock() facetBlock {
	counts := s.facetCounts(solrFieldCountry, "country")

	selected := s.params.values["country"]

	block := facetBlock{Values: []facetValue{}}
	if len(selected) > 0 {
		block.ResetLink = s.getSearchURLWithout("country")
	}

	for _, count := range counts {
		checked := sliceContainsString(selected, count.Value, true)

		value := facetValue{
			Value:   count.Value,
			Label:   s.countryDisplayName(count.Value, s.client.locale),
			Count:   count.Count,
			Checked: checked,
		}

		if checked == true {
			value.SearchURL = s.getSearchURLWith("country", withoutString(selected, count.Value))
			value.ResetLink = value.SearchURL
		} else {
			value.SearchURL = s.getSearchURLWith("country", append(append([]string(nil), selected...), count.Value))
		}

		block.Values = append(block.Values, value)
	}

	return block
}

func (s *searchContext) categoryFacetBlock() facetBlock {
	counts := s.result.GetFacetField(solrFieldCategory)

	selected := s.selectedCategory()

	block := facetBlock{Values: []facetValue{}}
	if selected != nil {
		block.ResetLink = s.getSearchURLWithout(categoryParamForLevel(selected.Level))
	}

	for _, count := range counts {
		c := s.svc.categoryByID(count.Value)
		if c == nil {
			// some feeds index the category by name instead of id
			c = s.svc.maps.categoriesByName[strings.ToLower(count.Value)]
		}
		if c == nil {
			continue
		}

		checked := selected != nil && selected.ID == c.ID

		param := categoryParamForLevel(c.Level)

		value := facetValue{
			Value:   formatInt64(int64(c.ID)),
			Label:   s.svc.categoryName(c, s.client.locale),
			Count:   count.Count,
			Checked: checked,
		}

		if checked == true {
			value.SearchURL = s.getSearchURLWithout(param)
			value.ResetLink = value.SearchURL
		} else {
			value.SearchURL = s.getSearchURLWith(param, []string{value.Value})
		}

		block.Values = append(block.Values, value)
	}

	return block
}

func categoryParamForLevel(level int) string {
	switch level {
	case 2:
		return "cat_l2"
	case 3:
		return "cat_l3"
	default:
		return "cat_l1"
	}
}

// facetCounts returns the counts for a facet field. When that field is
// itself filtered, the engine only reports the selected values, so the
// remaining values are pulled in with a secondary query that lifts just
// that filter.
func (s *searchContext) facetCounts(field, param string) []solr.FacetCount {
	counts := s.result.GetFacetField(field)

	if s.params.has(param) == false {
		return counts
	}

	unfiltered, err := s.unfilteredFacetCounts(field)
	if err != nil {
		s.err("[FACET] unfiltered counts for %s: %s", field, err.Error())
		return counts
	}

	return mergeFacetCounts(counts, unfiltered)
}

func (s *searchContext) unfilteredFacetCounts(field string) ([]solr.FacetCount, error) {
	q := s.query.Clone()
	q.SetRows(0)
	q.EnableStats(false)
	q.EnableDebug(false)
	q.SetFacetFields([]string{field})
	q.ReplaceRawQueryField(field, "*")

	result, err := s.svc.solr.Execute(context.Background(), q)
	if err != nil {
		return nil, err
	}

	if parseErr := result.Err(); parseErr != nil {
		return nil, parseErr
	}

	return result.GetFacetField(field), nil
}

// mergeFacetCounts keeps the filtered counts first, then appends the
// values the filter hid, in the order the engine reported them.
func mergeFacetCounts(filtered, unfiltered []solr.FacetCount) []solr.FacetCount {
	seen := make(map[string]bool, len(filtered))

	merged := append([]solr.FacetCount(nil), filtered...)
	for _, count := range filtered {
		seen[count.Value] = true
	}

	for _, count := range unfiltered {
		if seen[count.Value] == false {
			merged = append(merged, count)
		}
	}

	return merged
}

func withoutString(values []string, excluded ...string) []string {
	var kept []string

	for _, value := range values {
		if sliceContainsString(excluded, value, true) == false {
			kept = append(kept, value)
		}
	}

	return kept
}
