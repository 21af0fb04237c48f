package main

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// message ids for localized url path segments
const (
	msgURLSegmentMake     = "UrlSegmentMake"
	msgURLSegmentLocation = "UrlSegmentLocation"
)

// countryDisplayName renders an ISO country code as a display name in
// the given locale. Unknown codes pass through unchanged.
func (s *searchContext) countryDisplayName(code, locale string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}

	tag := s.svc.maps.localeTags[locale]

	namer := display.Regions(tag)
	if namer == nil {
		return code
	}

	if name := namer.Name(region); name != "" {
		return name
	}

	return code
}

func cloneParams(src map[string][]string) map[string][]string {
	dst := make(map[string][]string, len(src))
	for key, values := range src {
		dst[key] = append([]string(nil), values...)
	}

	return dst
}

// composeSearchPath renders the canonical slug path for the current
// (possibly mutated) parameter set: locale prefix, seller or search
// base, query slug, category slug path, make and location segments.
func (s *searchContext) composeSearchPath(locale string, params map[string][]string) string {
	segments := []string{locale}

	if sellerSlug := firstElementOf(params["seller_slug"]); sellerSlug != "" {
		segments = append(segments, "s", sellerSlug)
	} else {
		segments = append(segments, "search")
	}

	if text := firstElementOf(params["q"]); text != "" {
		segments = append(segments, "q", slug.Make(text))
	}

	category := s.deepestCategory(params)
	if category != nil {
		segments = append(segments, strings.Split(s.svc.categorySlugPath(category, locale), "/")...)
	}

	if makes := params["make"]; len(makes) > 0 {
		var slugs []string
		for _, token := range makes {
			if m := s.svc.makeBySlug(token); m != nil {
				slugs = append(slugs, m.Slug)
			} else if m := s.svc.makeByName(token); m != nil {
				slugs = append(slugs, m.Slug)
			}
		}

		if len(slugs) > 0 {
			segments = append(segments, s.client.localizeFor(s.svc, locale, msgURLSegmentMake), strings.Join(slugs, "+"))
		}
	}

	if countries := params["country"]; len(countries) > 0 {
		var names []string
		for _, code := range countries {
			names = append(names, slug.Make(s.countryDisplayName(code, locale)))
		}

		segments = append(segments, s.client.localizeFor(s.svc, locale, msgURLSegmentLocation), strings.Join(names, "+"))
	}

	return "/" + strings.Join(segments, "/") + "/"
}

func (s *searchContext) deepestCategory(params map[string][]string) *serviceConfigCategory {
	for _, param := range []string{"cat_l3", "cat_l2", "cat_l1"} {
		if id := firstElementOf(params[param]); id != "" {
			if c := s.svc.categoryByID(id); c != nil {
				return c
			}
		}
	}

	return nil
}

// composeSearchParams renders the query-parameter tail. Only consulted
// parameters are eligible; page=1 and the default sort are omitted as
// redundant.
func (s *searchContext) composeSearchParams(params map[string][]string) string {
	values := url.Values{}

	if page := firstElementOf(params["page"]); page != "" && page != "1" {
		values.Set("page", page)
	}

	if text := firstElementOf(params["q"]); text != "" {
		values.Set("query", text)
	}

	if sortKey := firstElementOf(params["sort"]); sortKey != "" && sortKey != sortRelevancy {
		values.Set("sort", sortKey)
	}

	for _, param := range []string{"price_from", "price_to", "year_from", "year_to"} {
		if value := firstElementOf(params[param]); value != "" {
			values.Set(param, value)
		}
	}

	if len(values) == 0 {
		return ""
	}

	return "?" + values.Encode()
}

// getSearchURL renders the canonical URL for the current search in the
// client's locale.
func (s *searchContext) getSearchURL() string {
	return s.getSearchURLForLocale(s.client.locale)
}

func (s *searchContext) getSearchURLForLocale(locale string) string {
	s.requestGet("seller_slug")

	params := cloneParams(s.params.values)

	return s.svc.config.Service.HostURL + s.composeSearchPath(locale, params) + s.composeSearchParams(params)
}

// getSearchURLWithout renders the canonical URL with one parameter
// removed; used for filter reset links.
func (s *searchContext) getSearchURLWithout(param string) string {
	params := cloneParams(s.params.values)
	delete(params, param)
	delete(params, "page")

	return s.svc.config.Service.HostURL + s.composeSearchPath(s.client.locale, params) + s.composeSearchParams(params)
}

// getSearchURLWith renders the canonical URL with one parameter set to
// the given values; used for facet value links.
func (s *searchContext) getSearchURLWith(param string, values []string) string {
	params := cloneParams(s.params.values)
	params[param] = values
	delete(params, "page")

	return s.svc.config.Service.HostURL + s.composeSearchPath(s.client.locale, params) + s.composeSearchParams(params)
}

// getPagerURLTemplate renders the canonical URL with the page number
// left as a fill-in pattern.
func (s *searchContext) getPagerURLTemplate() string {
	params := cloneParams(s.params.values)
	params["page"] = []string{pagerPagePattern}

	path := s.composeSearchPath(s.client.locale, params)

	values := url.Values{}
	if text := firstElementOf(params["q"]); text != "" {
		values.Set("query", text)
	}
	if sortKey := firstElementOf(params["sort"]); sortKey != "" && sortKey != sortRelevancy {
		values.Set("sort", sortKey)
	}
	for _, param := range []string{"price_from", "price_to", "year_from", "year_to"} {
		if value := firstElementOf(params[param]); value != "" {
			values.Set(param, value)
		}
	}

	qs := values.Encode()
	if qs != "" {
		qs = "&" + qs
	}

	// page goes first so the pattern survives url encoding
	return s.svc.config.Service.HostURL + path + "?page=" + pagerPagePattern + qs
}

// getAlternateURLs renders the canonical URL in every supported locale.
func (s *searchContext) getAlternateURLs() map[string]string {
	alternates := make(map[string]string)

	for _, locale := range s.svc.config.Service.Locales {
		alternates[locale] = s.getSearchURLForLocale(locale)
	}

	return alternates
}

// getSearchQueryText renders a human-readable summary of the current
// search: free text, category, makes and countries.
func (s *searchContext) getSearchQueryText() string {
	var parts []string

	if text := s.params.get("q"); text != "" {
		parts = append(parts, text)
	}

	if category := s.selectedCategory(); category != nil {
		parts = append(parts, s.svc.categoryName(category, s.client.locale))
	}

	for _, token := range s.params.values["make"] {
		name := token
		if m := s.svc.makeBySlug(token); m != nil {
			name = m.Name
		}
		parts = append(parts, titleCase(name))
	}

	for _, code := range s.params.values["country"] {
		parts = append(parts, s.countryDisplayName(code, s.client.locale))
	}

	return strings.Join(parts, " ")
}

type searchSort struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
	URL      string `json:"url"`
}

// getResultSorts renders the available sort options with selection
// state and links.
func (s *searchContext) getResultSorts() []searchSort {
	sorts := make([]searchSort, 0, len(resultSortOptions))

	for _, option := range resultSortOptions {
		entry := searchSort{
			Key:      option.key,
			Label:    s.client.localize(option.labelID),
			Selected: option.key == s.sort,
		}

		if option.key == sortRelevancy {
			entry.URL = s.getSearchURLWithout("sort")
		} else {
			entry.URL = s.getSearchURLWith("sort", []string{option.key})
		}

		sorts = append(sorts, entry)
	}

	return sorts
}

func formatInt64(n int64) string {
	return strconv.FormatInt(n, 10)
}
