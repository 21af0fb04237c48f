package main

import (
	"strconv"
	"strings"
)

// resolveMakeNames maps inbound make tokens to the canonical names the
// index stores. Numeric tokens are legacy make ids and resolve to slugs
// first. Tokens that resolve to nothing are dropped.
func (p *serviceContext) resolveMakeNames(tokens []string) []string {
	var names []string

	for _, token := range tokens {
		slug := token

		if isNumeric(token) == true {
			id, _ := strconv.Atoi(token)
			m := p.maps.makesByID[id]
			if m == nil {
				continue
			}
			slug = m.Slug
		}

		m := p.maps.makesBySlug[strings.ToLower(slug)]
		if m == nil {
			continue
		}

		names = append(names, m.Name)
	}

	return uniqueStrings(names)
}

// makeBySlug returns the make record for a slug, or nil.
func (p *serviceContext) makeBySlug(slug string) *serviceConfigMake {
	return p.maps.makesBySlug[strings.ToLower(slug)]
}

// makeByName finds a make record by its canonical index name.
func (p *serviceContext) makeByName(name string) *serviceConfigMake {
	for i := range p.config.Makes {
		if strings.EqualFold(p.config.Makes[i].Name, name) == true {
			return &p.config.Makes[i]
		}
	}

	return nil
}

// categoryByID returns the category record for an id string, or nil.
func (p *serviceContext) categoryByID(id string) *serviceConfigCategory {
	if isNumeric(id) == false {
		return nil
	}

	n, _ := strconv.Atoi(id)

	return p.maps.categoriesByID[n]
}

// categoryName renders a category's display name for a locale, falling
// back to the default locale.
func (p *serviceContext) categoryName(c *serviceConfigCategory, locale string) string {
	if c == nil {
		return ""
	}

	if name := c.Names[locale]; name != "" {
		return name
	}

	return c.Names[p.config.Service.DefaultLocale]
}

// categorySlugPath renders the slug path from the top-level ancestor
// down to the category itself, e.g. "transport/semi-trailers/tippers".
func (p *serviceContext) categorySlugPath(c *serviceConfigCategory, locale string) string {
	if c == nil {
		return ""
	}

	var slugs []string

	for current := c; current != nil; current = p.maps.categoriesByID[current.ParentID] {
		slug := current.Slugs[locale]
		if slug == "" {
			slug = current.Slugs[p.config.Service.DefaultLocale]
		}

		slugs = append([]string{slug}, slugs...)

		if current.ParentID == 0 {
			break
		}
	}

	return strings.Join(slugs, "/")
}

// selectedCategory returns the deepest category filter on the request.
func (s *searchContext) selectedCategory() *serviceConfigCategory {
	for _, param := range []string{"cat_l3", "cat_l2", "cat_l1"} {
		if id := s.params.get(param); id != "" {
			if c := s.svc.categoryByID(id); c != nil {
				return c
			}
		}
	}

	return nil
}
