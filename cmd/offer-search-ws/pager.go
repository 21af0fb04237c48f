package main

import (
	"strconv"
	"strings"
)

const pagerPagePattern = "{page}"
const pagerWindow = 5

type pagerLink struct {
	Label   string `json:"label"`
	Page    int    `json:"page"`
	URL     string `json:"url"`
	Current bool   `json:"current,omitempty"`
	Rel     string `json:"rel,omitempty"`
}

type pager struct {
	CurrentPage  int         `json:"current_page"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int64       `json:"total_results"`
	PageSize     int         `json:"page_size"`
	Previous     *pagerLink  `json:"previous,omitempty"`
	Next         *pagerLink  `json:"next,omitempty"`
	Pages        []pagerLink `json:"pages"`
}

func pageLink(urlTemplate string, page, currentPage int) pagerLink {
	return pagerLink{
		Label:   strconv.Itoa(page),
		Page:    page,
		URL:     strings.ReplaceAll(urlTemplate, pagerPagePattern, strconv.Itoa(page)),
		Current: page == currentPage,
	}
}

// generatePager builds the pagination view-model: a window of up to
// five contiguous page links around the current page, jump links to the
// boundaries and their midpoints when the window clips, and
// previous/next links annotated when they sit on a boundary.
func (s *searchContext) generatePager(currentPage int, urlTemplate string, totalResults int64) pager {
	pageSize := s.svc.config.Search.PageSize

	totalPages := int((totalResults + int64(pageSize) - 1) / int64(pageSize))

	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages && totalPages > 0 {
		currentPage = totalPages
	}

	pg := pager{
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		TotalResults: totalResults,
		PageSize:     pageSize,
		Pages:        []pagerLink{},
	}

	if totalPages <= 1 {
		return pg
	}

	// contiguous window clamped to the valid range
	first := currentPage - pagerWindow/2
	if first < 1 {
		first = 1
	}

	last := first + pagerWindow - 1
	if last > totalPages {
		last = totalPages
		first = last - pagerWindow + 1
		if first < 1 {
			first = 1
		}
	}

	if first > 1 {
		pg.Pages = append(pg.Pages, pageLink(urlTemplate, 1, currentPage))

		// a long jump back also gets a midpoint link
		if currentPage > 9 {
			midpoint := (1 + first) / 2
			if midpoint > 1 && midpoint < first {
				pg.Pages = append(pg.Pages, pageLink(urlTemplate, midpoint, currentPage))
			}
		}
	}

	for page := first; page <= last; page++ {
		pg.Pages = append(pg.Pages, pageLink(urlTemplate, page, currentPage))
	}

	if last < totalPages {
		midpoint := (last + totalPages) / 2
		if midpoint > last && midpoint < totalPages {
			pg.Pages = append(pg.Pages, pageLink(urlTemplate, midpoint, currentPage))
		}

		pg.Pages = append(pg.Pages, pageLink(urlTemplate, totalPages, currentPage))
	}

	if currentPage > 1 {
		link := pageLink(urlTemplate, currentPage-1, currentPage)
		if link.Page == 1 {
			link.Rel = "first"
		}
		pg.Previous = &link
	}

	if currentPage < totalPages {
		link := pageLink(urlTemplate, currentPage+1, currentPage)
		if link.Page == totalPages {
			link.Rel = "last"
		}
		pg.Next = &link
	}

	return pg
}
