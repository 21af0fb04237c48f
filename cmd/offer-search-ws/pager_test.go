package main

import (
	"testing"
)

func pagerPages(pg pager) []int {
	pages := make([]int, 0, len(pg.Pages))
	for _, link := range pg.Pages {
		pages = append(pages, link.Page)
	}

	return pages
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

const testPagerTemplate = "https://www.example.com/en/search/?page={page}"

func TestGeneratePagerFirstPage(t *testing.T) {
	s := testSearchContext(t, testService(t), "")

	pg := s.generatePager(1, testPagerTemplate, 100)

	if pg.TotalPages != 7 {
		t.Errorf("got %d total pages, want 7", pg.TotalPages)
	}

	if got := pagerPages(pg); equalInts(got, []int{1, 2, 3, 4, 5, 6, 7}) == false {
		t.Errorf("got pages %v", got)
	}

	if pg.Previous != nil {
		t.Errorf("unexpected previous link on first page")
	}

	if pg.Next == nil || pg.Next.Page != 2 || pg.Next.Rel != "" {
		t.Errorf("got next %+v, want plain page 2", pg.Next)
	}

	if pg.Pages[0].URL != "https://www.example.com/en/search/?page=1" {
		t.Errorf("got url [%s]", pg.Pages[0].URL)
	}
}

func TestGeneratePagerMidpointJumps(t *testing.T) {
	s := testSearchContext(t, testService(t), "")

	// 800 results, 50 pages, current 20
	pg := s.generatePager(20, testPagerTemplate, 800)

	if got := pagerPages(pg); equalInts(got, []int{1, 9, 18, 19, 20, 21, 22, 36, 50}) == false {
		t.Errorf("got pages %v", got)
	}

	if pg.Previous == nil || pg.Previous.Page != 19 {
		t.Errorf("got previous %+v", pg.Previous)
	}

	if pg.Next == nil || pg.Next.Page != 21 {
		t.Errorf("got next %+v", pg.Next)
	}
}

func TestGeneratePagerBoundaryRels(t *testing.T) {
	s := testSearchContext(t, testService(t), "")

	pg := s.generatePager(2, testPagerTemplate, 100)

	if pg.Previous == nil || pg.Previous.Rel != "first" {
		t.Errorf("got previous %+v, want rel first", pg.Previous)
	}

	pg = s.generatePager(6, testPagerTemplate, 100)

	if pg.Next == nil || pg.Next.Rel != "last" {
		t.Errorf("got next %+v, want rel last", pg.Next)
	}
}

func TestGeneratePagerSinglePage(t *testing.T) {
	s := testSearchContext(t, testService(t), "")

	pg := s.generatePager(1, testPagerTemplate, 10)

	if len(pg.Pages) != 0 || pg.Previous != nil || pg.Next != nil {
		t.Errorf("got %d pages for a single-page result set", len(pg.Pages))
	}
}

func TestGeneratePagerClampsCurrentPage(t *testing.T) {
	s := testSearchContext(t, testService(t), "")

	pg := s.generatePager(99, testPagerTemplate, 100)

	if pg.CurrentPage != 7 {
		t.Errorf("got current page %d, want clamp to 7", pg.CurrentPage)
	}
}
