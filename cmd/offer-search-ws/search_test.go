package main

import (
	"math/rand"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pflikweert/offer-search-ws/internal/solr"
	"golang.org/x/text/language"
)

func testService(t *testing.T) *serviceContext {
	t.Helper()

	cfg := &serviceConfig{}
	applyConfigDefaults(cfg)

	cfg.Service.HostURL = "https://www.example.com"
	cfg.Service.Locales = []string{"en", "nl"}
	cfg.Service.DefaultLocale = "en"

	cfg.Makes = []serviceConfigMake{
		{ID: 1, Slug: "ackermann", Name: "Ackermann"},
		{ID: 2, Slug: "mercedes-benz", Name: "Mercedes-Benz"},
	}

	cfg.Categories = []serviceConfigCategory{
		{ID: 10, Level: 1,
			Slugs: map[string]string{"en": "transport", "nl": "transport"},
			Names: map[string]string{"en": "Transport", "nl": "Transport"}},
		{ID: 11, ParentID: 10, Level: 2,
			Slugs: map[string]string{"en": "semi-trailers", "nl": "opleggers"},
			Names: map[string]string{"en": "Semi-trailers", "nl": "Opleggers"}},
	}

	cfg.Rates = map[string]float64{"USD": 1.08, "GBP": 0.84}

	p := serviceContext{
		config:       cfg,
		randomSource: rand.New(rand.NewSource(1)),
	}

	bundle := i18n.NewBundle(language.English)
	for id, text := range map[string]string{
		"SortRelevancy":       "Most relevant",
		"SortDateDesc":        "Newest first",
		"SortDateAsc":         "Oldest first",
		"SortPriceAsc":        "Price: low to high",
		"SortPriceDesc":       "Price: high to low",
		"SortTitleAsc":        "Title: A to Z",
		"SortTitleDesc":       "Title: Z to A",
		msgURLSegmentMake:     "make",
		msgURLSegmentLocation: "location",
	} {
		bundle.AddMessages(language.English, &i18n.Message{ID: id, Other: text})
		bundle.AddMessages(language.Dutch, &i18n.Message{ID: id, Other: text})
	}
	p.translations = serviceTranslations{bundle: bundle}

	p.initLookups()

	endpoint, err := solr.ParseEndpoint("http://localhost:8983/solr/offers")
	if err != nil {
		t.Fatalf("endpoint: %s", err.Error())
	}
	p.solr = solr.NewClient(endpoint)

	return &p
}

func testSearchContext(t *testing.T, p *serviceContext, rawQuery string) *searchContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	target := "/api/search"
	if rawQuery != "" {
		target = target + "?" + rawQuery
	}
	ctx.Request = httptest.NewRequest("GET", target, nil)

	c := clientContext{}
	c.init(p, ctx)

	s := searchContext{}
	s.init(p, &c)

	return &s
}

func TestBuildQueryDefaults(t *testing.T) {
	s := testSearchContext(t, testService(t), "")

	s.buildQuery()

	if s.page != 1 || s.limit != 16 {
		t.Errorf("got page %d limit %d, want 1 and 16", s.page, s.limit)
	}

	req := s.query.CreateRequest()

	if got := req.GetParam("q"); got != "*:*" {
		t.Errorf("got q [%s], want match-all", got)
	}

	if got := req.GetParam("rows"); got != "16" {
		t.Errorf("got rows [%s], want 16", got)
	}

	if got := req.GetParam("defType"); got != "edismax" {
		t.Errorf("got defType [%s], want edismax", got)
	}

	if got := req.GetParam("sort"); got != "score desc" {
		t.Errorf("got sort [%s], want score desc", got)
	}

	if got := req.GetParams("facet.field"); len(got) != 3 {
		t.Errorf("got %d facet fields, want 3", len(got))
	}

	if got := req.GetParams("stats.field"); len(got) != 2 {
		t.Errorf("got %d stats fields, want 2", len(got))
	}
}

func TestBuildQueryPagination(t *testing.T) {
	s := testSearchContext(t, testService(t), "page=5")

	s.buildQuery()

	req := s.query.CreateRequest()

	if got := req.GetParam("start"); got != "64" {
		t.Errorf("got start [%s], want 64", got)
	}

	if got := req.GetParam("rows"); got != "16" {
		t.Errorf("got rows [%s], want 16", got)
	}
}

func TestBuildQueryLimitClamped(t *testing.T) {
	s := testSearchContext(t, testService(t), "limit=5000")

	s.buildQuery()

	if s.limit != 100 {
		t.Errorf("got limit %d, want the 100 cap", s.limit)
	}
}

func TestBuildQueryCountryFilter(t *testing.T) {
	s := testSearchContext(t, testService(t), "country=NL&country=FR")

	s.buildQuery()

	if got := s.query.GetQuery(); got != `seller_country:("NL" OR "FR")` {
		t.Errorf("got query [%s]", got)
	}
}

func TestBuildQueryTextTokens(t *testing.T) {
	s := testSearchContext(t, testService(t), "q=ackermann-dxt")

	s.buildQuery()

	if got := s.query.GetQuery(); got != `query:("ackermann" AND "dxt")` {
		t.Errorf("got query [%s]", got)
	}
}

func TestBuildQueryMakeResolution(t *testing.T) {
	// numeric id, slug, and an unresolvable token
	s := testSearchContext(t, testService(t), "make=1&make=mercedes-benz&make=bogus")

	s.buildQuery()

	if got := s.query.GetQuery(); got != `make:("Ackermann" OR "Mercedes-Benz")` {
		t.Errorf("got query [%s]", got)
	}
}

func TestBuildQueryFilterOrder(t *testing.T) {
	s := testSearchContext(t, testService(t), "country=NL&cat_l1=10&q=tipper&price_from=500")

	s.buildQuery()

	got := s.query.GetQuery()

	order := []string{"category:", "query:", "seller_country:", "price:"}

	last := -1
	for _, prefix := range order {
		idx := strings.Index(got, prefix)
		if idx < 0 {
			t.Fatalf("query [%s] missing clause %s", got, prefix)
		}
		if idx < last {
			t.Errorf("query [%s] has %s out of order", got, prefix)
		}
		last = idx
	}
}

func TestApplySortFieldOption(t *testing.T) {
	s := testSearchContext(t, testService(t), "sort=price-asc")

	s.buildQuery()

	req := s.query.CreateRequest()

	if got := req.GetParam("sort"); got != "price asc" {
		t.Errorf("got sort [%s], want price asc", got)
	}

	if got := req.GetParam("defType"); got != "" {
		t.Errorf("got defType [%s], want none for a field sort", got)
	}
}

func TestApplySortLegacySpellings(t *testing.T) {
	for _, legacy := range []string{"sort_index-desc", "score-desc"} {
		s := testSearchContext(t, testService(t), "sort="+legacy)

		s.buildQuery()

		if s.sort != sortRelevancy {
			t.Errorf("sort [%s]: got %s, want relevancy", legacy, s.sort)
		}
	}
}

func TestRelevancyBoosts(t *testing.T) {
	s := testSearchContext(t, testService(t), "q=tractor")

	s.buildQuery()

	req := s.query.CreateRequest()

	boosts := req.GetParams("bq")

	want := []string{
		`title_en:("tractor")^1`,
		`seller_type:[1 TO *]^0.5`,
		`price:[1000 TO *]^4`,
		`price:[100 TO 999]^2`,
		`images_count_facet_int:[1 TO *]^10`,
	}

	for _, clause := range want {
		if sliceContainsString(boosts, clause, false) == false {
			t.Errorf("bq %v missing clause [%s]", boosts, clause)
		}
	}

	if got := req.GetParam("boost"); strings.HasPrefix(got, "recip(ms(NOW/HOUR+1HOUR,sort_index)") == false {
		t.Errorf("got boost [%s], want recency decay", got)
	}
}

func TestQueryTokensHyphens(t *testing.T) {
	got := queryTokens("semi-trailer  tipper")

	if len(got) != 3 || got[0] != "semi" || got[1] != "trailer" || got[2] != "tipper" {
		t.Errorf("got tokens %v", got)
	}
}

func TestFilterOptionsCountsConsultedParams(t *testing.T) {
	s := testSearchContext(t, testService(t), "q=tipper&country=NL&year_from=2015")

	s.buildQuery()

	options := s.getFilterOptions()

	if options.FilterCount != 3 {
		t.Errorf("got filter count %d, want 3", options.FilterCount)
	}

	for _, param := range []string{"q", "country", "year_from"} {
		if options.ResetFilters[param] == "" {
			t.Errorf("missing reset link for %s", param)
		}
	}
}
