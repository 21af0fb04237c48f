package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pflikweert/offer-search-ws/internal/solr"
)

// solr index fields
const (
	solrFieldOfferID    = "offer_id"
	solrFieldTitle      = "title_en"
	solrFieldQuery      = "query"
	solrFieldCategory   = "category"
	solrFieldMake       = "make"
	solrFieldPrice      = "price"
	solrFieldYear       = "year"
	solrFieldCountry    = "seller_country"
	solrFieldSellerID   = "seller_id"
	solrFieldSellerType = "seller_type"
	solrFieldCreateDate = "create_date"
	solrFieldSortIndex  = "sort_index"
	solrFieldImageCount = "images_count_facet_int"
	solrFieldThumbnail  = "thumbnail"
)

const sortRelevancy = "relevancy"

type resultSortOption struct {
	key     string // inbound sort parameter value
	field   string // solr sort field; empty for the relevancy branch
	order   string
	labelID string
}

var resultSortOptions = []resultSortOption{
	{key: sortRelevancy, labelID: "SortRelevancy"},
	{key: "date-desc", field: solrFieldCreateDate, order: "desc", labelID: "SortDateDesc"},
	{key: "date-asc", field: solrFieldCreateDate, order: "asc", labelID: "SortDateAsc"},
	{key: "price-asc", field: solrFieldPrice, order: "asc", labelID: "SortPriceAsc"},
	{key: "price-desc", field: solrFieldPrice, order: "desc", labelID: "SortPriceDesc"},
	{key: "title-asc", field: solrFieldTitle, order: "asc", labelID: "SortTitleAsc"},
	{key: "title-desc", field: solrFieldTitle, order: "desc", labelID: "SortTitleDesc"},
}

// paramCache remembers every request parameter actually consulted while
// building a query, in consultation order. Canonical URLs are rebuilt
// from exactly this set, so URLs never carry parameters the search
// ignored.
type paramCache struct {
	keys   []string
	values map[string][]string
}

func (pc *paramCache) reset() {
	pc.keys = nil
	pc.values = make(map[string][]string)
}

func (pc *paramCache) put(key string, values []string) {
	if _, exists := pc.values[key]; exists == false {
		pc.keys = append(pc.keys, key)
	}

	pc.values[key] = values
}

func (pc *paramCache) get(key string) string {
	return firstElementOf(pc.values[key])
}

func (pc *paramCache) has(key string) bool {
	_, exists := pc.values[key]

	return exists
}

type searchContext struct {
	svc    *serviceContext
	client *clientContext
	params paramCache
	query  *solr.Query
	result *solr.Result
	page   int
	limit  int
	sort   string
}

type searchResponse struct {
	status int         // http status code
	data   interface{} // data to return as JSON
	err    error       // error, if any
}

func (s *searchContext) init(p *serviceContext, c *clientContext) {
	s.svc = p
	s.client = c
	s.params.reset()
}

func (s *searchContext) log(format string, args ...interface{}) {
	s.client.log(format, args...)
}

func (s *searchContext) err(format string, args ...interface{}) {
	s.client.err(format, args...)
}

// requestGet reads one query parameter and records it in the param
// cache. Multi-valued parameters additionally split on "+".
func (s *searchContext) requestGet(name string) string {
	value := strings.TrimSpace(s.client.ginCtx.Query(name))

	if value != "" {
		s.params.put(name, []string{value})
	}

	return value
}

func (s *searchContext) requestGetAll(name string) []string {
	var values []string

	for _, raw := range s.client.ginCtx.QueryArray(name) {
		for _, part := range strings.Split(raw, "+") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}

	if len(values) > 0 {
		s.params.put(name, values)
	}

	return values
}

func (s *searchContext) requestGetInt(name string, fallback int) int {
	value := s.requestGet(name)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}

	return n
}

// buildQuery translates the inbound request into a select query. Filter
// order is fixed; the rendered raw query is deterministic for a given
// parameter set.
func (s *searchContext) buildQuery() {
	q := s.svc.solr.NewSelectQuery()

	s.applySort(q)

	s.limit = restrictValue("limit", s.requestGetInt("limit", s.svc.config.Search.PageSize), 1, s.svc.config.Search.PageSize)
	if s.limit > s.svc.config.Search.MaxLimit {
		s.limit = s.svc.config.Search.MaxLimit
	}

	s.page = restrictValue("page", s.requestGetInt("page", 1), 1, 1)

	q.SetRows(s.limit)
	q.SetStart((s.page - 1) * s.limit)

	// filters, in fixed order

	for _, param := range []string{"cat_l1", "cat_l2", "cat_l3"} {
		if category := s.requestGet(param); category != "" {
			q.AddQuery(solrFieldCategory, category, solr.OperatorAnd)
		}
	}

	if imageCount := s.requestGet("has_image_count"); imageCount != "" {
		q.AddRangeQuery(solrFieldImageCount, imageCount, nil, solr.OperatorAnd)
	}

	if offerID := s.requestGet("offer_id"); offerID != "" {
		q.AddQuery(solrFieldOfferID, offerID, solr.OperatorAnd)
	}

	if text := s.requestGet("q"); text != "" {
		if tokens := queryTokens(text); len(tokens) > 0 {
			q.AddRawQuery(solrFieldQuery, tokens, solr.OperatorAnd, solr.OperatorAnd)
		}
	}

	if createDate := s.requestGet("create_date"); createDate != "" {
		q.AddRangeQuery(solrFieldCreateDate, createDate, nil, solr.OperatorAnd)
	}

	if makes := s.requestGetAll("make"); len(makes) > 0 {
		if names := s.svc.resolveMakeNames(makes); len(names) > 0 {
			q.AddQuery(solrFieldMake, names, solr.OperatorAnd)
		}
	}

	if countries := s.requestGetAll("country"); len(countries) > 0 {
		q.AddQuery(solrFieldCountry, countries, solr.OperatorAnd)
	}

	if sellerTypes := s.requestGetAll("seller_types"); len(sellerTypes) > 0 {
		q.AddQuery(solrFieldSellerType, sellerTypes, solr.OperatorAnd)
	}

	priceFrom := s.requestGet("price_from")
	priceTo := s.requestGet("price_to")
	if priceFrom != "" || priceTo != "" {
		q.AddRangeQuery(solrFieldPrice, emptyAsNil(priceFrom), emptyAsNil(priceTo), solr.OperatorAnd)
	}

	yearFrom := s.requestGet("year_from")
	yearTo := s.requestGet("year_to")
	if yearFrom != "" || yearTo != "" {
		q.AddRangeQuery(solrFieldYear, emptyAsNil(yearFrom), emptyAsNil(yearTo), solr.OperatorAnd)
	}

	if sellerID := s.requestGet("seller_id"); sellerID != "" {
		q.AddQuery(solrFieldSellerID, sellerID, solr.OperatorAnd)
	}

	// every search carries the same facet/stats set

	q.AddFacetField(solrFieldMake)
	q.AddFacetField(solrFieldCategory)
	q.AddFacetField(solrFieldCountry)

	q.AddStatsField(solrFieldPrice)
	q.AddStatsField(solrFieldYear)

	if s.client.opts.debug == true {
		q.EnableDebug(true)
	}

	s.query = q
}

func emptyAsNil(s string) interface{} {
	if s == "" {
		return nil
	}

	return s
}

// queryTokens splits free text for the query field; hyphenated input
// matches as separate terms.
func queryTokens(text string) []string {
	return nonemptyValues(strings.Fields(strings.ReplaceAll(text, "-", " ")))
}

func (s *searchContext) applySort(q *solr.Query) {
	s.sort = s.requestGet("sort")

	// legacy clients still send the old relevancy spellings
	if s.sort == "sort_index-desc" || s.sort == "score-desc" {
		s.sort = sortRelevancy
	}

	for _, option := range resultSortOptions {
		if option.key == s.sort && option.field != "" {
			q.AddSort(option.field, option.order)
			return
		}
	}

	s.sort = sortRelevancy
	s.applyRelevancyBoosts(q)
}

// applyRelevancyBoosts layers the configured edismax boosts. Each boost
// is gated on its weight so a zero weight removes the clause entirely.
func (s *searchContext) applyRelevancyBoosts(q *solr.Query) {
	rel := s.svc.config.Relevancy

	q.EnableEdismax(true)
	q.AddSort("score", "desc")

	if rel.BoostTitleScore != 0 {
		if tokens := queryTokens(s.requestGet("q")); len(tokens) > 0 {
			escaped := make([]string, 0, len(tokens))
			for _, token := range tokens {
				escaped = append(escaped, solr.EscapePhrase(token))
			}

			clause := fmt.Sprintf("%s:(%s)", solrFieldTitle, strings.Join(escaped, " AND "))
			q.AddRawEdismaxBoostQuery(clause, rel.BoostTitleScore)
		}
	}

	if rel.BoostSellerTypesScore != 0 {
		q.AddRawEdismaxBoostQuery(fmt.Sprintf("%s:[%d TO *]", solrFieldSellerType, solr.SellerTypePremium), rel.BoostSellerTypesScore)
	}

	if rel.BoostPriceScore != 0 {
		q.AddRawEdismaxBoostQuery(solrFieldPrice+":[1000 TO *]", rel.BoostPriceScore)
		q.AddRawEdismaxBoostQuery(solrFieldPrice+":[100 TO 999]", rel.BoostPriceScore/2)
	}

	if rel.BoostHasImageScore != 0 {
		q.AddRawEdismaxBoostQuery(solrFieldImageCount+":[1 TO *]", rel.BoostHasImageScore)
	}

	if rel.BoostCountryScore != 0 && len(rel.BoostCountryList) > 0 {
		q.AddEdismaxBoostQuery(solrFieldCountry, rel.BoostCountryList, rel.BoostCountryScore)
	}

	// recency decay, windowed to the hour so solr can cache the function
	q.SetEdismaxBoost(fmt.Sprintf("recip(ms(NOW/HOUR+1HOUR,%s),%s,%s,%s)",
		solrFieldSortIndex, rel.ReferenceTime, formatFloat(rel.BoostTimeA), formatFloat(rel.BoostTimeB)))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// performQuery executes the built query and classifies failures.
func (s *searchContext) performQuery() searchResponse {
	s.log("**********  START SOLR QUERY  **********")

	if s.client.opts.verbose == true {
		s.log("[SOLR] %s", s.query.CreateRequest().URI())
	}

	result, err := s.svc.solr.Execute(context.Background(), s.query)

	s.log("**********   END SOLR QUERY   **********")

	if err != nil {
		return s.classifyError(err)
	}

	if parseErr := result.Err(); parseErr != nil {
		s.err("response parsing error: %s", parseErr.Error())
		return searchResponse{status: http.StatusInternalServerError, err: parseErr}
	}

	s.result = result

	return searchResponse{status: http.StatusOK}
}

func (s *searchContext) classifyError(err error) searchResponse {
	s.err("query execution error: %s", err.Error())

	var transportErr *solr.TransportError
	if errors.As(err, &transportErr) == true {
		return searchResponse{status: http.StatusServiceUnavailable, err: err}
	}

	return searchResponse{status: http.StatusInternalServerError, err: err}
}

// handleSearchRequest is the full pipeline for /api/search.
func (s *searchContext) handleSearchRequest() searchResponse {
	s.buildQuery()

	if resp := s.performQuery(); resp.err != nil {
		return resp
	}

	data := s.buildSearchResponse()

	return searchResponse{status: http.StatusOK, data: data}
}

type searchResponsePayload struct {
	Offers        searchOffers           `json:"offers"`
	Query         string                 `json:"query"`
	SearchQuery   string                 `json:"searchQuery"`
	Alternates    map[string]string      `json:"alternates"`
	Sorts         []searchSort           `json:"sorts"`
	FilterOptions searchFilterOptions    `json:"filterOptions"`
	Pager         pager                  `json:"pager"`
	Facet         map[string]interface{} `json:"facet"`
	Debug         interface{}            `json:"debug,omitempty"`
}

type searchOffers struct {
	ResultCount int64           `json:"result_count"`
	Offers      []solr.Document `json:"offers"`
}

type searchFilterOptions struct {
	FilterCount  int               `json:"filterCount"`
	ResetFilters map[string]string `json:"resetFilters"`
}

func (s *searchContext) buildSearchResponse() *searchResponsePayload {
	payload := searchResponsePayload{
		Offers: searchOffers{
			ResultCount: s.result.NumFound(),
			Offers:      s.result.Documents(),
		},
		Query:       s.query.GetQuery(),
		SearchQuery: s.getSearchQueryText(),
		Alternates:  s.getAlternateURLs(),
		Sorts:       s.getResultSorts(),
		Pager:       s.generatePager(s.page, s.getPagerURLTemplate(), s.result.NumFound()),
		Facet:       s.getFacetDataResults(),
	}

	payload.FilterOptions = s.getFilterOptions()

	if s.client.opts.debug == true {
		payload.Debug = s.result.Raw()["debug"]
	}

	return &payload
}

func (s *searchContext) getFilterOptions() searchFilterOptions {
	filterParams := []string{"q", "cat_l1", "cat_l2", "cat_l3", "make", "country", "seller_types", "price_from", "price_to", "year_from", "year_to", "seller_id"}

	options := searchFilterOptions{
		ResetFilters: make(map[string]string),
	}

	for _, param := range filterParams {
		if s.params.has(param) == true {
			options.FilterCount++
			options.ResetFilters[param] = s.getSearchURLWithout(param)
		}
	}

	return options
}

// handlePingRequest backs the healthcheck with a zero-row search.
func (s *searchContext) handlePingRequest() searchResponse {
	if err := s.svc.solr.Ping(context.Background()); err != nil {
		s.err("ping error: %s", err.Error())
		return s.classifyError(err)
	}

	return searchResponse{status: http.StatusOK}
}

// handleSuggestRequest backs /api/autocomplete.
func (s *searchContext) handleSuggestRequest() searchResponse {
	text := s.requestGet("q")
	if text == "" {
		return searchResponse{status: http.StatusBadRequest, err: errors.New("missing required parameter: q")}
	}

	query := s.svc.solr.NewSuggestQuery(text)
	query.SetDictionary(s.svc.config.Solr.SuggestDictionary)
	query.SetBuild(boolOptionWithFallback(s.requestGet("rebuild"), false))

	result, err := s.svc.solr.ExecuteSuggest(context.Background(), query)
	if err != nil {
		return s.classifyError(err)
	}

	if parseErr := result.Err(); parseErr != nil {
		s.err("suggest parsing error: %s", parseErr.Error())
		return searchResponse{status: http.StatusInternalServerError, err: parseErr}
	}

	type suggestPayload struct {
		Query       string            `json:"query"`
		NumFound    int64             `json:"num_found"`
		Suggestions []solr.Suggestion `json:"suggestions"`
	}

	return searchResponse{status: http.StatusOK, data: suggestPayload{
		Query:       text,
		NumFound:    result.SuggestionsFound(),
		Suggestions: result.Suggestions(),
	}}
}
