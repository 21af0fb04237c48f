package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/pflikweert/offer-search-ws/internal/solr"
)

// paid seller tiers eligible for the premium carousel
var paidSellerTypes = []string{
	strconv.Itoa(solr.SellerTypePremium),
	strconv.Itoa(solr.SellerTypePackageBronze),
	strconv.Itoa(solr.SellerTypePackageSilver),
	strconv.Itoa(solr.SellerTypePackageGold),
}

type offerListPayload struct {
	ResultCount int64           `json:"result_count"`
	OfferIDs    []string        `json:"offer_ids"`
	Offers      []solr.Document `json:"offers"`
}

func offerList(result *solr.Result) offerListPayload {
	docs := result.Documents()

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.GetString(solrFieldOfferID))
	}

	return offerListPayload{
		ResultCount: result.NumFound(),
		OfferIDs:    ids,
		Offers:      docs,
	}
}

// handlePremiumRequest serves a randomized carousel of recent paid
// offers in a category.
func (s *searchContext) handlePremiumRequest() searchResponse {
	categoryID := s.requestGet("category")
	if categoryID == "" {
		return searchResponse{status: http.StatusBadRequest, err: errors.New("missing required parameter: category")}
	}

	minPrice := s.requestGetInt("min_price", s.svc.config.Search.PremiumMinPrice)

	q := s.svc.solr.NewSelectQuery()
	q.SetRows(100)
	q.AddSort(solrFieldCreateDate, "desc")
	q.AddQuery(solrFieldCategory, categoryID, solr.OperatorAnd)
	q.AddRangeQuery(solrFieldPrice, minPrice, nil, solr.OperatorAnd)
	q.AddRangeQuery(solrFieldImageCount, 1, nil, solr.OperatorAnd)
	q.AddQuery(solrFieldSellerType, paidSellerTypes, solr.OperatorAnd)

	s.query = q

	if resp := s.performQuery(); resp.err != nil {
		return resp
	}

	s.result.ShuffleDocuments()
	s.result.BoostSellerTypes(false, 2, 1)
	s.result.LimitDocuments(s.svc.config.Search.LatestPremiumCount)

	return searchResponse{status: http.StatusOK, data: offerList(s.result)}
}

// handleSimilarRequest serves offers similar to a given one: same
// category and make when that yields enough, otherwise the engine's
// more-like-this suggestions for the source offer.
func (s *searchContext) handleSimilarRequest() searchResponse {
	categoryID := s.requestGet("category")
	offerID := s.requestGet("offer_id")
	if categoryID == "" || offerID == "" {
		return searchResponse{status: http.StatusBadRequest, err: errors.New("missing required parameters: category, offer_id")}
	}

	makeName := s.requestGet("make")
	title := s.requestGet("title")
	wanted := s.svc.config.Search.SimilarOfferCount

	q := s.svc.solr.NewSelectQuery()
	q.SetRows(100)
	q.AddSort(solrFieldSortIndex, "desc")
	q.AddQuery(solrFieldCategory, categoryID, solr.OperatorAnd)

	if makeName != "" {
		q.AddQuery(solrFieldMake, makeName, solr.OperatorAnd)
	}

	q.EnableMoreLikeThis(true)

	s.query = q

	if resp := s.performQuery(); resp.err != nil {
		return resp
	}

	if len(s.result.Documents()) > wanted {
		shapeSimilarOffers(s.result, offerID, title)
	} else {
		// thin category; fall back to the engine's own similarity take
		s.result.ReplaceWithMoreLikeThis(offerID)
	}

	s.result.LimitDocuments(wanted)

	return searchResponse{status: http.StatusOK, data: offerList(s.result)}
}

// shapeSimilarOffers trims a deep category result down to a boosted
// shortlist.  Free sellers are filtered out of the shortlist.  With a
// source title, the best 30 matches by title similarity are kept
// before boosting; without one, the pool is shuffled instead.
func shapeSimilarOffers(result *solr.Result, offerID string, title string) {
	result.FilterDocuments(solrFieldOfferID, offerID)
	result.FilterDocuments(solrFieldImageCount, "0")

	if title != "" {
		result.OrderBySimilarity(title, solrFieldTitle)
		result.LimitDocuments(30)
	} else {
		result.ShuffleDocuments()
	}

	result.BoostSellerTypes(true, 2, 1)
}

// handleCategoryFacetRequest serves the cached site-wide category
// counts.
func (s *searchContext) handleCategoryFacetRequest() searchResponse {
	counts, err := s.svc.facetCache.getCategoryCounts()
	if err != nil {
		return searchResponse{status: http.StatusServiceUnavailable, err: err}
	}

	return searchResponse{status: http.StatusOK, data: counts}
}

// siteWideCategoryCounts runs the facet-only query behind the category
// cache.
func (s *searchContext) siteWideCategoryCounts() ([]solr.FacetCount, error) {
	q := s.svc.solr.NewSelectQuery()
	q.SetRows(0)
	q.AddFacetField(solrFieldCategory)
	q.SetFacetLimit(solrFieldCategory, s.svc.config.Search.CategoryFacetLimit)

	result, err := s.svc.solr.Execute(context.Background(), q)
	if err != nil {
		return nil, err
	}

	if parseErr := result.Err(); parseErr != nil {
		return nil, parseErr
	}

	return result.GetFacetField(solrFieldCategory), nil
}
