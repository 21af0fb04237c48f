package main

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/pflikweert/offer-search-ws/internal/solr"
)

// facetCache keeps the site-wide category counts warm so the landing
// pages never pay for the facet query per request. The counts are
// written by the refresh goroutine and read per request, hence the
// lock.
type facetCache struct {
	searchCtx       *searchContext
	refreshInterval int

	countsLock    sync.RWMutex
	currentCounts []solr.FacetCount
}

func newFacetCache(svc *serviceContext, interval int) *facetCache {
	f := facetCache{
		refreshInterval: interval,
	}

	// create a detached search context for background refreshes

	c := clientContext{}
	c.init(svc, nil)

	s := searchContext{}
	s.init(svc, &c)

	f.searchCtx = &s

	go f.monitorFacets()

	return &f
}

func (f *facetCache) monitorFacets() {
	for {
		f.refreshFacets()
		f.searchCtx.log("[CACHE] refresh scheduled in %d seconds", f.refreshInterval)
		time.Sleep(time.Duration(f.refreshInterval) * time.Second)
	}
}

func (f *facetCache) refreshFacets() {
	log.Printf("[CACHE] refreshing site-wide category facets...")

	counts, err := f.searchCtx.siteWideCategoryCounts()
	if err != nil {
		f.searchCtx.err("[CACHE] query error: %s", err.Error())
		return
	}

	f.storeCounts(counts)
}

func (f *facetCache) storeCounts(counts []solr.FacetCount) {
	f.countsLock.Lock()
	defer f.countsLock.Unlock()

	f.currentCounts = counts
}

func (f *facetCache) getCategoryCounts() ([]solr.FacetCount, error) {
	f.countsLock.RLock()
	counts := f.currentCounts
	f.countsLock.RUnlock()

	if counts == nil {
		return nil, errors.New("category facets have not been cached yet")
	}

	return counts, nil
}
