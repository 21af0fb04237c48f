package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (p *serviceContext) searchHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(p, c)

	s := searchContext{}
	s.init(p, &cl)

	cl.logRequest()
	resp := s.handleSearchRequest()
	cl.logResponse(resp)

	if resp.err != nil {
		c.JSON(resp.status, gin.H{"error": resp.err.Error()})
		return
	}

	c.JSON(resp.status, resp.data)
}

func (p *serviceContext) autocompleteHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(p, c)

	s := searchContext{}
	s.init(p, &cl)

	cl.logRequest()
	resp := s.handleSuggestRequest()
	cl.logResponse(resp)

	if resp.err != nil {
		c.JSON(resp.status, gin.H{"error": resp.err.Error()})
		return
	}

	c.JSON(resp.status, resp.data)
}

func (p *serviceContext) premiumHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(p, c)

	s := searchContext{}
	s.init(p, &cl)

	cl.logRequest()
	resp := s.handlePremiumRequest()
	cl.logResponse(resp)

	if resp.err != nil {
		c.JSON(resp.status, gin.H{"error": resp.err.Error()})
		return
	}

	c.JSON(resp.status, resp.data)
}

func (p *serviceContext) similarHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(p, c)

	s := searchContext{}
	s.init(p, &cl)

	cl.logRequest()
	resp := s.handleSimilarRequest()
	cl.logResponse(resp)

	if resp.err != nil {
		c.JSON(resp.status, gin.H{"error": resp.err.Error()})
		return
	}

	c.JSON(resp.status, resp.data)
}

func (p *serviceContext) categoriesHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(p, c)

	s := searchContext{}
	s.init(p, &cl)

	cl.logRequest()
	resp := s.handleCategoryFacetRequest()
	cl.logResponse(resp)

	if resp.err != nil {
		c.JSON(resp.status, gin.H{"error": resp.err.Error()})
		return
	}

	c.JSON(resp.status, resp.data)
}

func (p *serviceContext) ignoreHandler(c *gin.Context) {
}

func (p *serviceContext) versionHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(p, c)

	c.JSON(http.StatusOK, p.version)
}

func (p *serviceContext) healthCheckHandler(c *gin.Context) {
	cl := clientContext{}
	cl.init(p, c)

	s := searchContext{}
	s.init(p, &cl)

	ping := s.handlePingRequest()

	// build response

	internalServiceError := false

	type hcResp struct {
		Healthy bool   `json:"healthy"`
		Message string `json:"message,omitempty"`
	}

	hcSolr := hcResp{Healthy: true}
	if ping.err != nil {
		internalServiceError = true
		hcSolr = hcResp{Healthy: false, Message: ping.err.Error()}
	}

	hcMap := make(map[string]hcResp)
	hcMap["solr"] = hcSolr

	hcStatus := http.StatusOK
	if internalServiceError == true {
		hcStatus = http.StatusInternalServerError
	}

	c.JSON(hcStatus, hcMap)
}
