package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"sort"
	"strings"
)

type serviceConfigService struct {
	Port          string   `json:"port,omitempty"`
	AssetsDir     string   `json:"assets_dir,omitempty"`
	HostURL       string   `json:"host_url,omitempty"`
	DefaultLocale string   `json:"default_locale,omitempty"`
	Locales       []string `json:"locales,omitempty"`
}

type serviceConfigSolr struct {
	URL               string `json:"url,omitempty"`
	ConnTimeout       string `json:"conn_timeout,omitempty"`
	ReadTimeout       string `json:"read_timeout,omitempty"`
	SuggestDictionary string `json:"suggest_dictionary,omitempty"`
}

type serviceConfigSearch struct {
	PageSize           int `json:"page_size,omitempty"`
	MaxLimit           int `json:"max_limit,omitempty"`
	CategoryFacetLimit int `json:"category_facet_limit,omitempty"`
	FacetCacheInterval int `json:"facet_cache_interval,omitempty"`
	PremiumMinPrice    int `json:"premium_min_price,omitempty"`
	SimilarOfferCount  int `json:"similar_offer_count,omitempty"`
	LatestPremiumCount int `json:"latest_premium_count,omitempty"`
}

type serviceConfigRelevancy struct {
	BoostTitleScore       float64  `json:"boost_title_score,omitempty"`
	BoostHasImageScore    float64  `json:"boost_has_image_score,omitempty"`
	BoostPriceScore       float64  `json:"boost_price_score,omitempty"`
	BoostSellerTypesScore float64  `json:"boost_seller_types_score,omitempty"`
	BoostCountryScore     float64  `json:"boost_country_score,omitempty"`
	BoostCountryList      []string `json:"boost_country_list,omitempty"`
	BoostTimeA            float64  `json:"boost_time_a,omitempty"`
	BoostTimeB            float64  `json:"boost_time_b,omitempty"`
	ReferenceTime         string   `json:"reference_time,omitempty"`
}

type serviceConfigMake struct {
	ID   int    `json:"id,omitempty"`
	Slug string `json:"slug,omitempty"`
	Name string `json:"name,omitempty"`
}

type serviceConfigCategory struct {
	ID       int               `json:"id,omitempty"`
	ParentID int               `json:"parent_id,omitempty"`
	Level    int               `json:"level,omitempty"`
	Slugs    map[string]string `json:"slugs,omitempty"` // locale -> slug
	Names    map[string]string `json:"names,omitempty"` // locale -> display name
}

type serviceConfig struct {
	Service    serviceConfigService    `json:"service,omitempty"`
	Solr       serviceConfigSolr       `json:"solr,omitempty"`
	Search     serviceConfigSearch     `json:"search,omitempty"`
	Relevancy  serviceConfigRelevancy  `json:"relevancy,omitempty"`
	Makes      []serviceConfigMake     `json:"makes,omitempty"`
	Categories []serviceConfigCategory `json:"categories,omitempty"`
	Rates      map[string]float64      `json:"rates,omitempty"` // currency -> EUR exchange rate
}

func getSortedJSONEnvVars() []string {
	var keys []string

	for _, keyval := range os.Environ() {
		key := strings.Split(keyval, "=")[0]
		if strings.HasPrefix(key, "OFFER_SEARCH_WS_JSON_") {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)

	return keys
}

func loadConfig() *serviceConfig {
	cfg := serviceConfig{}

	// json configs

	envs := getSortedJSONEnvVars()

	valid := true

	for _, env := range envs {
		log.Printf("[CONFIG] loading %s ...", env)
		if val := os.Getenv(env); val != "" {
			dec := json.NewDecoder(bytes.NewReader([]byte(val)))
			dec.DisallowUnknownFields()

			if err := dec.Decode(&cfg); err != nil {
				log.Printf("error decoding %s: %s", env, err.Error())
				valid = false
			}
		}
	}

	if valid == false {
		log.Printf("exiting due to json decode error(s) above")
		os.Exit(1)
	}

	// optional convenience overrides to simplify deployment config
	if url := os.Getenv("OFFER_SEARCH_WS_SOLR_URL"); url != "" {
		cfg.Solr.URL = url
	}

	if port := os.Getenv("OFFER_SEARCH_WS_PORT"); port != "" {
		cfg.Service.Port = port
	}

	applyConfigDefaults(&cfg)

	bytes, err := json.Marshal(cfg)
	if err != nil {
		log.Printf("error encoding service config json: %s", err.Error())
		os.Exit(1)
	}

	log.Printf("[CONFIG] composite json:")
	log.Printf("\n%s", string(bytes))

	return &cfg
}

func applyConfigDefaults(cfg *serviceConfig) {
	if cfg.Service.Port == "" {
		cfg.Service.Port = "8080"
	}

	if cfg.Service.DefaultLocale == "" {
		cfg.Service.DefaultLocale = "en"
	}

	if len(cfg.Service.Locales) == 0 {
		cfg.Service.Locales = []string{"en"}
	}

	if cfg.Solr.SuggestDictionary == "" {
		cfg.Solr.SuggestDictionary = "mySuggester"
	}

	if cfg.Search.PageSize == 0 {
		cfg.Search.PageSize = 16
	}

	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}

	if cfg.Search.CategoryFacetLimit == 0 {
		cfg.Search.CategoryFacetLimit = 200
	}

	if cfg.Search.FacetCacheInterval == 0 {
		cfg.Search.FacetCacheInterval = 300
	}

	if cfg.Search.PremiumMinPrice == 0 {
		cfg.Search.PremiumMinPrice = 1000
	}

	if cfg.Search.SimilarOfferCount == 0 {
		cfg.Search.SimilarOfferCount = 6
	}

	if cfg.Search.LatestPremiumCount == 0 {
		cfg.Search.LatestPremiumCount = 6
	}

	rel := &cfg.Relevancy

	if rel.BoostTitleScore == 0 {
		rel.BoostTitleScore = 1.0
	}

	if rel.BoostHasImageScore == 0 {
		rel.BoostHasImageScore = 10.0
	}

	if rel.BoostPriceScore == 0 {
		rel.BoostPriceScore = 4.0
	}

	if rel.BoostSellerTypesScore == 0 {
		rel.BoostSellerTypesScore = 0.5
	}

	if rel.BoostCountryScore == 0 {
		rel.BoostCountryScore = 0.1
	}

	if len(rel.BoostCountryList) == 0 {
		rel.BoostCountryList = []string{"NL", "DE", "BE", "AT", "ES", "IT", "FR", "DA"}
	}

	if rel.BoostTimeA == 0 {
		rel.BoostTimeA = 1.5
	}

	if rel.BoostTimeB == 0 {
		rel.BoostTimeB = 0.05
	}

	// reciprocal of six months in milliseconds
	if rel.ReferenceTime == "" {
		rel.ReferenceTime = "6.33e-11"
	}
}
