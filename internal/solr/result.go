package solr

import (
	"bytes"
	"encoding/json"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Seller tiers as stored in the seller_type field.
const (
	SellerTypeFree          = 0
	SellerTypePremium       = 1
	SellerTypePackageFree   = 2
	SellerTypePackageBronze = 3
	SellerTypePackageSilver = 4
	SellerTypePackageGold   = 5
)

const sellerTypeField = "seller_type"

// FacetCount is one value/count pair from a facet block, in the order
// the engine returned it.
type FacetCount struct {
	Value string
	Count int
}

// StatsField carries the numeric statistics block for one field.
type StatsField struct {
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
	Count   int64   `mapstructure:"count"`
	Missing int64   `mapstructure:"missing"`
	Sum     float64 `mapstructure:"sum"`
	Mean    float64 `mapstructure:"mean"`
	Stddev  float64 `mapstructure:"stddev"`
}

// Suggestion is one completion from the suggest component.
type Suggestion struct {
	Term    string `json:"term"`
	Weight  int64  `json:"weight"`
	Payload string `json:"payload"`
}

type resultKind int

const (
	resultSelect resultKind = iota
	resultSuggest
)

// Result interprets an engine response. Parsing is lazy and happens at
// most once; every accessor triggers it. Post-processing methods mutate
// the document list in place and keep the raw data map in step, so a
// caller holding Raw() sees the transformed list.
type Result struct {
	response *Response
	kind     resultKind

	dictionary string
	queryText  string

	parsed   bool
	parseErr error

	raw          map[string]interface{}
	numFound     int64
	documents    []Document
	facetFields  map[string][]FacetCount
	facetOrder   []string
	statsFields  map[string]*StatsField
	moreLikeThis map[string][]Document
	suggestions  []Suggestion
	suggestFound int64
}

// NewResult wraps a select response. Failing engine statuses are
// rejected here, before any parsing.
func NewResult(response *Response) (*Result, error) {
	return newResult(response, resultSelect, "", "")
}

// NewSuggestResult wraps a suggest response for the given dictionary
// and input text.
func NewSuggestResult(response *Response, dictionary, queryText string) (*Result, error) {
	return newResult(response, resultSuggest, dictionary, queryText)
}

func newResult(response *Response, kind resultKind, dictionary, queryText string) (*Result, error) {
	if response.StatusCode >= 400 && response.StatusCode < 600 {
		return nil, &EngineError{
			StatusCode:    response.StatusCode,
			StatusMessage: response.StatusMessage,
			Body:          response.Body,
		}
	}

	return &Result{
		response:   response,
		kind:       kind,
		dictionary: dictionary,
		queryText:  queryText,
	}, nil
}

func (r *Result) parse() error {
	if r.parsed == true {
		return r.parseErr
	}

	r.parsed = true

	if err := json.Unmarshal(r.response.Body, &r.raw); err != nil {
		r.parseErr = &DecodeError{Message: err.Error(), Err: err}
		return r.parseErr
	}

	switch r.kind {
	case resultSuggest:
		r.parseSuggest()
	default:
		r.parseSelect()
	}

	return nil
}

func (r *Result) parseSelect() {
	if resp, ok := r.raw["response"].(map[string]interface{}); ok == true {
		if n, isNum := resp["numFound"].(float64); isNum == true {
			r.numFound = int64(n)
		}

		if docs, isList := resp["docs"].([]interface{}); isList == true {
			r.documents = make([]Document, 0, len(docs))
			for _, d := range docs {
				if fields, isMap := d.(map[string]interface{}); isMap == true {
					r.documents = append(r.documents, Document(fields))
				}
			}
		}
	}

	r.facetFields = make(map[string][]FacetCount)
	if fc, ok := r.raw["facet_counts"].(map[string]interface{}); ok == true {
		if ff, isMap := fc["facet_fields"].(map[string]interface{}); isMap == true {
			r.facetOrder = orderedKeys(r.response.Body, "facet_fields")

			for field, block := range ff {
				flat, isList := block.([]interface{})
				if isList == false {
					continue
				}

				// flat alternating [value, count, value, count, ...]
				counts := make([]FacetCount, 0, len(flat)/2)
				for i := 0; i+1 < len(flat); i += 2 {
					value := stringifyField(flat[i])
					count, isNum := flat[i+1].(float64)
					if isNum == false {
						continue
					}
					counts = append(counts, FacetCount{Value: value, Count: int(count)})
				}

				r.facetFields[field] = counts
			}
		}
	}

	r.statsFields = make(map[string]*StatsField)
	if stats, ok := r.raw["stats"].(map[string]interface{}); ok == true {
		if sf, isMap := stats["stats_fields"].(map[string]interface{}); isMap == true {
			for field, block := range sf {
				var decoded StatsField
				if err := mapstructure.Decode(block, &decoded); err == nil {
					r.statsFields[field] = &decoded
				}
			}
		}
	}

	r.moreLikeThis = make(map[string][]Document)
	if mlt, ok := r.raw["moreLikeThis"].(map[string]interface{}); ok == true {
		for id, bucket := range mlt {
			fields, isMap := bucket.(map[string]interface{})
			if isMap == false {
				continue
			}

			docs, isList := fields["docs"].([]interface{})
			if isList == false {
				continue
			}

			similar := make([]Document, 0, len(docs))
			for _, d := range docs {
				if docFields, isDoc := d.(map[string]interface{}); isDoc == true {
					similar = append(similar, Document(docFields))
				}
			}

			r.moreLikeThis[id] = similar
		}
	}
}

func (r *Result) parseSuggest() {
	// a missing suggest path means no completions, not a failure
	suggest, ok := r.raw["suggest"].(map[string]interface{})
	if ok == false {
		return
	}

	dict, ok := suggest[r.dictionary].(map[string]interface{})
	if ok == false {
		return
	}

	entry, ok := dict[r.queryText].(map[string]interface{})
	if ok == false {
		return
	}

	if n, isNum := entry["numFound"].(float64); isNum == true {
		r.suggestFound = int64(n)
	}

	list, ok := entry["suggestions"].([]interface{})
	if ok == false {
		return
	}

	for _, item := range list {
		fields, isMap := item.(map[string]interface{})
		if isMap == false {
			continue
		}

		s := Suggestion{Term: stringifyField(fields["term"])}
		if w, isNum := fields["weight"].(float64); isNum == true {
			s.Weight = int64(w)
		}
		if p, isStr := fields["payload"].(string); isStr == true {
			s.Payload = p
		}

		r.suggestions = append(r.suggestions, s)
	}
}

// orderedKeys walks the raw body and returns the keys of the first
// object appearing under the named key, in document order. JSON object
// decoding into a Go map loses that order.
func orderedKeys(body []byte, objectKey string) []string {
	dec := json.NewDecoder(bytes.NewReader(body))

	depthAfterMatch := -1
	var keys []string

	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		if depthAfterMatch >= 0 {
			switch t := tok.(type) {
			case json.Delim:
				if t == '{' || t == '[' {
					depthAfterMatch++
				} else {
					depthAfterMatch--
					if depthAfterMatch == 0 {
						return keys
					}
				}
			case string:
				if depthAfterMatch == 1 && dec.More() == true {
					keys = append(keys, t)
					// skip the value so it is not mistaken for a key
					var discard json.RawMessage
					if err := dec.Decode(&discard); err != nil {
						return keys
					}
				}
			}
			continue
		}

		if key, isStr := tok.(string); isStr == true && key == objectKey {
			next, nextErr := dec.Token()
			if nextErr != nil {
				break
			}
			if d, isDelim := next.(json.Delim); isDelim == true && d == '{' {
				depthAfterMatch = 1
			}
		}
	}

	return keys
}

// Err surfaces any decode failure without forcing callers to use an
// accessor first.
func (r *Result) Err() error {
	return r.parse()
}

// Raw returns the decoded response body. Post-processing keeps the
// document list inside it synchronized.
func (r *Result) Raw() map[string]interface{} {
	r.parse()

	return r.raw
}

// NumFound returns the total hit count, independent of pagination.
func (r *Result) NumFound() int64 {
	r.parse()

	return r.numFound
}

// Documents returns the current document list in order.
func (r *Result) Documents() []Document {
	r.parse()

	return r.documents
}

// FacetFieldNames returns the facet fields in engine response order.
func (r *Result) FacetFieldNames() []string {
	r.parse()

	return r.facetOrder
}

// GetFacetField returns the ordered value counts for one facet field.
func (r *Result) GetFacetField(field string) []FacetCount {
	r.parse()

	return r.facetFields[field]
}

// GetStatsField returns the statistics block for one field, or nil.
func (r *Result) GetStatsField(field string) *StatsField {
	r.parse()

	return r.statsFields[field]
}

// MoreLikeThis returns the similar-document bucket for a source
// document id.
func (r *Result) MoreLikeThis(sourceID string) []Document {
	r.parse()

	return r.moreLikeThis[sourceID]
}

// Suggestions returns the parsed completion list.
func (r *Result) Suggestions() []Suggestion {
	r.parse()

	return r.suggestions
}

// SuggestionsFound returns the suggester's hit count.
func (r *Result) SuggestionsFound() int64 {
	r.parse()

	return r.suggestFound
}

// setDocuments installs a new document list and mirrors it into the raw
// data map.
func (r *Result) setDocuments(docs []Document) {
	r.documents = docs

	resp, ok := r.raw["response"].(map[string]interface{})
	if ok == false {
		return
	}

	rawDocs := make([]interface{}, 0, len(docs))
	for _, d := range docs {
		rawDocs = append(rawDocs, map[string]interface{}(d))
	}

	resp["docs"] = rawDocs
}

// ShuffleDocuments randomly permutes the document order.
func (r *Result) ShuffleDocuments() {
	r.parse()

	docs := append([]Document(nil), r.documents...)
	rand.Shuffle(len(docs), func(i, j int) {
		docs[i], docs[j] = docs[j], docs[i]
	})

	r.setDocuments(docs)
}

// LimitDocuments truncates the document list to at most n entries.
func (r *Result) LimitDocuments(n int) {
	r.parse()

	if n < 0 {
		n = 0
	}

	if len(r.documents) <= n {
		return
	}

	r.setDocuments(append([]Document(nil), r.documents[:n]...))
}

// FilterDocuments removes every document whose field equals the value,
// or whose list-valued field contains it. Documents missing the field
// are kept.
func (r *Result) FilterDocuments(field, value string) {
	r.parse()

	kept := make([]Document, 0, len(r.documents))
	for _, doc := range r.documents {
		if doc.Has(field) == false {
			kept = append(kept, doc)
			continue
		}

		matched := false
		for _, v := range doc.GetStrings(field) {
			if v == value {
				matched = true
				break
			}
		}

		if matched == false {
			kept = append(kept, doc)
		}
	}

	r.setDocuments(kept)
}

// BoostSellerTypes promotes a bounded number of gold and silver tier
// documents to the front, preserving relative order everywhere else.
// Free tier documents are dropped when filterFreeSellers is set.
// Promotion ignores that flag; see the gold/silver quotas.
func (r *Result) BoostSellerTypes(filterFreeSellers bool, goldQuota, silverQuota int) {
	r.parse()

	var promoted, rest []Document
	goldUsed, silverUsed := 0, 0

	for _, doc := range r.documents {
		tier := doc.GetInt(sellerTypeField)

		if filterFreeSellers == true && tier == SellerTypeFree {
			continue
		}

		switch {
		case tier == SellerTypePackageGold && goldUsed < goldQuota:
			promoted = append(promoted, doc)
			goldUsed++
		case tier == SellerTypePackageSilver && silverUsed < silverQuota:
			promoted = append(promoted, doc)
			silverUsed++
		default:
			rest = append(rest, doc)
		}
	}

	r.setDocuments(append(promoted, rest...))
}

var (
	similarityYear  = regexp.MustCompile(` - \d{4}`)
	similarityToken = regexp.MustCompile(`\p{Han}+|[\p{L}\p{N}]{2,}`)

	// hyphenated and dotted model names concatenate into one token;
	// slashes and plus signs separate
	similarityJoiner = strings.NewReplacer("-", "", ".", "", "/", " ", "+", " ")
)

// similarityTokens normalizes a title into the token set used for
// similarity scoring. The filler word "other" and year suffixes carry
// no model information and are dropped.
func similarityTokens(text string) map[string]bool {
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "other", "")
	text = similarityYear.ReplaceAllString(text, "")
	text = similarityJoiner.Replace(text)

	tokens := make(map[string]bool)
	for _, token := range similarityToken.FindAllString(text, -1) {
		tokens[token] = true
	}

	return tokens
}

// cosineSimilarity scores two token sets on presence alone.
func cosineSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	shared := 0
	for token := range a {
		if b[token] == true {
			shared++
		}
	}

	return float64(shared) / math.Sqrt(float64(len(a))*float64(len(b)))
}

// OrderBySimilarity scores each document's field value against the
// given text and stable-sorts the list by descending score. The score
// is attached to each document under "similarity_score".
func (r *Result) OrderBySimilarity(text, field string) {
	r.parse()

	queryTokens := similarityTokens(text)

	docs := append([]Document(nil), r.documents...)
	for _, doc := range docs {
		score := cosineSimilarity(queryTokens, similarityTokens(doc.GetString(field)))
		doc["similarity_score"] = score
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].GetFloat("similarity_score") > docs[j].GetFloat("similarity_score")
	})

	r.setDocuments(docs)
}

// ReplaceWithMoreLikeThis swaps the document list for the more-like-this
// bucket of the given source document. Without such a bucket the list
// is left alone.
func (r *Result) ReplaceWithMoreLikeThis(sourceID string) {
	r.parse()

	similar, ok := r.moreLikeThis[sourceID]
	if ok == false {
		return
	}

	r.setDocuments(append([]Document(nil), similar...))
}
