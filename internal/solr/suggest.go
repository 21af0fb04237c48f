package solr

// DefaultSuggestDictionary is the suggester configured on the core.
const DefaultSuggestDictionary = "mySuggester"

// QuerySuggest builds a request for the suggest handler.
type QuerySuggest struct {
	query      string
	build      bool
	dictionary string
}

// NewQuerySuggest creates a suggest builder for the given input text.
func NewQuerySuggest(query string) *QuerySuggest {
	return &QuerySuggest{
		query:      query,
		dictionary: DefaultSuggestDictionary,
	}
}

// SetBuild asks the suggester to rebuild its dictionary before
// answering. Expensive; only meant for maintenance calls.
func (q *QuerySuggest) SetBuild(build bool) *QuerySuggest {
	q.build = build

	return q
}

// SetDictionary selects a suggester other than the default.
func (q *QuerySuggest) SetDictionary(dictionary string) *QuerySuggest {
	q.dictionary = dictionary

	return q
}

// GetQuery returns the input text suggestions are requested for.
func (q *QuerySuggest) GetQuery() string {
	return q.query
}

// Dictionary returns the suggester the request targets.
func (q *QuerySuggest) Dictionary() string {
	return q.dictionary
}

// CreateRequest renders the suggest request.
func (q *QuerySuggest) CreateRequest() *Request {
	req := NewRequest("suggest")

	req.AddParam("suggest", true)

	if q.build == true {
		req.AddParam("suggest.build", true)
	}

	req.AddParam("suggest.dictionary", q.dictionary)
	req.AddParam("suggest.q", q.query)
	req.AddParam("wt", "json")

	return req
}
