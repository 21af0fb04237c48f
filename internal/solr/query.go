package solr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	OperatorAnd = "AND"
	OperatorOr  = "OR"

	// MatchAll selects every document in the core. It is the query an
	// empty builder renders, and the value AddRawQuery replaces rather
	// than appends to.
	MatchAll = "*:*"

	defaultRows     = 16
	defaultMltCount = 6
	defaultMltField = "title_en"
)

type querySort struct {
	field string
	order string
}

// Query accumulates the pieces of a select request and renders them as
// an ordered parameter list. All mutators return the query so calls
// chain.
type Query struct {
	query        string
	start        int
	rows         int
	fields       []string
	facet        bool
	facetFields  []string
	facetLimits  map[string]int
	stats        bool
	statsFields  []string
	edismax      bool
	boost        string
	boostQueries []string
	mlt          bool
	mltCount     int
	mltFields    []string
	mltMinTF     int
	mltBoost     bool
	debug        bool
	sorts        []querySort
}

// NewQuery creates a builder preloaded with the service defaults: match
// every document, first page of 16, all stored fields plus score.
func NewQuery() *Query {
	return &Query{
		query:       MatchAll,
		rows:        defaultRows,
		fields:      []string{"*", "score"},
		facetLimits: make(map[string]int),
		mltCount:    defaultMltCount,
		mltFields:   []string{defaultMltField},
		mltMinTF:    1,
		mltBoost:    true,
	}
}

// EscapePhrase wraps a value in double quotes, backslash-escaping any
// embedded quotes and backslashes so the phrase survives the Solr query
// parser intact.
func EscapePhrase(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)

	return `"` + escaped + `"`
}

// SetQuery replaces the current query string. Whitespace-only input
// falls back to matching everything.
func (q *Query) SetQuery(query string) *Query {
	query = strings.TrimSpace(query)
	if query == "" {
		query = MatchAll
	}

	q.query = query

	return q
}

// GetQuery returns the query string as built so far.
func (q *Query) GetQuery() string {
	return q.query
}

// AddQuery adds a field clause with phrase-escaped values. List values
// group with OR.
func (q *Query) AddQuery(field string, value interface{}, operator string) *Query {
	return q.addFieldClause(field, value, operator, OperatorOr, true)
}

// AddRawQuery adds a field clause whose scalar value is taken verbatim,
// so callers can pass pre-built range or wildcard expressions. List
// values are still escaped per element and grouped with arrayOperator.
func (q *Query) AddRawQuery(field string, value interface{}, operator, arrayOperator string) *Query {
	return q.addFieldClause(field, value, operator, arrayOperator, false)
}

func (q *Query) addFieldClause(field string, value interface{}, operator, arrayOperator string, escape bool) *Query {
	rendered := renderClauseValue(value, arrayOperator, escape)
	if rendered == "" {
		return q
	}

	clause := field + ":" + rendered

	// a match-all query is the builder default, not a user clause, so
	// the first real clause takes its place
	if q.query == MatchAll {
		q.query = clause
	} else {
		q.query = q.query + " " + operator + " " + clause
	}

	return q
}

func renderClauseValue(value interface{}, arrayOperator string, escape bool) string {
	switch v := value.(type) {
	case []string:
		if len(v) == 0 {
			return ""
		}

		escaped := make([]string, 0, len(v))
		for _, item := range v {
			escaped = append(escaped, EscapePhrase(item))
		}

		return "(" + strings.Join(escaped, " "+arrayOperator+" ") + ")"

	case string:
		if v == "" {
			return ""
		}

		if escape == true {
			return EscapePhrase(v)
		}

		return v

	case int:
		return strconv.Itoa(v)

	case int64:
		return strconv.FormatInt(v, 10)

	default:
		return fmt.Sprintf("%v", v)
	}
}

// RangeQuery renders an inclusive range clause for the given field.
// Nil bounds render as open-ended wildcards.
func RangeQuery(field string, from, to interface{}) string {
	return rangeClause(field, from, to, true)
}

// ExclusiveRangeQuery renders a range clause with exclusive bounds.
func ExclusiveRangeQuery(field string, from, to interface{}) string {
	return rangeClause(field, from, to, false)
}

func rangeClause(field string, from, to interface{}, inclusive bool) string {
	left, right := "[", "]"
	if inclusive == false {
		left, right = "{", "}"
	}

	return field + ":" + left + rangeBound(from) + " TO " + rangeBound(to) + right
}

func rangeBound(value interface{}) string {
	if value == nil {
		return "*"
	}

	str := fmt.Sprintf("%v", value)
	if str == "" || str == "*" {
		return "*"
	}

	return `"` + str + `"`
}

// AddRangeQuery adds an inclusive range clause on the given field.
func (q *Query) AddRangeQuery(field string, from, to interface{}, operator string) *Query {
	return q.addRawClause(rangeClause(field, from, to, true), operator)
}

func (q *Query) addRawClause(clause, operator string) *Query {
	if q.query == MatchAll {
		q.query = clause
	} else {
		q.query = q.query + " " + operator + " " + clause
	}

	return q
}

// ReplaceRawQueryField rewrites the value of an existing field clause in
// place. Used when re-running a query with one facet dimension widened
// back to everything.
func (q *Query) ReplaceRawQueryField(field, value string) *Query {
	re := regexp.MustCompile(regexp.QuoteMeta(field) + `:(\([^)]*\)|\[[^\]]*\]|\{[^}]*\}|"[^"]*"|\S+)`)

	q.query = re.ReplaceAllString(q.query, field+":"+value)

	return q
}

// SetStart sets the offset of the first document returned.
func (q *Query) SetStart(start int) *Query {
	if start < 0 {
		start = 0
	}

	q.start = start

	return q
}

// SetRows sets the number of documents requested.
func (q *Query) SetRows(rows int) *Query {
	if rows < 0 {
		rows = 0
	}

	q.rows = rows

	return q
}

// GetRows returns the number of documents requested.
func (q *Query) GetRows() int {
	return q.rows
}

// SetFields replaces the returned field list.
func (q *Query) SetFields(fields []string) *Query {
	q.fields = fields

	return q
}

// AddField appends one field to the returned field list.
func (q *Query) AddField(field string) *Query {
	q.fields = append(q.fields, field)

	return q
}

// AddSort adds an ordering on the given field. Sorting again on a field
// already present updates its direction without changing its position.
func (q *Query) AddSort(field, order string) *Query {
	for i := range q.sorts {
		if q.sorts[i].field == field {
			q.sorts[i].order = order
			return q
		}
	}

	q.sorts = append(q.sorts, querySort{field: field, order: order})

	return q
}

// ClearSorts drops all orderings.
func (q *Query) ClearSorts() *Query {
	q.sorts = nil

	return q
}

// EnableFacet turns facet counting on or off.
func (q *Query) EnableFacet(enabled bool) *Query {
	q.facet = enabled

	return q
}

// AddFacetField requests value counts for the given field. Repeated
// additions of the same field are collapsed.
func (q *Query) AddFacetField(field string) *Query {
	for _, existing := range q.facetFields {
		if existing == field {
			return q
		}
	}

	q.facet = true
	q.facetFields = append(q.facetFields, field)

	return q
}

// SetFacetFields replaces the facet field list.
func (q *Query) SetFacetFields(fields []string) *Query {
	q.facetFields = nil
	for _, field := range fields {
		q.AddFacetField(field)
	}

	return q
}

// SetFacetLimit caps the number of counted values for one facet field.
func (q *Query) SetFacetLimit(field string, limit int) *Query {
	q.facetLimits[field] = limit

	return q
}

// EnableStats turns field statistics on or off.
func (q *Query) EnableStats(enabled bool) *Query {
	q.stats = enabled

	return q
}

// AddStatsField requests min/max/count statistics for the given field.
func (q *Query) AddStatsField(field string) *Query {
	for _, existing := range q.statsFields {
		if existing == field {
			return q
		}
	}

	q.stats = true
	q.statsFields = append(q.statsFields, field)

	return q
}

// EnableEdismax switches the request to the edismax query parser,
// which is what makes boost functions and boost queries take effect.
func (q *Query) EnableEdismax(enabled bool) *Query {
	q.edismax = enabled

	return q
}

// SetEdismaxBoost replaces the multiplicative boost function.
func (q *Query) SetEdismaxBoost(boost string) *Query {
	q.boost = boost

	return q
}

// AddEdismaxBoostQuery adds an additive boost clause with escaped
// values, weighted by the given factor. Lists group with OR.
func (q *Query) AddEdismaxBoostQuery(field string, value interface{}, weight float64) *Query {
	rendered := renderClauseValue(value, OperatorOr, true)
	if rendered == "" {
		return q
	}

	return q.AddRawEdismaxBoostQuery(field+":"+rendered, weight)
}

// AddRawEdismaxBoostQuery adds an additive boost clause taken verbatim,
// weighted by the given factor.
func (q *Query) AddRawEdismaxBoostQuery(clause string, weight float64) *Query {
	q.boostQueries = append(q.boostQueries, clause+"^"+formatWeight(weight))

	return q
}

func formatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}

// EnableMoreLikeThis turns the more-like-this component on or off.
func (q *Query) EnableMoreLikeThis(enabled bool) *Query {
	q.mlt = enabled

	return q
}

// SetMoreLikeThisCount sets how many similar documents to collect per
// result document.
func (q *Query) SetMoreLikeThisCount(count int) *Query {
	q.mltCount = count

	return q
}

// SetMoreLikeThisFields sets the fields similarity is computed over.
func (q *Query) SetMoreLikeThisFields(fields []string) *Query {
	q.mltFields = fields

	return q
}

// EnableDebug asks the engine to include scoring explanations.
func (q *Query) EnableDebug(enabled bool) *Query {
	q.debug = enabled

	return q
}

// Clone returns a deep copy, so a secondary query can be derived from a
// built one without disturbing it.
func (q *Query) Clone() *Query {
	dup := *q

	dup.fields = append([]string(nil), q.fields...)
	dup.facetFields = append([]string(nil), q.facetFields...)
	dup.statsFields = append([]string(nil), q.statsFields...)
	dup.boostQueries = append([]string(nil), q.boostQueries...)
	dup.mltFields = append([]string(nil), q.mltFields...)
	dup.sorts = append([]querySort(nil), q.sorts...)

	dup.facetLimits = make(map[string]int, len(q.facetLimits))
	for field, limit := range q.facetLimits {
		dup.facetLimits[field] = limit
	}

	return &dup
}

// CreateRequest renders the accumulated state as a select request. The
// parameter order is fixed so identical queries always serialize
// identically.
func (q *Query) CreateRequest() *Request {
	req := NewRequest("select")

	req.AddParam("q", q.query)
	req.AddParam("start", q.start)
	req.AddParam("rows", q.rows)

	if len(q.fields) > 0 {
		req.AddParam("fl", strings.Join(q.fields, ","))
	}

	req.AddParam("ws", "json")

	if q.facet == true {
		req.AddParam("facet", "on")

		for _, field := range q.facetFields {
			req.AddParam("facet.field", field)
		}

		for _, field := range q.facetFields {
			if limit, ok := q.facetLimits[field]; ok == true {
				req.AddParam(fmt.Sprintf("f.%s.facet.limit", field), limit)
			}
		}
	}

	if q.stats == true {
		req.AddParam("stats", true)

		for _, field := range q.statsFields {
			req.AddParam("stats.field", field)
		}
	}

	if q.edismax == true {
		req.AddParam("defType", "edismax")

		if q.boost != "" {
			req.AddParam("boost", q.boost)
		}

		for _, bq := range q.boostQueries {
			req.AddParam("bq", bq)
		}
	}

	if q.mlt == true {
		req.AddParam("mlt", true)
		req.AddParam("mlt.count", q.mltCount)
		req.AddParam("mlt.fl", strings.Join(q.mltFields, ","))
		req.AddParam("mlt.mintf", q.mltMinTF)
		req.AddParam("mlt.boost", q.mltBoost)
	}

	if q.debug == true {
		req.AddParam("debugQuery", "on")
	}

	if len(q.sorts) > 0 {
		rendered := make([]string, 0, len(q.sorts))
		for _, s := range q.sorts {
			rendered = append(rendered, s.field+" "+s.order)
		}

		req.AddParam("sort", strings.Join(rendered, ","))
	}

	return req
}
