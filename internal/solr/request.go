package solr

import (
	"fmt"
	"net/url"
	"strconv"
)

// Request is an ordered bag of query parameters bound for a request
// handler (select, suggest). Parameter order is preserved so rendered
// query strings are deterministic, which keeps them diffable in logs
// and testable.
type Request struct {
	handler string
	keys    []string
	params  map[string][]string
}

// NewRequest creates a request for the named handler, e.g. "select".
func NewRequest(handler string) *Request {
	return &Request{
		handler: handler,
		params:  make(map[string][]string),
	}
}

// AddParam appends a value under the given key. Repeated keys become
// repeated query parameters. Nil and empty values are dropped so that
// unset options never reach the wire.
func (r *Request) AddParam(key string, value interface{}) {
	r.addParam(key, value, false)
}

// SetParam replaces any existing values under the given key.
func (r *Request) SetParam(key string, value interface{}) {
	r.addParam(key, value, true)
}

func (r *Request) addParam(key string, value interface{}, overwrite bool) {
	str, ok := stringifyParam(value)
	if ok == false {
		return
	}

	if _, exists := r.params[key]; exists == false {
		r.keys = append(r.keys, key)
	}

	if overwrite == true {
		r.params[key] = []string{str}
		return
	}

	r.params[key] = append(r.params[key], str)
}

func stringifyParam(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return fmt.Sprintf("%v", v), false
	}
}

// GetParam returns the first value under the given key, or "" when the
// key was never set.
func (r *Request) GetParam(key string) string {
	values := r.params[key]
	if len(values) == 0 {
		return ""
	}

	return values[0]
}

// GetParams returns all values under the given key in insertion order.
func (r *Request) GetParams(key string) []string {
	return r.params[key]
}

// Handler returns the request handler this request targets.
func (r *Request) Handler() string {
	return r.handler
}

// QueryString renders the parameters as a URL-encoded query string.
// Multi-valued keys render as repeated key=value pairs, the form Solr
// expects for facet.field, stats.field and friends.
func (r *Request) QueryString() string {
	qs := ""

	for _, key := range r.keys {
		for _, value := range r.params[key] {
			if qs != "" {
				qs += "&"
			}
			qs += url.QueryEscape(key) + "=" + url.QueryEscape(value)
		}
	}

	return qs
}

// URI renders the handler-relative request target, e.g.
// "select?q=%2A%3A%2A&rows=16".
func (r *Request) URI() string {
	return r.handler + "?" + r.QueryString()
}
