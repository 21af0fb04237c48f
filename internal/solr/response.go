package solr

import (
	"net/http"
)

// Response captures what came back over the wire before any
// interpretation. It is immutable once constructed; Result owns all
// parsing and shaping.
type Response struct {
	StatusCode    int
	StatusMessage string
	Headers       http.Header
	Body          []byte
}
