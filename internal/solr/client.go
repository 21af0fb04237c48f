package solr

import (
	"context"
)

// Client executes built queries against one endpoint and wraps the
// responses in Results.
type Client struct {
	endpoint *Endpoint
	adapter  *Adapter
}

// NewClient creates a client for the given endpoint.
func NewClient(endpoint *Endpoint) *Client {
	return &Client{
		endpoint: endpoint,
		adapter:  NewAdapter(endpoint),
	}
}

// Endpoint returns the endpoint this client talks to.
func (c *Client) Endpoint() *Endpoint {
	return c.endpoint
}

// NewSelectQuery returns a query builder preloaded with the service
// defaults.
func (c *Client) NewSelectQuery() *Query {
	return NewQuery()
}

// NewSuggestQuery returns a suggest builder for the given input text.
func (c *Client) NewSuggestQuery(text string) *QuerySuggest {
	return NewQuerySuggest(text)
}

// Execute runs a select query and returns its result. Transport
// failures and failing engine statuses both surface as errors;
// malformed bodies surface later, from the result's accessors.
func (c *Client) Execute(ctx context.Context, query *Query) (*Result, error) {
	response, err := c.adapter.Execute(ctx, c.endpoint, query.CreateRequest())
	if err != nil {
		return nil, err
	}

	return NewResult(response)
}

// ExecuteSuggest runs a suggest query and returns its result.
func (c *Client) ExecuteSuggest(ctx context.Context, query *QuerySuggest) (*Result, error) {
	response, err := c.adapter.Execute(ctx, c.endpoint, query.CreateRequest())
	if err != nil {
		return nil, err
	}

	return NewSuggestResult(response, query.Dictionary(), query.GetQuery())
}

// Ping issues a zero-row match-all select to verify the core is
// reachable and answering.
func (c *Client) Ping(ctx context.Context) error {
	query := NewQuery()
	query.SetRows(0)

	result, err := c.Execute(ctx, query)
	if err != nil {
		return err
	}

	return result.Err()
}
