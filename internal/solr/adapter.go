package solr

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Adapter performs HTTP calls against a Solr endpoint. Failing HTTP
// statuses are not an adapter concern: as long as the engine answered,
// the response is handed back whole and Result decides what it means.
type Adapter struct {
	client *http.Client
}

// timeoutsFor resolves the endpoint's total and connect deadlines,
// falling back to defaults when unset.
func timeoutsFor(endpoint *Endpoint) (time.Duration, time.Duration) {
	timeout := endpoint.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connTimeout := endpoint.ConnTimeout
	if connTimeout <= 0 {
		connTimeout = defaultConnectTimeout
	}

	return timeout, connTimeout
}

// NewAdapter creates an adapter whose overall request deadline comes
// from the endpoint. Connection establishment gets its own shorter
// timeout so a dead host fails fast.
func NewAdapter(endpoint *Endpoint) *Adapter {
	timeout, connTimeout := timeoutsFor(endpoint)

	return &Adapter{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connTimeout,
				}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
	}
}

// Execute sends the request to the endpoint and returns the raw
// response. Only a total transport failure is an error here.
func (a *Adapter) Execute(ctx context.Context, endpoint *Endpoint, req *Request) (*Response, error) {
	return a.execute(ctx, endpoint, req, "GET")
}

// ExecuteMethod is Execute with an explicit HTTP method, for HEAD pings
// and POST-ed maintenance calls.
func (a *Adapter) ExecuteMethod(ctx context.Context, endpoint *Endpoint, req *Request, method string) (*Response, error) {
	return a.execute(ctx, endpoint, req, method)
}

func (a *Adapter) execute(ctx context.Context, endpoint *Endpoint, req *Request, method string) (*Response, error) {
	url := endpoint.BaseURI() + req.URI()

	httpReq, reqErr := http.NewRequestWithContext(ctx, method, url, nil)
	if reqErr != nil {
		return nil, &TransportError{URL: url, Message: fmt.Sprintf("failed to build request: %s", reqErr.Error()), Err: reqErr}
	}

	start := time.Now()
	httpRes, resErr := a.client.Do(httpReq)
	elapsedMS := int64(time.Since(start) / time.Millisecond)

	if resErr != nil {
		// the engine never answered; classify for the caller's logs
		msg := "request failed"

		if netErr, ok := resErr.(net.Error); ok == true && netErr.Timeout() == true {
			msg = fmt.Sprintf("request timed out after %d ms", elapsedMS)
		}

		return nil, &TransportError{URL: url, Message: fmt.Sprintf("%s: %s", msg, resErr.Error()), Err: resErr}
	}

	defer httpRes.Body.Close()

	body, readErr := io.ReadAll(httpRes.Body)
	if readErr != nil {
		return nil, &TransportError{URL: url, Message: fmt.Sprintf("failed to read response body: %s", readErr.Error()), Err: readErr}
	}

	if len(body) == 0 && len(httpRes.Header) == 0 {
		return nil, &TransportError{URL: url, Message: "empty response (no data, no headers)"}
	}

	return &Response{
		StatusCode:    httpRes.StatusCode,
		StatusMessage: httpRes.Status,
		Headers:       httpRes.Header,
		Body:          body,
	}, nil
}
