package solr

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultConnectTimeout = 5 * time.Second
)

// Endpoint identifies a single Solr core behind a host. The core is the
// last path segment of the configured URL; everything before it is kept
// as the servlet path.
type Endpoint struct {
	Scheme      string
	Host        string
	Port        int
	Path        string
	Core        string
	Timeout     time.Duration
	ConnTimeout time.Duration
}

// ParseEndpoint splits a configured core URL of the form
// http://host:port/solr/core into its parts. A URL without a path
// separator has no core to talk to and is rejected.
func ParseEndpoint(rawURL string) (*Endpoint, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("malformed endpoint url [%s]: %s", rawURL, err.Error())}
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, &ConfigError{Message: fmt.Sprintf("endpoint url [%s] is missing scheme or host", rawURL)}
	}

	trimmed := strings.Trim(u.Path, "/")
	if trimmed == "" {
		return nil, &ConfigError{Message: fmt.Sprintf("endpoint url [%s] does not name a core", rawURL)}
	}

	segments := strings.Split(trimmed, "/")
	core := segments[len(segments)-1]
	path := strings.Join(segments[:len(segments)-1], "/")

	port := 0
	if p := u.Port(); p != "" {
		fmt.Sscanf(p, "%d", &port)
	} else {
		switch u.Scheme {
		case "https":
			port = 443
		default:
			port = 80
		}
	}

	return &Endpoint{
		Scheme:      u.Scheme,
		Host:        u.Hostname(),
		Port:        port,
		Path:        path,
		Core:        core,
		Timeout:     defaultTimeout,
		ConnTimeout: defaultConnectTimeout,
	}, nil
}

// BaseURI renders the root under which request handlers (select,
// suggest) live. It always ends with a slash.
func (e *Endpoint) BaseURI() string {
	uri := fmt.Sprintf("%s://%s:%d/", e.Scheme, e.Host, e.Port)

	if e.Path != "" {
		uri += e.Path + "/"
	}

	return uri + e.Core + "/"
}
