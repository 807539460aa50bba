package httpclient

import (
	"net/http"
	"time"
)

// UserAgent is sent on every outbound request that does not set its own
const UserAgent = "explorepe-api/1.0 (+https://explore.pe)"

const defaultTimeout = 30 * time.Second

// Client is the subset of *http.Client used by outbound integrations
// (geocoding, reCAPTCHA, event triggers). Tests substitute their own.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// StandardHTTPClient wraps http.Client with a request timeout and a default User-Agent
type StandardHTTPClient struct {
	client *http.Client
}

// NewStandardClient creates a client with a 30 second timeout
func NewStandardClient() Client {
	return NewClientWithTimeout(defaultTimeout)
}

// NewClientWithTimeout creates a client whose requests give up after timeout
func NewClientWithTimeout(timeout time.Duration) Client {
	return &StandardHTTPClient{
		client: &http.Client{
			Timeout:   timeout,
			Transport: userAgentTransport{next: http.DefaultTransport},
		},
	}
}

// Do executes an HTTP request
func (c *StandardHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", UserAgent)
	return t.next.RoundTrip(clone)
}
