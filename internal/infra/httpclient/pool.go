package httpclient

import (
	"net/http"
	"time"
)

// sharedTransport is reused by every outbound client so that the fan-out to
// the same provider host keeps its connections warm.
var sharedTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        32,
	MaxIdleConnsPerHost: 8,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	DisableKeepAlives:   false,
}

// NewPooledClient creates an http.Client with its own timeout over the shared
// connection pool. Each external call is bounded by timeout.
func NewPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	}
}
