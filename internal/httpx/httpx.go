// Package httpx builds the HTTP client the site uses to reach the content API.
package httpx

import (
	"errors"
	"net/http"
	"time"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultRetryMax = 2

	userAgent = "svmesh-web"
)

// Transport retries idempotent requests that fail in transit or hit a
// gateway error.
type Transport struct {
	Base http.RoundTripper

	// RetryMax is the number of retries after the first attempt.
	RetryMax int

	// Backoff is the pause before retry n (1-based).
	Backoff func(n int) time.Duration
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// Only replayable requests are retried.
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		if attempt > 0 && t.Backoff != nil {
			select {
			case <-time.After(t.Backoff(attempt)):
			case <-req.Context().Done():
				return nil, req.Context().Err()
			}
		}

		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" {
			r.Header.Set("User-Agent", userAgent)
		}

		resp, err := base.RoundTrip(r)
		if err == nil {
			if attempt < max && retryableStatus(resp.StatusCode) {
				resp.Body.Close()
				lastErr = errors.New(resp.Status)
				continue
			}
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func retryableStatus(code int) bool {
	return code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable ||
		code == http.StatusGatewayTimeout
}

func linearBackoff(n int) time.Duration {
	return time.Duration(n) * 100 * time.Millisecond
}

// NewClient returns a client with a total timeout and bounded retries.
func NewClient(timeout time.Duration, retryMax int) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
	}
	return &http.Client{
		Transport: &Transport{
			Base:     base,
			RetryMax: retryMax,
			Backoff:  linearBackoff,
		},
		Timeout: timeout,
	}
}
