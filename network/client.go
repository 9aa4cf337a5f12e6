// Package network provides the pre-configured HTTP client shared by every stage of a download.
package network

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/viper"
	"github.com/vodrip/vodrip/key"
)

// Options tunes the client returned by New.
type Options struct {
	// Timeout bounds a whole request including the body. Zero means no limit.
	Timeout time.Duration
	// UserAgent is sent with every request unless the request already sets one.
	UserAgent string
	// Fingerprint makes TLS handshakes look like Chrome.
	Fingerprint bool
}

// FromConfig reads client options from the global configuration.
func FromConfig() Options {
	return Options{
		Timeout:     time.Duration(viper.GetInt(key.NetworkTimeout)) * time.Second,
		UserAgent:   viper.GetString(key.NetworkUserAgent),
		Fingerprint: viper.GetBool(key.NetworkTLSFingerprint),
	}
}

// New builds an HTTP client for the given options.
func New(options Options) *http.Client {
	var base http.RoundTripper = newTransport()
	if options.Fingerprint {
		base = newFingerprintTransport()
	}

	return &http.Client{
		Timeout: options.Timeout,
		Transport: &userAgentTransport{
			base:  base,
			agent: options.UserAgent,
		},
	}
}

// Get issues a GET bound to ctx.
func Get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// Head issues a HEAD bound to ctx.
func Head(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// IsSuccess reports whether the status code is 2xx.
func IsSuccess(code int) bool {
	return code >= 200 && code < 300
}

// newTransport initializes a tuned http.Transport. Only response headers are bounded;
// bodies of source files can take hours.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second
	return t
}

type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.agent == "" || req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(clone)
}
