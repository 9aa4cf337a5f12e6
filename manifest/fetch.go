package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vodrip/vodrip/log"
	"github.com/vodrip/vodrip/network"
	"github.com/vodrip/vodrip/util"
)

// Resolver downloads manifests, consulting an optional cache first.
type Resolver struct {
	Client *http.Client
	// Cache may be nil, in which case every call hits the network.
	Cache *Cache
}

// Resolve returns the manifest at url.
func (r *Resolver) Resolve(ctx context.Context, url string) (*Manifest, error) {
	if r.Cache != nil {
		if cached, ok := r.Cache.Get(url).Get(); ok {
			log.Debugf("manifest %s served from cache", url)
			return cached, nil
		}
	}

	m, err := r.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if r.Cache != nil {
		if err := r.Cache.Set(url, m); err != nil {
			log.Warnf("caching manifest %s: %v", url, err)
		}
	}

	return m, nil
}

// Fetch downloads and decodes the manifest at url, bypassing the cache.
func (r *Resolver) Fetch(ctx context.Context, url string) (*Manifest, error) {
	log.Infof("fetching manifest %s", url)

	resp, err := network.Get(ctx, r.Client, url)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	if !network.IsSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("fetch manifest: unexpected status %s", resp.Status)
	}

	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return &m, nil
}
