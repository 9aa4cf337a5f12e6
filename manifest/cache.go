package manifest

import (
	"sync"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/vodrip/vodrip/filesystem"
)

// cacheData is the on-disk layout of the manifest cache.
type cacheData struct {
	Manifests map[string]*Manifest `json:"manifests"`
}

// Cache keeps recently resolved manifests on disk so listing and then downloading
// the same VOD costs a single manifest request.
type Cache struct {
	internal *gache.Cache[*cacheData]
	mu       sync.Mutex
}

// NewCache stores manifests at path. The whole file expires after lifetime.
func NewCache(path string, lifetime time.Duration) *Cache {
	return &Cache{
		internal: gache.New[*cacheData](&gache.Options{
			Path:       path,
			Lifetime:   lifetime,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// Get returns the cached manifest for url, if any.
func (c *Cache) Get(url string) mo.Option[*Manifest] {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[*Manifest]()
	}

	if m, ok := data.Manifests[url]; ok && m != nil {
		return mo.Some(m)
	}
	return mo.None[*Manifest]()
}

// Set stores m under url.
func (c *Cache) Set(url string, m *Manifest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil || data.Manifests == nil {
		data = &cacheData{Manifests: make(map[string]*Manifest)}
	}

	data.Manifests[url] = m
	return c.internal.Set(data)
}
