package socrata

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// diskCache stores raw response pages as files keyed by a hash of the
// request, so repeated notebook-style runs do not hammer the API.
type diskCache struct {
	dir string
	ttl time.Duration
}

func newDiskCache(dir string, ttl time.Duration) *diskCache {
	if dir == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &diskCache{dir: dir, ttl: ttl}
}

func (c *diskCache) path(endpoint string, params url.Values) string {
	sum := xxhash.Sum64String(endpoint + "?" + params.Encode())
	return filepath.Join(c.dir, fmt.Sprintf("%016x.json", sum))
}

// get returns the cached page, or ok=false when absent or expired.
func (c *diskCache) get(endpoint string, params url.Values) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	p := c.path(endpoint, params)
	info, err := os.Stat(p)
	if err != nil || time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// put stores a page; cache failures are not fatal to the fetch.
func (c *diskCache) put(endpoint string, params url.Values, data []byte) error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return os.WriteFile(c.path(endpoint, params), data, 0o644)
}
