// Package cache persists catalog snapshots and raw sheet responses as JSON
// files, so a restart serves the last good data before the first sync lands
// and a dead upstream degrades to stale data instead of an empty storefront.
package cache

import (
	"encoding/json"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Snapshot keys. One file per key.
const (
	KeyProducts      = "products"
	KeyCategories    = "categories"
	KeyMenu          = "menu"
	KeyPages         = "pages"
	KeyTags          = "tags"
	KeyTypes         = "types"
	KeyLevels        = "levels"
	KeySizes         = "sizes"
	KeyAnnouncements = "announcements"
)

// fetchPrefix marks raw upstream responses. These entries are disposable:
// when the disk fills up they are evicted first and the write retried.
const fetchPrefix = "cache:"

// Cache is a directory of JSON files keyed by name. Safe for concurrent use.
type Cache struct {
	dir string
	log zerolog.Logger

	mu sync.Mutex
}

// New creates the cache directory if needed.
func New(dir string, log zerolog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, log: log.With().Str("component", "cache").Logger()}, nil
}

// Read decodes the entry for key into v. Returns os.ErrNotExist (wrapped)
// when the entry is absent.
func (c *Cache) Read(key string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Write persists v under key. Persistence is best effort: on a failed write
// the disposable fetch entries are evicted once and the write retried, and a
// second failure is only logged. The in-memory catalog never depends on a
// write succeeding.
func (c *Cache) Write(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writeFile(key, data); err != nil {
		n := c.evictFetchEntries()
		c.log.Warn().Err(err).Str("key", key).Int("evicted", n).Msg("cache write failed, retrying after eviction")
		if err := c.writeFile(key, data); err != nil {
			c.log.Error().Err(err).Str("key", key).Msg("cache write failed after eviction")
		}
	}
}

// Delete removes the entry for key, if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = os.Remove(c.path(key))
}

func (c *Cache) writeFile(key string, data []byte) error {
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, c.path(key))
}

// evictFetchEntries removes every disposable fetch entry and returns how
// many files went away. Caller holds c.mu.
func (c *Cache) evictFetchEntries() int {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "fetch-") {
			continue
		}
		if os.Remove(filepath.Join(c.dir, e.Name())) == nil {
			n++
		}
	}
	return n
}

// path maps a key to its file. Fetch keys embed arbitrary URLs, so those are
// hashed; snapshot keys are plain names and stay readable on disk.
func (c *Cache) path(key string) string {
	if rest, ok := strings.CutPrefix(key, fetchPrefix); ok {
		h := fnv.New64a()
		h.Write([]byte(rest))
		return filepath.Join(c.dir, "fetch-"+strconv.FormatUint(h.Sum64(), 16)+".json")
	}
	return filepath.Join(c.dir, key+".json")
}

// fetchEntry is one cached upstream response.
type fetchEntry struct {
	FetchedAt int64  `json:"fetchedAt"` // unix millis
	Body      string `json:"body"`
}

// ReadFetch returns the cached response body for url when it is younger
// than ttl.
func (c *Cache) ReadFetch(url string, ttl time.Duration) (string, bool) {
	var e fetchEntry
	if err := c.Read(fetchPrefix+url, &e); err != nil {
		return "", false
	}
	if ttl > 0 && time.Since(time.UnixMilli(e.FetchedAt)) > ttl {
		return "", false
	}
	return e.Body, true
}

// WriteFetch stores a raw response body for url.
func (c *Cache) WriteFetch(url, body string) {
	c.Write(fetchPrefix+url, fetchEntry{FetchedAt: time.Now().UnixMilli(), Body: body})
}
