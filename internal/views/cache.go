package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
	"gopkg.in/yaml.v3"
)

// Entry is the cached view list of one instance.
type Entry struct {
	InstanceURL string    `yaml:"instance_url"`
	FetchedAt   time.Time `yaml:"fetched_at"`
	Views       []string  `yaml:"views"`
}

// Fresh reports whether the entry is younger than ttl at now.
// A non-positive ttl never expires.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return now.Sub(e.FetchedAt) < ttl
}

// Cache is an on-disk store of view lists, one file per instance.
type Cache struct {
	diskv *diskv.Diskv
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string) *Cache {
	flatTransform := func(s string) []string { return []string{} }
	return &Cache{
		diskv: diskv.New(diskv.Options{
			BasePath:     filepath.Join(dir, "views"),
			Transform:    flatTransform,
			CacheSizeMax: 1024 * 1024,
		}),
	}
}

// Key returns the storage key of instanceURL: a name-based UUID, so
// arbitrary URLs map to safe file names.
func Key(instanceURL string) string {
	normalized := strings.TrimSuffix(strings.TrimSpace(instanceURL), "/")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(normalized)).String()
}

// Get returns the entry for instanceURL. The bool is false when nothing is
// cached.
func (c *Cache) Get(_ context.Context, instanceURL string) (Entry, bool, error) {
	key := Key(instanceURL)
	if !c.diskv.Has(key) {
		return Entry{}, false, nil
	}
	raw, err := c.diskv.Read(key)
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading views for %s: %w", instanceURL, err)
	}
	var e Entry
	if err := yaml.Unmarshal(raw, &e); err != nil {
		return Entry{}, false, fmt.Errorf("unmarshal views for %s: %w", instanceURL, err)
	}
	return e, true, nil
}

// Put stores the view list of instanceURL as fetched at fetchedAt.
func (c *Cache) Put(_ context.Context, instanceURL string, views []string, fetchedAt time.Time) error {
	raw, err := yaml.Marshal(Entry{
		InstanceURL: instanceURL,
		FetchedAt:   fetchedAt.UTC(),
		Views:       views,
	})
	if err != nil {
		return fmt.Errorf("marshal views: %w", err)
	}
	if err := c.diskv.Write(Key(instanceURL), raw); err != nil {
		return fmt.Errorf("write views: %w", err)
	}
	return nil
}

// Invalidate drops the entry of instanceURL. Dropping a missing entry is
// not an error.
func (c *Cache) Invalidate(_ context.Context, instanceURL string) error {
	key := Key(instanceURL)
	if !c.diskv.Has(key) {
		return nil
	}
	return c.diskv.Erase(key)
}
