// Package views retrieves the names of the views defined on a Coverity
// instance, for populating selection lists.
//
// Retrieval is best effort: failures are logged and turn into an empty
// list, never an error. Lists can be kept in an on-disk [Cache] between
// invocations.
package views

import (
	"context"
	"time"

	"go.uber.org/zap"

	"covcheck/internal/coverity"
	"covcheck/internal/logging"
)

// DefaultTTL is how long a cached view list is served without refetching.
const DefaultTTL = 15 * time.Minute

// Retriever lists views of configured instances.
type Retriever struct {
	connector coverity.Connector
	cache     *Cache
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a [Retriever].
type Option func(*Retriever)

// WithCache serves lists from cache while they are younger than ttl.
func WithCache(cache *Cache, ttl time.Duration) Option {
	return func(r *Retriever) {
		r.cache = cache
		r.ttl = ttl
	}
}

// WithLogger sets the retriever logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRetriever creates a retriever that connects through connector.
func NewRetriever(connector coverity.Connector, opts ...Option) *Retriever {
	r := &Retriever{
		connector: connector,
		ttl:       DefaultTTL,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("views")
	return r
}

// Retrieve fetches the view names of inst from the server. Any failure is
// logged and yields an empty list.
func (r *Retriever) Retrieve(ctx context.Context, inst coverity.Instance) []string {
	names, err := r.fetch(ctx, inst)
	if err != nil {
		r.logger.Error("error retrieving views",
			zap.String(logging.KeyInstanceURL, inst.URL), zap.Error(err))
		return []string{}
	}
	return names
}

// Views returns the view names of inst, using the cache when one is set.
//
// A fresh cached list is served unless refresh is set. Otherwise the list
// is refetched and stored; when the refetch fails the stale list is served
// if there is one, else an empty list.
func (r *Retriever) Views(ctx context.Context, inst coverity.Instance, refresh bool) []string {
	if r.cache == nil {
		return r.Retrieve(ctx, inst)
	}
	logger := r.logger.With(zap.String(logging.KeyInstanceURL, inst.URL))

	entry, found, err := r.cache.Get(ctx, inst.URL)
	if err != nil {
		logger.Warn("ignoring unreadable view cache entry", zap.Error(err))
		found = false
	}
	if found && !refresh && entry.Fresh(r.now(), r.ttl) {
		return entry.Views
	}

	names, err := r.fetch(ctx, inst)
	if err != nil {
		if found {
			logger.Warn("serving stale views", zap.Error(err), zap.Time("fetched_at", entry.FetchedAt))
			return entry.Views
		}
		logger.Error("error retrieving views", zap.Error(err))
		return []string{}
	}

	if err := r.cache.Put(ctx, inst.URL, names, r.now()); err != nil {
		logger.Warn("could not cache views", zap.Error(err))
	}
	return names
}

func (r *Retriever) fetch(ctx context.Context, inst coverity.Instance) ([]string, error) {
	cfg, err := inst.ServerConfig()
	if err != nil {
		return nil, err
	}
	session, err := r.connector.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	list, err := session.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list))
	for _, v := range list {
		names = append(names, v.Name)
	}
	return names, nil
}
