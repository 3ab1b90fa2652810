// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	synclib "github.com/xataio/catalogsearch/internal/sync"
	"github.com/xataio/catalogsearch/pkg/catalog"
	loglib "github.com/xataio/catalogsearch/pkg/log"
	"golang.org/x/sync/singleflight"
)

// AttributeCache is a concurrency safe AttributeLookup wrapper that keeps the
// attribute metadata in memory. Unknown attributes are cached as nil so that
// repeated lookups for them don't reach the inner lookup either. Concurrent
// misses for the same code result in a single inner lookup.
type AttributeCache struct {
	inner           catalog.AttributeLookup
	clock           clockwork.Clock
	refreshInterval time.Duration
	logger          loglib.Logger

	attributes *synclib.Map[string, *catalog.AttributeMetadata]
	misses     singleflight.Group
}

// AttributeLister is implemented by lookups that can return every attribute
// at once, which lets Refresh reload the cache instead of emptying it.
type AttributeLister interface {
	ListAttributes(ctx context.Context) (map[string]*catalog.AttributeMetadata, error)
}

type Option func(*AttributeCache)

const defaultRefreshInterval = time.Minute

func NewAttributeCache(inner catalog.AttributeLookup, opts ...Option) *AttributeCache {
	c := &AttributeCache{
		inner:           inner,
		clock:           clockwork.NewRealClock(),
		refreshInterval: defaultRefreshInterval,
		logger:          loglib.NewNoopLogger(),
		attributes:      synclib.NewMap[string, *catalog.AttributeMetadata](),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithLogger(l loglib.Logger) Option {
	return func(c *AttributeCache) {
		c.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "attribute_cache",
		})
	}
}

// WithRefreshInterval sets how often Run refreshes the cache. Values lower or
// equal to zero keep the default.
func WithRefreshInterval(interval time.Duration) Option {
	return func(c *AttributeCache) {
		if interval > 0 {
			c.refreshInterval = interval
		}
	}
}

func withClock(clock clockwork.Clock) Option {
	return func(c *AttributeCache) {
		c.clock = clock
	}
}

func (c *AttributeCache) GetAttribute(ctx context.Context, code string) (*catalog.AttributeMetadata, error) {
	if metadata, found := c.attributes.Get(code); found {
		return metadata, nil
	}

	v, err, _ := c.misses.Do(code, func() (any, error) {
		metadata, err := c.inner.GetAttribute(ctx, code)
		if err != nil {
			return nil, err
		}
		c.attributes.Set(code, metadata)
		return metadata, nil
	})
	if err != nil {
		return nil, fmt.Errorf("attribute cache lookup: %w", err)
	}
	return v.(*catalog.AttributeMetadata), nil
}

// Refresh reloads the full attribute set when the inner lookup can list it,
// and empties the cache otherwise.
func (c *AttributeCache) Refresh(ctx context.Context) error {
	lister, ok := c.inner.(AttributeLister)
	if !ok {
		c.attributes.Replace(nil)
		return nil
	}

	attributes, err := lister.ListAttributes(ctx)
	if err != nil {
		return fmt.Errorf("attribute cache refresh: %w", err)
	}
	c.attributes.Replace(attributes)
	c.logger.Debug("attribute cache refreshed", loglib.Fields{"attributes": len(attributes)})
	return nil
}

// Run refreshes the cache on every refresh interval until the context is
// done. Refresh errors are logged and the previous contents are kept.
func (c *AttributeCache) Run(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn(err, "refreshing attribute cache")
			}
		}
	}
}

func (c *AttributeCache) Len() int {
	return c.attributes.Len()
}
