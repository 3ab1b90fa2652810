// SPDX-License-Identifier: Apache-2.0

package datefmt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	// store time zones must load without system tzdata
	_ "time/tzdata"

	"github.com/xataio/catalogsearch/pkg/catalog"
	loglib "github.com/xataio/catalogsearch/pkg/log"
)

// Formatter renders raw date values in the time zone of the store they are
// indexed for. Raw values without a zone are read as UTC.
type Formatter struct {
	stores catalog.StoreResolver
	logger loglib.Logger

	locationsMu sync.RWMutex
	locations   map[string]*time.Location
}

type Option func(*Formatter)

var ErrInvalidDate = errors.New("invalid date value")

var inputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

const outputLayout = time.RFC3339

func New(stores catalog.StoreResolver, opts ...Option) *Formatter {
	f := &Formatter{
		stores:    stores,
		logger:    loglib.NewNoopLogger(),
		locations: map[string]*time.Location{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func WithLogger(l loglib.Logger) Option {
	return func(f *Formatter) {
		f.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "catalog_date_formatter",
		})
	}
}

// FormatDate returns the value as an RFC3339 timestamp in the store time
// zone. Empty values are returned as an empty string.
func (f *Formatter) FormatDate(ctx context.Context, storeID catalog.StoreID, value any) (string, error) {
	t, ok, err := parseDate(value)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	store, err := f.stores.GetStore(ctx, storeID)
	if err != nil {
		return "", fmt.Errorf("getting store %d: %w", storeID, err)
	}
	if store == nil {
		return "", fmt.Errorf("getting store %d: %w", storeID, catalog.ErrStoreNotFound)
	}

	location, err := f.location(store.Timezone)
	if err != nil {
		return "", fmt.Errorf("loading time zone for store %d: %w", storeID, err)
	}
	return t.In(location).Format(outputLayout), nil
}

func (f *Formatter) location(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}

	f.locationsMu.RLock()
	location, found := f.locations[name]
	f.locationsMu.RUnlock()
	if found {
		return location, nil
	}

	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}

	f.locationsMu.Lock()
	f.locations[name] = location
	f.locationsMu.Unlock()
	f.logger.Debug("time zone loaded", loglib.Fields{"timezone": name})

	return location, nil
}

// parseDate returns false when the value holds no date.
func parseDate(value any) (time.Time, bool, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return v, !v.IsZero(), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false, nil
		}
		return *v, true, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range inputLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	default:
		return time.Time{}, false, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, value)
	}
}
