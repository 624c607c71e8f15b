package api

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

const snapshotKey = "countries"

// CountrySnapshot caches the country catalogue read from the store. Each
// call to Countries hands out fresh records, so no caller can mutate the
// cached copy or observe another request's edits.
type CountrySnapshot struct {
	store store.Store
	cache *gocache.Cache
	ttl   time.Duration
}

func NewCountrySnapshot(s store.Store, ttl time.Duration) *CountrySnapshot {
	return &CountrySnapshot{
		store: s,
		cache: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Countries returns the catalogue, loading it from the store on a miss. A
// non-positive TTL disables caching.
func (c *CountrySnapshot) Countries(ctx context.Context) ([]*store.Country, error) {
	if c.ttl > 0 {
		if v, found := c.cache.Get(snapshotKey); found {
			snapshotLookups.WithLabelValues("hit").Inc()
			return cloneCountries(v.([]*store.Country)), nil
		}
	}
	snapshotLookups.WithLabelValues("miss").Inc()

	countries, err := c.store.ListCountries(ctx)
	if err != nil {
		return nil, err
	}
	if c.ttl > 0 {
		c.cache.Set(snapshotKey, cloneCountries(countries), c.ttl)
	}
	return countries, nil
}

// Invalidate drops the cached catalogue.
func (c *CountrySnapshot) Invalidate() {
	c.cache.Delete(snapshotKey)
}

func cloneCountries(in []*store.Country) []*store.Country {
	out := make([]*store.Country, 0, len(in))
	for _, c := range in {
		cp := *c
		cp.Values = make(map[string]float64, len(c.Values))
		for k, v := range c.Values {
			cp.Values[k] = v
		}
		out = append(out, &cp)
	}
	return out
}
