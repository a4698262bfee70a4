package plan

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Entry describes the resource limits and feature flags of a single tier.
// Trial limits are lifetime caps; starter limits are monthly and renewable.
type Entry struct {
	Limits   map[Resource]int64 // -1 represents unlimited
	Features []Feature
}

// HasFeature reports whether the entry carries the given feature flag.
func (e Entry) HasFeature(f Feature) bool {
	return slices.Contains(e.Features, f)
}

// Catalog is an immutable tier → Entry table. Build it once at startup with
// NewCatalog; lookups never fail after construction succeeds.
type Catalog struct {
	entries map[Tier]Entry
}

// NewCatalog validates and builds a catalog. Every tier must define a limit
// for every known resource so that an unmapped (tier, resource) combination
// is a construction-time error rather than a silent zero.
func NewCatalog(entries map[Tier]Entry) (*Catalog, error) {
	for tier, entry := range entries {
		for _, res := range Resources {
			if _, ok := entry.Limits[res]; !ok {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("tier %s is missing a limit for resource %s", tier, res))
			}
		}
		for res := range entry.Limits {
			if !slices.Contains(Resources, res) {
				return nil, errors.Join(ErrInvalidCatalog,
					fmt.Errorf("tier %s defines unknown resource %s", tier, res))
			}
		}
	}

	copied := make(map[Tier]Entry, len(entries))
	for tier, entry := range entries {
		copied[tier] = Entry{
			Limits:   maps.Clone(entry.Limits),
			Features: slices.Clone(entry.Features),
		}
	}

	return &Catalog{entries: copied}, nil
}

// MustNewCatalog panics on invalid configuration. Misconfigured plan data
// should prevent startup rather than cause runtime errors.
func MustNewCatalog(entries map[Tier]Entry) *Catalog {
	c, err := NewCatalog(entries)
	if err != nil {
		panic(err)
	}
	return c
}

// LimitsFor returns the resource limits for a tier. Unknown tiers get an
// empty limit set, which downstream checks treat as deny.
func (c *Catalog) LimitsFor(tier Tier) map[Resource]int64 {
	entry, ok := c.entries[tier]
	if !ok {
		return map[Resource]int64{}
	}
	return maps.Clone(entry.Limits)
}

// FeaturesFor returns the feature flags enabled for a tier.
func (c *Catalog) FeaturesFor(tier Tier) []Feature {
	entry, ok := c.entries[tier]
	if !ok {
		return nil
	}
	return slices.Clone(entry.Features)
}

// HasFeature reports whether a tier carries a feature flag.
// Unknown tiers report false to fail closed.
func (c *Catalog) HasFeature(tier Tier, f Feature) bool {
	entry, ok := c.entries[tier]
	if !ok {
		return false
	}
	return entry.HasFeature(f)
}

// Limit returns the limit a tier has for a resource. The second return value
// is false when the tier itself is unknown to the catalog.
func (c *Catalog) Limit(tier Tier, res Resource) (int64, bool) {
	entry, ok := c.entries[tier]
	if !ok {
		return 0, false
	}
	limit, ok := entry.Limits[res]
	return limit, ok
}
