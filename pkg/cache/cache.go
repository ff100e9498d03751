// Package cache provides the storage layer for computed layouts and rendered
// artifacts.
//
// A [Cache] stores opaque byte values under string keys with an optional
// TTL. Three backends are provided:
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: hash-sharded JSON files, used by the CLI
//   - [RedisCache]: Redis, used when several server instances share results
//
// Keys are produced by a [Keyer] so that every consumer derives identical
// keys for identical inputs. [ScopedKeyer] prefixes keys to isolate
// namespaces (e.g. one per chart store).
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get returns the value for key. The boolean reports a hit; a miss is
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs for cached values.
const (
	// LayoutTTL is how long computed layouts are kept. Layouts are pure
	// functions of their inputs, so this only bounds disk usage.
	LayoutTTL = 7 * 24 * time.Hour

	// ArtifactTTL is how long rendered artifacts are kept.
	ArtifactTTL = 7 * 24 * time.Hour

	// FetchTTL is how long remotely fetched family documents are kept.
	FetchTTL = 10 * time.Minute
)

// =============================================================================
// Keyer
// =============================================================================

// LayoutKeyOpts holds the inputs besides the family data that determine a
// layout.
type LayoutKeyOpts struct {
	VerticalSpacing    float64
	CardWidth          float64
	SpouseOffset       float64
	MinGapBetweenPairs float64
	GroupGap           float64
}

// ArtifactKeyOpts holds the render options that determine an artifact.
type ArtifactKeyOpts struct {
	Format     string
	Title      string
	Detailed   bool
	LinkPrefix string
}

// Keyer generates cache keys.
type Keyer interface {
	// FetchKey is the key for a remotely fetched family document.
	FetchKey(source string) string

	// LayoutKey is the key for a layout of the family data whose content
	// hash is familyHash.
	LayoutKey(familyHash string, opts LayoutKeyOpts) string

	// ArtifactKey is the key for a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FetchKey returns "fetch:<hash(source)>".
func (DefaultKeyer) FetchKey(source string) string {
	return hashKey("fetch", source)
}

// LayoutKey returns "layout:<hash(familyHash, opts)>".
func (DefaultKeyer) LayoutKey(familyHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", familyHash, opts)
}

// ArtifactKey returns "artifact:<hash(layoutHash, opts)>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
