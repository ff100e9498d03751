package cache

// ScopedKeyer wraps a Keyer with a prefix so that several namespaces can
// share one backend without colliding, e.g. one per chart store:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "chart:5f0c…:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FetchKey generates a prefixed key for fetched documents.
func (k *ScopedKeyer) FetchKey(source string) string {
	return k.prefix + k.inner.FetchKey(source)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(familyHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(familyHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
