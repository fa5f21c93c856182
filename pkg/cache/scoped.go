package cache

// ScopedKeyer wraps a Keyer with a prefix so callers sharing one backend
// get separate namespaces. The API server uses this to keep per-tenant
// entries apart in a shared Redis instance.
//
// Example usage:
//
//	// Tenant-specific keys for private feeds
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Global keys for public feeds
//	globalKeyer := NewDefaultKeyer()
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

// SourceKey generates a prefixed key for raw source payload caching.
func (k *ScopedKeyer) SourceKey(scheme, ref string) string {
	return k.prefix + k.inner.SourceKey(scheme, ref)
}

// FeedKey generates a prefixed key for loaded feed caching.
func (k *ScopedKeyer) FeedKey(source string, opts FeedKeyOpts) string {
	return k.prefix + k.inner.FeedKey(source, opts)
}

// ThreadKey generates a prefixed key for threaded entry list caching.
func (k *ScopedKeyer) ThreadKey(feedHash string, opts ThreadKeyOpts) string {
	return k.prefix + k.inner.ThreadKey(feedHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifact caching.
func (k *ScopedKeyer) ArtifactKey(threadHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(threadHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
