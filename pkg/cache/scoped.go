package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each tenant or workspace
// its own cache namespace on a shared backend.
//
// Example usage:
//
//	// Per-team keys on a shared Redis
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:design-system:")
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

// DocumentKey generates a prefixed document key.
func (k *ScopedKeyer) DocumentKey(docHash string) string {
	return k.prefix + k.inner.DocumentKey(docHash)
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(docHash string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(docHash, opts)
}

// ClassificationKey generates a prefixed classification key.
func (k *ScopedKeyer) ClassificationKey(provider, summaryHash string) string {
	return k.prefix + k.inner.ClassificationKey(provider, summaryHash)
}
