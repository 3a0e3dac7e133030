package cache

// ScopedKeyer wraps a Keyer with a prefix so that several projects can
// share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "maps-ci:")
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

// SignatureKey generates a prefixed signature key.
func (k *ScopedKeyer) SignatureKey(imageHash string, opts SignatureKeyOpts) string {
	return k.prefix + k.inner.SignatureKey(imageHash, opts)
}

// CompositeKey generates a prefixed composite key.
func (k *ScopedKeyer) CompositeKey(sourceHashes []string, opts CompositeKeyOpts) string {
	return k.prefix + k.inner.CompositeKey(sourceHashes, opts)
}
