package cache

// ScopedKeyer wraps a Keyer with a prefix, so several users of one shared
// backend keep separate namespaces.
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "serve:")
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

// ScanKey generates a prefixed scan key.
func (k *ScopedKeyer) ScanKey(kind, location string, opts ScanKeyOpts) string {
	return k.prefix + k.inner.ScanKey(kind, location, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(treeHash, opts)
}
