package cache

import "strings"

// ScopedKeyer puts every key of an inner Keyer under a namespace, so
// several datasets can share one Redis database:
//
//	k := cache.NewScopedKeyer(nil, "agency-north") // "agency-north:page:v1:..."
type ScopedKeyer struct {
	inner     Keyer
	namespace string
}

// NewScopedKeyer scopes inner (DefaultKeyer when nil) to namespace. A
// trailing colon on namespace is ignored; an empty namespace returns inner
// unchanged.
func NewScopedKeyer(inner Keyer, namespace string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	namespace = strings.TrimSuffix(namespace, ":")
	if namespace == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, namespace: namespace}
}

// Namespace returns the key namespace.
func (k *ScopedKeyer) Namespace() string { return k.namespace }

func (k *ScopedKeyer) PageKey(source string, opts PageKeyOpts) string {
	return k.namespace + ":" + k.inner.PageKey(source, opts)
}

func (k *ScopedKeyer) SupportsKey(source string) string {
	return k.namespace + ":" + k.inner.SupportsKey(source)
}
