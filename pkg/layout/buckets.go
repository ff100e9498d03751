package layout

// ordered is a map that remembers key insertion order.
type ordered[K comparable, V any] struct {
	keys []K
	m    map[K][]V
}

func newOrdered[K comparable, V any]() *ordered[K, V] {
	return &ordered[K, V]{m: make(map[K][]V)}
}

func (o *ordered[K, V]) add(k K, v V) {
	if _, ok := o.m[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.m[k] = append(o.m[k], v)
}

func (o *ordered[K, V]) each(fn func(K, []V)) {
	for _, k := range o.keys {
		fn(k, o.m[k])
	}
}

func (o *ordered[K, V]) len() int { return len(o.keys) }
