// Ordered map container
// Works like the Golang `map` built-in, but preserves order that key/value
// pairs were added when iterating.

package orderedmap

import (
	wk8orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is the subset of an order-preserving map that project.Index needs: insertion-ordered
// iteration via First/Next alongside normal keyed lookup, so a rule walking "every path" or
// "every schema" sees them in source declaration order instead of Go's randomized map order.
type Map[K comparable, V any] interface {
	Get(K) (V, bool)
	GetOrZero(K) V
	Set(K, V) (V, bool)
	First() Pair[K, V]
}

// Pair is one key/value entry in a Map, chainable via Next to walk the map in order.
type Pair[K comparable, V any] interface {
	Value() V
	Next() Pair[K, V]
}

type wrapOrderedMap[K comparable, V any] struct {
	*wk8orderedmap.OrderedMap[K, V]
}

type wrapPair[K comparable, V any] struct {
	*wk8orderedmap.Pair[K, V]
}

// New creates an ordered map generic object.
func New[K comparable, V any]() Map[K, V] {
	return &wrapOrderedMap[K, V]{
		OrderedMap: wk8orderedmap.New[K, V](),
	}
}

func (o *wrapOrderedMap[K, V]) GetOrZero(k K) V {
	v, ok := o.OrderedMap.Get(k)
	if !ok {
		var zero V
		return zero
	}
	return v
}

func (o *wrapOrderedMap[K, V]) First() Pair[K, V] {
	pair := o.OrderedMap.Oldest()
	if pair == nil {
		return nil
	}
	return &wrapPair[K, V]{
		Pair: pair,
	}
}

func (p *wrapPair[K, V]) Next() Pair[K, V] {
	next := p.Pair.Next()
	if next == nil {
		return nil
	}
	return &wrapPair[K, V]{
		Pair: next,
	}
}

func (p *wrapPair[K, V]) Value() V {
	return p.Pair.Value
}
