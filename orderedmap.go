package main

// Pair is one entry of an OrderedMap, in iteration order.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// OrderedMap keeps insertion order alongside a hash index. Overwriting an
// existing key keeps its original position.
type OrderedMap[K comparable, V any] struct {
	pos   map[K]int
	pairs []Pair[K, V]
}

func NewOrderedMap[K comparable, V any](sz int) *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		pos:   make(map[K]int, sz),
		pairs: make([]Pair[K, V], 0, sz),
	}
}

func (m *OrderedMap[K, V]) Len() int { return len(m.pairs) }

func (m *OrderedMap[K, V]) Has(k K) bool {
	_, ok := m.pos[k]
	return ok
}

func (m *OrderedMap[K, V]) Get(k K) (v V, ok bool) {
	if p, found := m.pos[k]; found {
		return m.pairs[p].Value, true
	}
	return v, false
}

// Set inserts k at the end, or updates it in place when present.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if p, found := m.pos[k]; found {
		m.pairs[p].Value = v
		return
	}
	m.pos[k] = len(m.pairs)
	m.pairs = append(m.pairs, Pair[K, V]{Key: k, Value: v})
}

// Delete removes k, shifting later entries down one place.
func (m *OrderedMap[K, V]) Delete(k K) bool {
	p, found := m.pos[k]
	if !found {
		return false
	}
	delete(m.pos, k)
	copy(m.pairs[p:], m.pairs[p+1:])
	m.pairs = m.pairs[:len(m.pairs)-1]
	for i := p; i < len(m.pairs); i++ {
		m.pos[m.pairs[i].Key] = i
	}
	return true
}

// Pairs exposes the entries in order. callers must not append to it.
func (m *OrderedMap[K, V]) Pairs() []Pair[K, V] { return m.pairs }

func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key
	}
	return keys
}

func (m *OrderedMap[K, V]) Values() []V {
	vals := make([]V, len(m.pairs))
	for i, p := range m.pairs {
		vals[i] = p.Value
	}
	return vals
}
