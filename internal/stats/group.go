package stats

import (
	"math"
	"sort"
)

// Key is a composite group-by key: (application, entity id, entity name).
// Single-column groupings leave ID and Name empty.
type Key struct {
	App  string
	ID   string
	Name string
}

// Less orders keys lexicographically by App, ID, then Name.
func (k Key) Less(o Key) bool {
	if k.App != o.App {
		return k.App < o.App
	}
	if k.ID != o.ID {
		return k.ID < o.ID
	}
	return k.Name < o.Name
}

// Groups maps keys to per-group accumulators of type V.
type Groups[V any] struct {
	index map[Key]*V
	keys  []Key
	init  func() *V
}

// NewGroups returns an empty Groups that builds a fresh accumulator with init
// the first time a key is seen.
func NewGroups[V any](init func() *V) *Groups[V] {
	return &Groups[V]{index: make(map[Key]*V), init: init}
}

// At returns the accumulator for k, creating it on first use.
func (g *Groups[V]) At(k Key) *V {
	if v, ok := g.index[k]; ok {
		return v
	}
	v := g.init()
	g.index[k] = v
	g.keys = append(g.keys, k)
	return v
}

// Len returns the number of distinct keys seen.
func (g *Groups[V]) Len() int { return len(g.keys) }

// Each calls fn for every group in ascending key order.
func (g *Groups[V]) Each(fn func(Key, *V)) {
	keys := make([]Key, len(g.keys))
	copy(keys, g.keys)
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		fn(k, g.index[k])
	}
}

// Acc accumulates sum, count and max over the non-NaN values added to it.
type Acc struct {
	sum float64
	n   int
	max float64
}

// Add folds v into the accumulator. NaN is ignored.
func (a *Acc) Add(v float64) {
	if math.IsNaN(v) {
		return
	}
	if a.n == 0 || v > a.max {
		a.max = v
	}
	a.sum += v
	a.n++
}

// Count is the number of non-NaN values added.
func (a *Acc) Count() int { return a.n }

// Sum is the total of the non-NaN values added.
func (a *Acc) Sum() float64 { return a.sum }

// Mean is Sum/Count, or NaN when nothing was added.
func (a *Acc) Mean() float64 {
	if a.n == 0 {
		return math.NaN()
	}
	return a.sum / float64(a.n)
}

// Max is the largest value added, or NaN when nothing was added.
func (a *Acc) Max() float64 {
	if a.n == 0 {
		return math.NaN()
	}
	return a.max
}

// First keeps the first non-NaN value it is offered.
type First struct {
	v   float64
	set bool
}

// Offer records v if no value has been recorded yet. NaN is ignored.
func (f *First) Offer(v float64) {
	if f.set || math.IsNaN(v) {
		return
	}
	f.v = v
	f.set = true
}

// Value returns the recorded value, or NaN if none was offered.
func (f *First) Value() float64 {
	if !f.set {
		return math.NaN()
	}
	return f.v
}

// OptFloat returns a pointer to v, or nil when v is NaN.
func OptFloat(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
