package category

import "math"

// Vector is a score per category, aligned to the category index.
type Vector [Count]float64

// FromSlice converts a slice of exactly Count components. ok is false when the
// length differs.
func FromSlice(values []float64) (v Vector, ok bool) {
	if len(values) != Count {
		return v, false
	}
	copy(v[:], values)
	return v, true
}

// Coerce builds a vector from an arbitrary slice: missing components and
// non-finite values become 0, extra components are dropped. coerced reports
// whether any adjustment was needed.
func Coerce(values []float64) (v Vector, coerced bool) {
	if len(values) != Count {
		coerced = true
	}
	for i := 0; i < Count && i < len(values); i++ {
		x := values[i]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			coerced = true
			continue
		}
		v[i] = x
	}
	return v, coerced
}

// Slice returns a copy of the components.
func (v Vector) Slice() []float64 {
	out := make([]float64, Count)
	copy(out, v[:])
	return out
}

// Get returns the component for c.
func (v Vector) Get(c Category) float64 { return v[c] }

// Finite reports whether every component is a finite number.
func (v Vector) Finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// IsZero reports whether every component is 0.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Max returns the largest component.
func (v Vector) Max() float64 {
	top := v[0]
	for _, x := range v[1:] {
		if x > top {
			top = x
		}
	}
	return top
}

// Dot returns the dot product of v and w.
func (v Vector) Dot(w Vector) float64 {
	var sum float64
	for i := range v {
		sum += v[i] * w[i]
	}
	return sum
}

// Norm returns the euclidean length of v.
func (v Vector) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Map returns the components keyed by category identifier.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, Count)
	for i, x := range v {
		m[Category(i).ID()] = x
	}
	return m
}

// Cosine returns the cosine similarity of u and c in [-1, 1]. A zero-length
// vector carries no direction, so the similarity is 0.
func Cosine(u, c Vector) float64 {
	nu, nc := u.Norm(), c.Norm()
	if nu == 0 || nc == 0 {
		return 0
	}
	s := u.Dot(c) / (nu * nc)
	return math.Max(-1, math.Min(1, s))
}
