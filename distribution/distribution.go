// Package distribution builds discrete importance distributions that device
// kernels sample with a binary search over the CDF.
package distribution

import (
	"math"
	"sort"
)

// Distribution1D is a piecewise constant distribution over n items.
type Distribution1D struct {
	// CDF has n+1 entries; CDF[0] = 0 and CDF[n] = 1 when n > 0.
	CDF []float32

	// PDF has n entries holding the discrete probability of each item.
	PDF []float32

	// Sum of the (clamped) input weights.
	Sum float32
}

// Build a distribution from per-item weights. Negative weights are treated as
// zero. If the weights sum to zero the distribution falls back to uniform.
func New(weights []float32) *Distribution1D {
	n := len(weights)
	d := &Distribution1D{
		CDF: make([]float32, n+1),
		PDF: make([]float32, n),
	}
	if n == 0 {
		return d
	}

	var sum float64
	for _, w := range weights {
		if w > 0 {
			sum += float64(w)
		}
	}
	d.Sum = float32(sum)

	var acc float64
	for i, w := range weights {
		var p float64
		if sum > 0 {
			p = math.Max(float64(w), 0) / sum
		} else {
			p = 1.0 / float64(n)
		}
		d.PDF[i] = float32(p)
		acc += p
		d.CDF[i+1] = float32(acc)
	}

	// Clamp accumulated rounding error
	d.CDF[n] = 1
	return d
}

// Get the number of items.
func (d *Distribution1D) Len() int {
	return len(d.PDF)
}

// Sample an item index given a uniform sample u in [0, 1). Returns the index
// and its probability. Zero probability items are never selected.
func (d *Distribution1D) Sample(u float32) (int, float32) {
	n := len(d.PDF)
	if n == 0 {
		return -1, 0
	}

	// Find the first CDF entry > u; the item is the one preceding it.
	idx := sort.Search(n, func(i int) bool { return d.CDF[i+1] > u })
	if idx >= n {
		idx = n - 1
	}
	// Skip zero probability items that share a CDF value
	for idx < n-1 && d.PDF[idx] == 0 {
		idx++
	}
	// Trailing zero probability items are never selected
	for idx > 0 && d.PDF[idx] == 0 {
		idx--
	}
	return idx, d.PDF[idx]
}

// Get the size in 32-bit words of the packed representation.
func (d *Distribution1D) PackedLen() int {
	return 1 + len(d.CDF) + len(d.PDF)
}

// Pack the distribution into the device layout: the item count as an int,
// followed by the n+1 CDF values and the n PDF values as float32 bit patterns.
func (d *Distribution1D) Pack() []uint32 {
	out := make([]uint32, 0, d.PackedLen())
	out = append(out, uint32(len(d.PDF)))
	for _, v := range d.CDF {
		out = append(out, math.Float32bits(v))
	}
	for _, v := range d.PDF {
		out = append(out, math.Float32bits(v))
	}
	return out
}
