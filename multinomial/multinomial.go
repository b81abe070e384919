// Package multinomial draws multinomial random variates. It backs the
// bootstrap resampling of mutation matrices but is independent of that
// use.
package multinomial

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws multinomial variates by sequential binomial
// decomposition: category i receives a binomial draw of the not yet
// assigned total, conditioned on the remaining probability mass. This
// is the standard conditional method (also used by GSL's
// gsl_ran_multinomial).
//
// A Sampler is not safe for concurrent use. Use one per goroutine, or
// guard a shared one with a mutex.
type Sampler struct {
	src rand.Source
}

// New returns a sampler seeded with the given value.
func New(seed uint64) *Sampler {
	return &Sampler{src: rand.NewSource(seed)}
}

// NewSource returns a sampler drawing from the given source.
func NewSource(src rand.Source) *Sampler {
	return &Sampler{src: src}
}

// Multinomial fills out with one multinomial draw of size n over the
// category weights p. The weights need not be normalized; entries must
// be non-negative with a positive sum. out must have the same length
// as p.
func (s *Sampler) Multinomial(n uint64, p []float64, out []uint64) {
	var norm float64
	for _, v := range p {
		norm += v
	}

	rest := n
	var used float64
	last := -1 // index of the last category with positive weight
	for i, pi := range p {
		out[i] = 0
		if pi > 0 {
			last = i
		}
		if rest == 0 || pi <= 0 {
			used += pi
			continue
		}
		cond := pi / (norm - used)
		// Rounding can push the conditional probability out of (0, 1);
		// anything at or beyond 1 means the remaining mass is all here.
		if !(cond > 0.0) || cond >= 1.0 {
			out[i] = rest
			rest = 0
			used += pi
			continue
		}
		bin := distuv.Binomial{N: float64(rest), P: cond, Src: s.src}
		k := uint64(bin.Rand())
		if k > rest {
			k = rest
		}
		out[i] = k
		rest -= k
		used += pi
	}
	// Rounding in the conditional probabilities can leave a remainder
	// unassigned; it belongs to the last weighted category.
	if rest > 0 && last >= 0 {
		out[last] += rest
	}
}
