package mutation

// Sampler is the random-sampling capability Bootstrap depends on. Given
// a total count n and category probabilities p, Multinomial fills out
// with one multinomial draw summing to n. Implementations are not
// required to be safe for concurrent use; give each worker its own
// sampler or serialize access (see package multinomial).
type Sampler interface {
	Multinomial(n uint64, p []float64, out []uint64)
}

// Bootstrap resamples a mutation matrix, Felsenstein style. Because the
// estimators see the alignment only through the ten category counts, a
// replicate of the whole alignment collapses to a single multinomial
// draw of size Total over the empirical category frequencies. The input
// is not modified; the replicate keeps its SeqLen.
//
// The matrix must have a non-zero Total.
func Bootstrap(m Matrix, src Sampler) Matrix {
	nucl := m.Total()

	var p [NumCategories]float64
	for i, c := range m.Counts {
		p[i] = float64(c) / float64(nucl)
	}

	datum := Matrix{SeqLen: m.SeqLen}
	src.Multinomial(nucl, p[:], datum.Counts[:])
	return datum
}
