package mutation

import "math"

// Estimators return NaN when the statistics are insufficient: fewer
// than four classified positions, or a divergence so high that the
// model's log correction has no real solution. NaN is the only failure
// signal; check it with IsUndefined.

// Undefined is the distance returned when an estimate does not exist.
var Undefined = math.NaN()

// IsUndefined reports whether d is the undefined-distance sentinel.
func IsUndefined(d float64) bool {
	return math.IsNaN(d)
}

var (
	substitutionCats = []int{CatAC, CatAG, CatAT, CatCG, CatCT, CatGT}
	transitionCats   = []int{CatAG, CatCT}
	transversionCats = []int{CatAC, CatAT, CatCG, CatGT}
)

// EstimateRaw returns the uncorrected substitution rate: mismatches
// over classified positions, in [0, 1). Fewer than four classified
// positions are not considered a meaningful sample.
func (m *Matrix) EstimateRaw() float64 {
	nucl := m.Total()
	if nucl <= 3 {
		return Undefined
	}
	snps := m.sum(substitutionCats)
	return float64(snps) / float64(nucl)
}

// EstimateJC returns the Jukes-Cantor corrected distance,
// -3/4 * ln(1 - 4/3 * d_raw). Saturated alignments (raw distance of
// 0.75 or more) have no JC distance.
func (m *Matrix) EstimateJC() float64 {
	raw := m.EstimateRaw()
	if IsUndefined(raw) {
		return Undefined
	}
	arg := 1.0 - (4.0/3.0)*raw
	if arg <= 0.0 {
		return Undefined
	}
	return clampNegativeZero(-0.75 * math.Log(arg))
}

// EstimateKimura returns the Kimura two-parameter (K80) distance,
// -1/4 * ln((1-2Q) * (1-2P-Q)^2) with P the transition and Q the
// transversion rate. Either factor falling outside the log domain
// leaves the distance undefined.
func (m *Matrix) EstimateKimura() float64 {
	nucl := m.Total()
	if nucl <= 3 {
		return Undefined
	}
	p := float64(m.sum(transitionCats)) / float64(nucl)
	q := float64(m.sum(transversionCats)) / float64(nucl)

	a := 1.0 - 2.0*q
	b := 1.0 - 2.0*p - q
	if a <= 0.0 || b <= 0.0 {
		return Undefined
	}
	return clampNegativeZero(-0.25 * math.Log(a*b*b))
}

// Estimate applies the model's estimator to the matrix.
func (m *Matrix) Estimate(model Model) float64 {
	switch model {
	case ModelRaw:
		return m.EstimateRaw()
	case ModelJC:
		return m.EstimateJC()
	case ModelKimura:
		return m.EstimateKimura()
	}
	return Undefined
}

// clampNegativeZero fixes tiny negative results produced by rounding
// when the true distance is zero. NaN passes through.
func clampNegativeZero(d float64) float64 {
	if d <= 0.0 {
		return 0.0
	}
	return d
}
