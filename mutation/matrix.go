package mutation

// Model selects the substitution model used to turn a Matrix into a
// distance. It also governs the counting strategy for anchor regions:
// see Matrix.CountEqual.
type Model int

const (
	// ModelRaw is the uncorrected substitution rate.
	ModelRaw Model = iota
	// ModelJC is the Jukes-Cantor correction.
	ModelJC
	// ModelKimura is the Kimura two-parameter (K80) correction.
	ModelKimura
)

// AggregateOnly reports whether the model's distance formula depends on
// the four identity categories only through their sum. For such models
// CountEqual may distribute an anchor's length evenly over the identity
// categories instead of inspecting each character. A future model that
// needs the true per-nucleotide composition must return false here.
func (m Model) AggregateOnly() bool {
	switch m {
	case ModelRaw, ModelJC, ModelKimura:
		return true
	}
	return false
}

// ParseModel converts a model name as used on command lines ("raw",
// "jc", "kimura") to a Model.
func ParseModel(s string) (Model, bool) {
	switch s {
	case "raw":
		return ModelRaw, true
	case "jc":
		return ModelJC, true
	case "kimura":
		return ModelKimura, true
	}
	return ModelRaw, false
}

func (m Model) String() string {
	switch m {
	case ModelRaw:
		return "raw"
	case ModelJC:
		return "jc"
	case ModelKimura:
		return "kimura"
	}
	return "unknown"
}

// NumCategories is the number of substitution categories: one per
// unordered pair (including identity) of the four canonical bases.
const NumCategories = NBase * (NBase + 1) / 2

// Substitution categories. The numbering is triangular: for base codes
// hi >= lo the category index is hi*(hi+1)/2 + lo. Substitution
// direction is not observable from a pairwise alignment, so X-to-Y and
// Y-to-X share a category.
const (
	CatAA = iota
	CatAC
	CatCC
	CatAG
	CatCG
	CatGG
	CatAT
	CatCT
	CatGT
	CatTT
)

// category returns the substitution category of two base codes. Both
// arguments must be canonical (not BaseX).
func category(s, q byte) int {
	if q > s {
		s, q = q, s
	}
	return int(s)*(int(s)+1)/2 + int(q)
}

// identity category per base code, in Classify order.
var identityCat = [NBase]int{CatAA, CatCC, CatGG, CatTT}

// Matrix is the mutation matrix: substitution-category counts for one
// pairwise alignment, plus the length of the reference region the
// alignment covers. The zero value with a SeqLen set is an empty matrix
// ready for counting.
type Matrix struct {
	Counts [NumCategories]uint64
	// SeqLen is the total length of the summarized reference region. It
	// is used only for Coverage, never by a distance formula.
	SeqLen uint64
}

// NewMatrix returns an empty matrix summarizing a reference region of
// the given length.
func NewMatrix(seqLen uint64) Matrix {
	return Matrix{SeqLen: seqLen}
}

// Count classifies each aligned position of subject and query and
// increments the matching substitution category. Positions where either
// character is non-canonical contribute to no category. The two
// fragments must have equal length.
func (m *Matrix) Count(subject, query []byte) {
	var local [NumCategories]uint64
	for i := range subject {
		s := Classify(subject[i])
		q := Classify(query[i])
		if s == BaseX || q == BaseX {
			continue
		}
		local[category(s, q)]++
	}
	for i, c := range local {
		m.Counts[i] += c
	}
}

// CountEqual counts an anchor: a fragment where subject and query are
// already known to be identical, so only the identity categories can
// receive increments.
//
// For models whose formulas use the identity counts only in aggregate
// the anchor's length is split evenly over the four identity categories
// without looking at a single character, with the remainder of the
// division going to CatTT. Any estimate derived from such a matrix is
// unchanged by the approximation. Other models pay for an exact
// per-character classification.
func (m *Matrix) CountEqual(model Model, fragment []byte) {
	if model.AggregateOnly() {
		fourth := uint64(len(fragment)) / 4
		m.Counts[CatAA] += fourth
		m.Counts[CatCC] += fourth
		m.Counts[CatGG] += fourth
		m.Counts[CatTT] += fourth + uint64(len(fragment))%4
		return
	}

	var local [NBase]uint64
	for _, c := range fragment {
		b := Classify(c)
		if b == BaseX {
			continue
		}
		local[b]++
	}
	for b, n := range local {
		m.Counts[identityCat[b]] += n
	}
}

// Total returns the number of alignment positions actually classified,
// i.e. the sum of all categories.
func (m *Matrix) Total() uint64 {
	var total uint64
	for _, c := range m.Counts {
		total += c
	}
	return total
}

// Coverage returns the classified fraction of the reference region.
// SeqLen must be non-zero.
func (m *Matrix) Coverage() float64 {
	return float64(m.Total()) / float64(m.SeqLen)
}

// Average pools the statistics of two matrices, summing counts and
// region lengths, and returns the result as a new matrix. Despite the
// name this is an accumulation, kept for continuity with the classical
// presentation; it is commutative and associative.
func (m Matrix) Average(o Matrix) Matrix {
	for i, c := range o.Counts {
		m.Counts[i] += c
	}
	m.SeqLen += o.SeqLen
	return m
}

// sum adds up the counts of the given categories.
func (m *Matrix) sum(cats []int) uint64 {
	var total uint64
	for _, c := range cats {
		total += m.Counts[c]
	}
	return total
}
