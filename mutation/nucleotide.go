// Package mutation collects pairwise nucleotide substitution statistics
// from aligned DNA fragments and estimates evolutionary distances from
// them under the raw, Jukes-Cantor and Kimura two-parameter models.
//
// The central type is Matrix, a vector of ten substitution-category
// counts summarizing an alignment. The counts are a sufficient statistic
// for all three models, which also makes bootstrapping cheap: a
// replicate is a single multinomial draw over the ten categories rather
// than a resample of every aligned position.
package mutation

// These constants have two relevant meanings:
// 1. The natural value for A/C/G/T in a packed 2-bit representation.
// 2. The row/column index into the triangular substitution-category
//    numbering used by Matrix (see category()).

const (
	// BaseA represents an A base.
	BaseA byte = iota
	// BaseC represents an C base.
	BaseC
	// BaseG represents an G base.
	BaseG
	// BaseT represents an T base.
	BaseT
	// BaseX is a catch-all for every non-canonical character: alignment
	// gaps, IUPAC ambiguity codes, padding. Positions classified BaseX
	// are excluded from every count.
	BaseX
)

// NBase is the number of regular base types.
const NBase = 4

var asciiToBase [256]byte

func init() {
	for i := range asciiToBase {
		asciiToBase[i] = BaseX
	}
	asciiToBase['A'] = BaseA
	asciiToBase['a'] = BaseA
	asciiToBase['C'] = BaseC
	asciiToBase['c'] = BaseC
	asciiToBase['G'] = BaseG
	asciiToBase['g'] = BaseG
	asciiToBase['T'] = BaseT
	asciiToBase['t'] = BaseT
}

// Classify maps one alignment character to its 2-bit base code, or to
// BaseX if the character is not a canonical nucleotide.
func Classify(c byte) byte {
	return asciiToBase[c]
}
