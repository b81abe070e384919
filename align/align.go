// Package align locates anchors between two DNA sequences and distills
// the resulting homologies into a mutation matrix.
//
// An anchor is a region where subject and query match exactly.  Anchors
// are seeded by k-mers that occur exactly once in the subject and are
// chained left to right.  When two consecutive anchors sit on the same
// alignment diagonal, the region between them is an ungapped alignment
// and its substitutions are counted; regions between anchors on
// different diagonals contain indels and stay uncovered.
package align

import (
	"github.com/schnappi-wkl/andi/mutation"
)

// Opts configures anchor finding.
type Opts struct {
	// KmerLength is the seed length. Seeds are packed 2 bits per base,
	// so the length is capped at 31.
	KmerLength int
	// MinAnchorLength discards anchors shorter than this after
	// extension. Short random matches between unrelated regions inflate
	// the substitution counts.
	MinAnchorLength int
	// Model is the active substitution model; it decides how anchor
	// regions are counted (see mutation.Matrix.CountEqual).
	Model mutation.Model
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	KmerLength:      16,
	MinAnchorLength: 16,
	Model:           mutation.ModelJC,
}

// nonUnique marks a k-mer seen at more than one subject position.
const nonUnique = -1

// indexKmers maps every packed k-mer of seq that occurs exactly once to
// its position. Windows containing a non-canonical base are skipped.
func indexKmers(seq []byte, k int) map[uint64]int {
	idx := make(map[uint64]int)
	mask := uint64(1)<<(2*uint(k)) - 1
	var kmer uint64
	valid := 0
	for i := 0; i < len(seq); i++ {
		b := mutation.Classify(seq[i])
		if b == mutation.BaseX {
			valid = 0
			continue
		}
		kmer = (kmer<<2 | uint64(b)) & mask
		valid++
		if valid < k {
			continue
		}
		if _, ok := idx[kmer]; ok {
			idx[kmer] = nonUnique
		} else {
			idx[kmer] = i - k + 1
		}
	}
	return idx
}

// Pairwise aligns query against subject anchor by anchor and returns
// the mutation matrix of the homologous regions. The matrix's SeqLen is
// the subject length, so its Coverage reports the aligned fraction of
// the subject.
func Pairwise(subject, query []byte, opts Opts) mutation.Matrix {
	k := opts.KmerLength
	mm := mutation.NewMatrix(uint64(len(subject)))
	if k <= 0 || k > 31 || len(subject) < k || len(query) < k {
		return mm
	}
	idx := indexKmers(subject, k)

	mask := uint64(1)<<(2*uint(k)) - 1
	var kmer uint64
	valid := 0
	sCursor, qCursor := 0, 0
	haveAnchor := false
	for qi := 0; qi < len(query); qi++ {
		b := mutation.Classify(query[qi])
		if b == mutation.BaseX {
			valid = 0
			continue
		}
		kmer = (kmer<<2 | uint64(b)) & mask
		valid++
		if valid < k {
			continue
		}
		qStart := qi - k + 1
		sStart, ok := idx[kmer]
		if !ok || sStart == nonUnique || sStart < sCursor {
			continue
		}

		// Extend the seed while the bases keep matching: forward to the
		// first mismatch, backward no further than the previous anchor.
		sEnd, qEnd := sStart+k, qStart+k
		for sEnd < len(subject) && qEnd < len(query) {
			sb := mutation.Classify(subject[sEnd])
			if sb == mutation.BaseX || sb != mutation.Classify(query[qEnd]) {
				break
			}
			sEnd++
			qEnd++
		}
		for sStart > sCursor && qStart > qCursor {
			sb := mutation.Classify(subject[sStart-1])
			if sb == mutation.BaseX || sb != mutation.Classify(query[qStart-1]) {
				break
			}
			sStart--
			qStart--
		}
		if sEnd-sStart < opts.MinAnchorLength {
			continue
		}

		// A gap of equal length on both sides is an ungapped aligned
		// region; count its substitutions. Unequal gaps contain indels
		// and are left uncovered.
		if haveAnchor && sStart-sCursor == qStart-qCursor {
			mm.Count(subject[sCursor:sStart], query[qCursor:qStart])
		}
		mm.CountEqual(opts.Model, subject[sStart:sEnd])

		sCursor, qCursor = sEnd, qEnd
		haveAnchor = true
		valid = 0
		qi = qEnd - 1
	}
	return mm
}
