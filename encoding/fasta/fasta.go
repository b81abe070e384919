// Package fasta contains code for parsing FASTA files.  Briefly, FASTA
// files consist of a number of named sequences that may be interrupted
// by newlines.  For example:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters
// excluding spaces immediately after '>'.  Any text appearing after a
// space is ignored.  For example, '>chr1 A viral sequence' becomes
// 'chr1'.
package fasta

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

const maxLineSize = 1024 * 1024 * 16 // 16 MB

// Fasta holds a set of named sequences read fully into memory.
type Fasta struct {
	seqs     map[string][]byte
	seqNames []string
}

// New reads all FASTA data from r. Sequences are stored as contiguous
// byte slices with line breaks removed.
func New(r io.Reader) (*Fasta, error) {
	f := &Fasta{seqs: make(map[string][]byte)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	var seqName string
	var seq []byte
	flush := func() error {
		if len(seq) == 0 {
			return nil
		}
		if seqName == "" {
			return errors.New("malformed FASTA data: sequence before first header")
		}
		if _, ok := f.seqs[seqName]; ok {
			return errors.Errorf("duplicate sequence name: %s", seqName)
		}
		f.seqs[seqName] = seq
		f.seqNames = append(f.seqNames, seqName)
		seq = nil
		return nil
	}
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			if err := flush(); err != nil {
				return nil, err
			}
			fields := bytes.Fields(line[1:])
			if len(fields) == 0 {
				return nil, errors.New("malformed FASTA data: empty sequence name")
			}
			seqName = string(fields[0])
		} else {
			seq = append(seq, line...)
		}
	}
	if scanner.Err() != nil {
		return nil, errors.Wrap(scanner.Err(), "couldn't read FASTA data")
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return f, nil
}

// Seq returns the full sequence with the given name. The returned slice
// is shared, not copied.
func (f *Fasta) Seq(seqName string) ([]byte, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return nil, errors.Errorf("sequence not found: %s", seqName)
	}
	return s, nil
}

// Len returns the length of the given sequence.
func (f *Fasta) Len(seqName string) (int, error) {
	s, ok := f.seqs[seqName]
	if !ok {
		return 0, errors.Errorf("sequence not found: %s", seqName)
	}
	return len(s), nil
}

// SeqNames returns the names of all sequences, in the order of
// appearance in the FASTA data.
func (f *Fasta) SeqNames() []string {
	return f.seqNames
}
