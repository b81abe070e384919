package main

// andi estimates pairwise evolutionary distances between DNA sequences.
//
// The input is one or more (optionally gzipped) multi-FASTA files; every
// sequence is compared against every other. For each pair, anchors are
// located in both directions (each sequence once as subject), the two
// mutation matrices are pooled, and a distance is estimated under the
// selected substitution model.
//
// Example:
//
//    andi -model jc -bootstrap 100 genomes.fa > dists.phy
//
// The default output is a PHYLIP-style square matrix, followed by one
// matrix per bootstrap replicate. With -tsv, a long-form table with
// coverage and a 95% bootstrap confidence interval per pair is written
// instead.

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
	"gonum.org/v1/gonum/stat"

	"github.com/schnappi-wkl/andi/align"
	"github.com/schnappi-wkl/andi/encoding/fasta"
	"github.com/schnappi-wkl/andi/multinomial"
	"github.com/schnappi-wkl/andi/mutation"
)

// Collection of options set via cmdline flags.
type andiFlags struct {
	model       string
	kmerLength  int
	minAnchor   int
	bootstrap   int
	seed        uint64
	tsvOutput   bool
	parallelism int
}

type sequence struct {
	name string
	seq  []byte
}

// pairResult holds everything computed for one unordered sequence pair:
// the distance from the pooled matrix, plus one distance per bootstrap
// replicate.
type pairResult struct {
	i, j     int
	coverage float64
	dists    []float64 // dists[0] is the estimate, dists[1:] replicates
}

func readSequences(paths []string) ([]sequence, error) {
	var seqs []sequence
	add := func(r io.Reader, label string) error {
		f, err := fasta.New(r)
		if err != nil {
			return fmt.Errorf("%s: %v", label, err)
		}
		for _, name := range f.SeqNames() {
			seq, _ := f.Seq(name)
			seqs = append(seqs, sequence{name: name, seq: seq})
		}
		return nil
	}
	if len(paths) == 0 {
		if err := add(os.Stdin, "stdin"); err != nil {
			return nil, err
		}
		return seqs, nil
	}
	for _, path := range paths {
		in, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		var r io.Reader = in
		if strings.HasSuffix(path, ".gz") {
			gz, err := gzip.NewReader(in)
			if err != nil {
				return nil, fmt.Errorf("%s: %v", path, err)
			}
			r = gz
		}
		if err := add(r, path); err != nil {
			return nil, err
		}
		if err := in.Close(); err != nil {
			return nil, err
		}
	}
	return seqs, nil
}

// comparePair aligns the pair in both directions, pools the two
// matrices and estimates one distance per replicate.
func comparePair(a, b sequence, opts align.Opts, nBoot int, src mutation.Sampler) (float64, []float64) {
	mm := align.Pairwise(a.seq, b.seq, opts).Average(align.Pairwise(b.seq, a.seq, opts))

	dists := make([]float64, nBoot+1)
	dists[0] = mm.Estimate(opts.Model)
	for r := 1; r <= nBoot; r++ {
		if mm.Total() == 0 {
			dists[r] = mutation.Undefined
			continue
		}
		rep := mutation.Bootstrap(mm, src)
		dists[r] = rep.Estimate(opts.Model)
	}
	return mm.Coverage(), dists
}

func formatDist(d float64) string {
	if mutation.IsUndefined(d) {
		return "nan"
	}
	return fmt.Sprintf("%.4f", d)
}

// writePhylip writes one square distance matrix in PHYLIP format.
func writePhylip(w io.Writer, seqs []sequence, dist [][]float64) error {
	buf := bufio.NewWriter(w)
	fmt.Fprintf(buf, "%d\n", len(seqs))
	for i, s := range seqs {
		fmt.Fprintf(buf, "%-10s", s.name)
		for j := range seqs {
			fmt.Fprintf(buf, " %9s", formatDist(dist[i][j]))
		}
		fmt.Fprintln(buf)
	}
	return buf.Flush()
}

// writeTSV writes a long-form table: one row per unordered pair, with
// coverage and the 2.5%/97.5% bootstrap quantiles of the distance.
func writeTSV(w io.Writer, seqs []sequence, model mutation.Model, results []pairResult) error {
	out := tsv.NewWriter(w)
	out.WriteString("SEQ1\tSEQ2\tMODEL\tDISTANCE\tCOVERAGE\tCI_LOW\tCI_HIGH")
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, res := range results {
		ciLow, ciHigh := mutation.Undefined, mutation.Undefined
		if reps := definedDists(res.dists[1:]); len(reps) > 0 {
			sort.Float64s(reps)
			ciLow = stat.Quantile(0.025, stat.Empirical, reps, nil)
			ciHigh = stat.Quantile(0.975, stat.Empirical, reps, nil)
		}
		out.WriteString(seqs[res.i].name)
		out.WriteString(seqs[res.j].name)
		out.WriteString(model.String())
		out.WriteString(formatDist(res.dists[0]))
		out.WriteString(fmt.Sprintf("%.4f", res.coverage))
		out.WriteString(formatDist(ciLow))
		out.WriteString(formatDist(ciHigh))
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

func definedDists(dists []float64) []float64 {
	var out []float64
	for _, d := range dists {
		if !mutation.IsUndefined(d) {
			out = append(out, d)
		}
	}
	return out
}

func run(flags andiFlags, paths []string, w io.Writer) error {
	model, ok := mutation.ParseModel(flags.model)
	if !ok {
		return fmt.Errorf("unknown model %q (want raw, jc or kimura)", flags.model)
	}
	opts := align.DefaultOpts
	opts.KmerLength = flags.kmerLength
	opts.MinAnchorLength = flags.minAnchor
	opts.Model = model

	seqs, err := readSequences(paths)
	if err != nil {
		return err
	}
	if len(seqs) < 2 {
		return fmt.Errorf("need at least two sequences, have %d", len(seqs))
	}
	log.Printf("Comparing %d sequences under the %s model", len(seqs), model)

	var pairs []pairResult
	for i := 0; i < len(seqs); i++ {
		for j := i + 1; j < len(seqs); j++ {
			pairs = append(pairs, pairResult{i: i, j: j})
		}
	}
	parallelism := flags.parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	// One sampler per worker; samplers are not reentrant.
	err = traverse.Each(parallelism, func(jobIdx int) error {
		src := multinomial.New(flags.seed + uint64(jobIdx))
		for pi := jobIdx; pi < len(pairs); pi += parallelism {
			res := &pairs[pi]
			res.coverage, res.dists = comparePair(seqs[res.i], seqs[res.j], opts, flags.bootstrap, src)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if flags.tsvOutput {
		return writeTSV(w, seqs, model, pairs)
	}
	for r := 0; r <= flags.bootstrap; r++ {
		dist := squareMatrix(len(seqs), pairs, r)
		if err := writePhylip(w, seqs, dist); err != nil {
			return err
		}
	}
	return nil
}

// squareMatrix arranges replicate r of every pair into a symmetric
// matrix with a zero diagonal.
func squareMatrix(n int, pairs []pairResult, r int) [][]float64 {
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
	}
	for _, res := range pairs {
		dist[res.i][res.j] = res.dists[r]
		dist[res.j][res.i] = res.dists[r]
	}
	return dist
}

func main() {
	flags := andiFlags{}
	flag.StringVar(&flags.model, "model", "jc", "Substitution model: raw, jc or kimura.")
	flag.IntVar(&flags.kmerLength, "k", align.DefaultOpts.KmerLength, "Length of anchor seed kmers.")
	flag.IntVar(&flags.minAnchor, "min-anchor", align.DefaultOpts.MinAnchorLength, "Minimum anchor length after extension.")
	flag.IntVar(&flags.bootstrap, "bootstrap", 0, "Number of bootstrap replicates.")
	flag.Uint64Var(&flags.seed, "seed", 1, "Random seed for bootstrapping.")
	flag.BoolVar(&flags.tsvOutput, "tsv", false, "Write a long-form TSV table instead of PHYLIP matrices.")
	flag.IntVar(&flags.parallelism, "parallelism", 0, "Number of concurrent pair comparisons (default GOMAXPROCS).")

	cleanup := grail.Init()
	defer cleanup()

	if err := run(flags, flag.Args(), os.Stdout); err != nil {
		log.Fatalf("andi: %v", err)
	}
}
