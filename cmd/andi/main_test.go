package main

import (
	"bytes"
	"io/ioutil"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schnappi-wkl/andi/mutation"
)

func TestFormatDist(t *testing.T) {
	assert.Equal(t, "0.2000", formatDist(0.2))
	assert.Equal(t, "0.0000", formatDist(0))
	assert.Equal(t, "nan", formatDist(math.NaN()))
}

func TestSquareMatrix(t *testing.T) {
	pairs := []pairResult{
		{i: 0, j: 1, dists: []float64{0.5}},
		{i: 0, j: 2, dists: []float64{0.25}},
		{i: 1, j: 2, dists: []float64{mutation.Undefined}},
	}
	dist := squareMatrix(3, pairs, 0)
	assert.Equal(t, 0.5, dist[0][1])
	assert.Equal(t, 0.5, dist[1][0])
	assert.Equal(t, 0.25, dist[2][0])
	assert.True(t, mutation.IsUndefined(dist[1][2]))
	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.0, dist[i][i])
	}
}

func writeTestFasta(t *testing.T, dir string) string {
	r := rand.New(rand.NewSource(42))
	base := make([]byte, 400)
	for i := range base {
		base[i] = "ACGT"[r.Intn(4)]
	}
	twin := append([]byte(nil), base...)
	diverged := append([]byte(nil), base...)
	for i := 10; i < len(diverged); i += 53 {
		if diverged[i] == 'A' {
			diverged[i] = 'G'
		} else {
			diverged[i] = 'A'
		}
	}

	var buf bytes.Buffer
	for _, s := range []struct {
		name string
		seq  []byte
	}{{"alpha", base}, {"beta", twin}, {"gamma", diverged}} {
		buf.WriteString(">" + s.name + "\n")
		buf.Write(s.seq)
		buf.WriteString("\n")
	}
	path := filepath.Join(dir, "seqs.fa")
	require.NoError(t, ioutil.WriteFile(path, buf.Bytes(), 0644))
	return path
}

func TestRunPhylip(t *testing.T) {
	dir, err := ioutil.TempDir("", "andi-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := writeTestFasta(t, dir)

	flags := andiFlags{model: "jc", kmerLength: 16, minAnchor: 16, seed: 1, parallelism: 2}
	var out bytes.Buffer
	require.NoError(t, run(flags, []string{path}, &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, 4, len(lines))
	assert.Equal(t, "3", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "alpha"))

	// alpha and beta are identical; their distance is zero.
	fields := strings.Fields(lines[1])
	require.Equal(t, 4, len(fields))
	assert.Equal(t, "0.0000", fields[1])
	assert.Equal(t, "0.0000", fields[2])
	assert.NotEqual(t, "0.0000", fields[3])

	// Symmetric matrix: gamma's row mirrors alpha's column.
	gamma := strings.Fields(lines[3])
	assert.Equal(t, fields[3], gamma[1])
}

func TestRunBootstrapReplicates(t *testing.T) {
	dir, err := ioutil.TempDir("", "andi-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := writeTestFasta(t, dir)

	flags := andiFlags{model: "kimura", kmerLength: 16, minAnchor: 16, seed: 1, bootstrap: 3, parallelism: 1}
	var out bytes.Buffer
	require.NoError(t, run(flags, []string{path}, &out))

	// One matrix for the estimate plus one per replicate.
	assert.Equal(t, 4, strings.Count(out.String(), "3\nalpha"))
}

func TestRunTSV(t *testing.T) {
	dir, err := ioutil.TempDir("", "andi-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := writeTestFasta(t, dir)

	flags := andiFlags{model: "raw", kmerLength: 16, minAnchor: 16, seed: 1, bootstrap: 50, tsvOutput: true, parallelism: 2}
	var out bytes.Buffer
	require.NoError(t, run(flags, []string{path}, &out))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, 4, len(lines)) // header + 3 pairs
	assert.Equal(t, "SEQ1\tSEQ2\tMODEL\tDISTANCE\tCOVERAGE\tCI_LOW\tCI_HIGH", lines[0])

	row := strings.Split(lines[1], "\t")
	require.Equal(t, 7, len(row))
	assert.Equal(t, "alpha", row[0])
	assert.Equal(t, "beta", row[1])
	assert.Equal(t, "raw", row[2])
	assert.Equal(t, "0.0000", row[3])
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	err := run(andiFlags{model: "parsimony"}, nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")

	dir, err := ioutil.TempDir("", "andi-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "one.fa")
	require.NoError(t, ioutil.WriteFile(path, []byte(">only\nACGT\n"), 0644))
	err = run(andiFlags{model: "jc", kmerLength: 16, minAnchor: 16}, []string{path}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least two sequences")
}
