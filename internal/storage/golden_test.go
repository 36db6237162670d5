package storage

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/optim"
	"github.com/san-kum/buoysim/internal/physics"
)

// The default sweep must keep reproducing the reference tool's logs.
func TestDefaultSweepGolden(t *testing.T) {
	if testing.Short() {
		t.Skip("full default sweep")
	}

	c := physics.Default()
	grid, err := optim.NewGrid(c, optim.DefaultDivisions)
	require.NoError(t, err)

	dir := t.TempDir()
	run, err := OpenDir(dir, RunMetadata{})
	require.NoError(t, err)

	log := logrus.New()
	log.SetOutput(io.Discard)

	exp := experiment.New(experiment.Config{
		Constants: c,
		Criteria:  []metrics.Criterion{metrics.Overshoot},
		Begin:     0,
		End:       70,
		Grid:      grid,
		Workers:   4,
	})
	exp.SetLogger(log)
	exp.AddSink(run)

	sum, err := exp.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, run.Finish(sum))

	assert.Equal(t, 110, sum.Evaluated)
	assert.Equal(t, 28, sum.Accepted)

	lines := readLines(t, filepath.Join(dir, SummaryFile))
	require.Len(t, lines, 28)
	assert.Equal(t, bom+"-0.00010080000000000001,-0.0009600000000000001,20.66000000000043,over,9.570942412473471e-05", lines[0])
	assert.Equal(t, "-0.00010080000000000001,-0.0008640000000000001,17.930000000000003,over,0.43268185887198385", lines[1])
	assert.Equal(t, "-1.4400000000000018e-05,-0.0002879999999999999,44.38999999999974,over,0.05569995491800306", lines[27])

	g := control.Gains{K1: -0.00010080000000000001, K2: -0.0009600000000000001}
	detail := readLines(t, filepath.Join(dir, DetailName(g)))
	require.Len(t, detail, 7001)
	assert.Equal(t, bom+"0.0,0.0,0.000355005,0.0,7e-07,0.0071001,", detail[0])
	assert.Equal(t, "0.01,3.55005e-08,0.00071001,3.55005e-06,1.4e-06,0.0142002,", detail[1])
	assert.Equal(t, "69.9999999999989,9.999904290575875,-2.239510075230265e-06,1.464935741248495e-05,-4.4158731642122944e-09,-4.47902015046053e-05,", detail[7000])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	logs := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "log_k1") {
			logs++
		}
	}
	assert.Equal(t, 28, logs)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}
