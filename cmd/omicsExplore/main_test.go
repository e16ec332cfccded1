package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OmicsExplore/pkg/pipeline"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&stderr)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRequiredFlags(t *testing.T) {
	_, _, err := execute(t, "--outputdir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "survgene")

	_, _, err = execute(t, "--survgene", "ETV4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outputdir")
}

func TestMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t,
		"--outputdir", filepath.Join(dir, "out"),
		"--survgene", "ETV4",
		"--expr", filepath.Join(dir, "absent.tsv"),
	)
	var target *pipeline.MissingInputFileError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, filepath.Join(dir, "absent.tsv"), target.Path)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	expr := filepath.Join(dir, "expr.tsv")
	require.NoError(t, os.WriteFile(expr, []byte(
		"sample\tTCGA-AA-0001-01A\tTCGA-AA-0002-01A\tTCGA-AA-0003-01A\tTCGA-AA-0001-11A\tTCGA-AA-0002-11A\tTCGA-AA-0003-11A\n"+
			"ETV4\t4\t1\t6\t1\t1.2\t0.9\n"+
			"GENE_2\t0.1\t0.2\t0.3\t0.3\t0.2\t0.1\n",
	), 0644))
	clin := filepath.Join(dir, "clinical.tsv")
	require.NoError(t, os.WriteFile(clin, []byte(
		"cases.submitter_id\tdemographic.vital_status\tdemographic.days_to_death\tdiagnoses.days_to_last_follow_up\n"+
			"TCGA-AA-0001\tDead\t300\t'--\n"+
			"TCGA-AA-0002\tAlive\t'--\t1000\n"+
			"TCGA-AA-0003\tDead\t200\t'--\n",
	), 0644))
	conf := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(conf, []byte("top_n: 5\n"), 0644))

	out := filepath.Join(dir, "out")
	stdout, stderr, err := execute(t,
		"--outputdir", out, "--survgene", "ETV4",
		"--config", conf, "--expr", expr, "--clinical", clin, "--xlsx",
	)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, filepath.Join(out, "diffexp_heatmap.html"))
	assert.Contains(t, stdout, filepath.Join(out, "ETV4_surv_curve.png"))
	assert.Contains(t, stdout, filepath.Join(out, "dge_results.xlsx"))
	assert.Contains(t, stderr, "Running Step 1")

	html, err := os.ReadFile(filepath.Join(out, "diffexp_heatmap.html"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "Top 5 Differentially expressed genes"))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "omicsExplore version")
}
