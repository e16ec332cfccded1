package clinical

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = "cases.submitter_id\tdemographic.vital_status\tdemographic.days_to_death\tdiagnoses.days_to_last_follow_up\n" +
	"TCGA-AA-0000\tAlive\t'--\t1200\n" +
	"TCGA-AA-0001\tDead\t800\t'--\n" +
	"TCGA-AA-0001\tAlive\t'--\t10\n" +
	"TCGA-AA-0002\tAlive\t'--\t950\n"

func TestParseDeduplicatesKeepingFirst(t *testing.T) {
	tbl, err := Parse(strings.NewReader(table), DefaultKeyColumn)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 1, tbl.Duplicates)

	status, ok := tbl.Get("TCGA-AA-0001", "demographic.vital_status")
	require.True(t, ok)
	assert.Equal(t, "Dead", status)

	death, ok := tbl.Get("TCGA-AA-0000", "demographic.days_to_death")
	require.True(t, ok)
	assert.Equal(t, "'--", death)

	_, ok = tbl.Get("TCGA-AA-0009", "demographic.vital_status")
	assert.False(t, ok)
	assert.Equal(t, []string{"TCGA-AA-0000", "TCGA-AA-0001", "TCGA-AA-0002"}, tbl.Patients())
}

func TestParseCommaInCells(t *testing.T) {
	var diagnoses = "cases.submitter_id\tdiagnoses.primary_diagnosis, text\n" +
		"TCGA-AA-0000\tAdenocarcinoma, NOS\n" +
		"TCGA-AA-0001\tMucinous adenocarcinoma, NOS\n" +
		"TCGA-AA-0002\tAdenocarcinoma, NOS\n"
	for i := 0; i < 200; i++ {
		tbl, err := Parse(strings.NewReader(diagnoses), DefaultKeyColumn)
		require.NoError(t, err, "iteration %d", i)
		value, ok := tbl.Get("TCGA-AA-0001", "diagnoses.primary_diagnosis, text")
		require.True(t, ok)
		require.Equal(t, "Mucinous adenocarcinoma, NOS", value)
	}
}

func TestRequire(t *testing.T) {
	tbl, err := Parse(strings.NewReader(table), DefaultKeyColumn)
	require.NoError(t, err)
	require.NoError(t, tbl.Require("demographic.vital_status", "demographic.days_to_death"))

	err = tbl.Require("demographic.vital_status", "diagnoses.stage", "demographic.race")
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"diagnoses.stage", "demographic.race"}, missing.Missing)
	assert.Contains(t, err.Error(), "diagnoses.stage")
}

func TestMissingKeyColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("patient\tstatus\nP1\tAlive\n"), DefaultKeyColumn)
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{DefaultKeyColumn}, missing.Missing)
}

func TestRead(t *testing.T) {
	var path = filepath.Join(t.TempDir(), "clinical.tsv")
	require.NoError(t, os.WriteFile(path, []byte(table), 0644))
	tbl, err := Read(path, DefaultKeyColumn, nil)
	require.NoError(t, err)
	assert.True(t, tbl.HasPatient("TCGA-AA-0002"))
	assert.True(t, tbl.Has("diagnoses.days_to_last_follow_up"))
}
