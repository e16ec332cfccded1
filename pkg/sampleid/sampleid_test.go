package sampleid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("tumor barcode", func(t *testing.T) {
		id, err := Parse("TCGA-AA-3514-01A")
		require.NoError(t, err)
		assert.Equal(t, "TCGA", id.Project)
		assert.Equal(t, "AA", id.Site)
		assert.Equal(t, "3514", id.Patient)
		assert.Equal(t, "01", id.SampleType)
		assert.Equal(t, "A", id.Vial)
		assert.Equal(t, PrimaryTumor, id.Kind())
		assert.Equal(t, "TCGA-AA-3514", id.PatientKey())
	})

	t.Run("normal barcode with extra fields", func(t *testing.T) {
		id, err := Parse("TCGA-A6-2672-11A-01R-A32Z-07")
		require.NoError(t, err)
		assert.Equal(t, SolidTissueNormal, id.Kind())
		assert.Equal(t, []string{"01R", "A32Z", "07"}, id.Extra)
	})

	t.Run("metastatic is other", func(t *testing.T) {
		id, err := Parse("TCGA-AA-3514-06A")
		require.NoError(t, err)
		assert.Equal(t, Other, id.Kind())
	})

	t.Run("wider site field keeps full patient key", func(t *testing.T) {
		id, err := Parse("TCGA-AAB-3514-01A")
		require.NoError(t, err)
		assert.Equal(t, "TCGA-AAB-3514", id.PatientKey())
	})

	for _, raw := range []string{"TCGA-AA-3514", "TCGA--3514-01A", "TCGA-AA-3514-1", "sample"} {
		t.Run("malformed "+raw, func(t *testing.T) {
			_, err := Parse(raw)
			var malformed *MalformedError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, raw, malformed.Raw)
		})
	}
}

func TestClassify(t *testing.T) {
	tumor, normal, err := Classify([]string{
		"TCGA-AA-0001-01A",
		"TCGA-AA-0001-11A",
		"TCGA-AA-0002-02A",
		"TCGA-AA-0003-01B",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TCGA-AA-0001-01A", "TCGA-AA-0003-01B"}, tumor)
	assert.Equal(t, []string{"TCGA-AA-0001-11A"}, normal)

	_, _, err = Classify([]string{"TCGA-AA-0001-01A", "bad"})
	assert.Error(t, err)
}

func TestPatients(t *testing.T) {
	set, err := Patients([]string{"TCGA-AA-0002-01A", "TCGA-AA-0001-11A", "TCGA-AA-0002-01B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"0001", "0002"}, SortedKeys(set))
}
