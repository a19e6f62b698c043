package metadata_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techjusticelab/opinion-ingest/internal/metadata"
)

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cases.csv")
	content := "case_file_id,title,court,district,county,decision_year,decision_month,publication_status,opinion_type\n" +
		"69423-5,Pub. Util. Dist. No. 1 v. State,Supreme Court,,,2021,6,published,majority\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sheet, err := metadata.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, sheet.Len())

	row, ok := sheet.Lookup("694235")
	require.True(t, ok)
	assert.Equal(t, "Pub. Util. Dist. No. 1 v. State", row.Title)
	assert.Equal(t, "Supreme Court", row.Court)
	assert.Equal(t, 2021, row.DecisionYear)

	_, ok = sheet.Lookup("nonexistent")
	assert.False(t, ok)
}
