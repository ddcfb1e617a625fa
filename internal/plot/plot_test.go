package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAccountSpend(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "accounts.csv",
		"year,month,person,spend\n"+
			"2026,07,lab,\"$1,000.00\"\n"+
			"2026,08,lab,$500.00\n"+
			"2026,08,web,$10.00\n")

	out, err := AccountSpend(csvPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(csvPath), "accounts.png"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data[:4], "output is not a PNG")
}

func TestOrgSpend(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "org.csv",
		"year,month,lab or PI,project,spend,num accounts\n"+
			"2026,08,ROOT,lab,$75.00,2\n")

	out, err := OrgSpend(csvPath)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestSumByGroup(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "accounts.csv",
		"year,month,person,spend\n"+
			"2026,07,lab,\"$1,000.50\"\n"+
			"2026,08,lab,$99.50\n"+
			"2026,08,web,$10.00\n"+
			"2026,08,bad,not-a-number\n")

	groups, err := sumByGroup(csvPath, "person")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "lab", groups[0].name)
	assert.InDelta(t, 1100.0, groups[0].spend, 0.001)
	assert.Equal(t, "web", groups[1].name)
}

func TestRenderEmptyCSV(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "accounts.csv", "year,month,person,spend\n")
	_, err := AccountSpend(csvPath)
	require.Error(t, err)
}

func TestRenderMissingColumn(t *testing.T) {
	csvPath := writeCSV(t, t.TempDir(), "accounts.csv", "a,b\n1,2\n")
	_, err := AccountSpend(csvPath)
	require.Error(t, err)
}
