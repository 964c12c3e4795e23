package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var viewsDir = filepath.Join("..", "viewspec", "testdata", "views")

func executeCatalog(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCatalogCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestCatalogCommand_Text(t *testing.T) {
	buf, err := executeCatalog(t, "text", viewsDir, "--view", "candidates")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "view candidates - Job candidates and their experience\n")
	assert.Contains(t, out, "  filters:\n    from_country(country: str) - Candidates living in the given country\n")
	assert.Contains(t, out, "    min_experience(years: int = 3)")
	assert.Contains(t, out, "    country_in(*countries: str)")
	assert.Contains(t, out, "  actions:\n    sort_by(column: str, descending: bool = False) - Sort by a column\n")
	assert.NotContains(t, out, "view jobs")
}

func TestCatalogCommand_AllViewsJSON(t *testing.T) {
	buf, err := executeCatalog(t, "json", viewsDir)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []CatalogView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, 2)

	byName := map[string]CatalogView{}
	for _, v := range resp.Data {
		byName[v.Name] = v
	}
	jobs, ok := byName["jobs"]
	require.True(t, ok)
	assert.Equal(t, "Open job postings", jobs.Description)
	require.Len(t, jobs.Filters, 2)
	assert.Equal(t, "remote", jobs.Filters[0].Name)
	assert.Equal(t, "title_like(title: str)", jobs.Filters[1].Signature)
	require.Len(t, jobs.Actions, 1)
	assert.Equal(t, "newest()", jobs.Actions[0].Signature)
	assert.Equal(t, "Most recent first", jobs.Actions[0].Description)

	candidates, ok := byName["candidates"]
	require.True(t, ok)
	assert.Len(t, candidates.Filters, 5)
	assert.Len(t, candidates.Actions, 3)
}

func TestCatalogCommand_UnknownView(t *testing.T) {
	buf, err := executeCatalog(t, "text", viewsDir, "--view", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [UNKNOWN_VIEW]")
	assert.Contains(t, buf.String(), `view "nope" not found`)
}

func TestCatalogCommand_MissingDirectory(t *testing.T) {
	buf, err := executeCatalog(t, "text", "/nonexistent/views")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, buf.String(), "not found")
}
