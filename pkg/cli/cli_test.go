package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exodash/internal/archive"
	"exodash/internal/domain"
)

func TestFetch_DefaultFilterCSV(t *testing.T) {
	calls := fakeArchive(t)

	out := mustRunCLI(t, "fetch")

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus Kepler-22 b")
	assert.Equal(t, "pl_name", records[0][0])
	assert.Equal(t, "Kepler-22 b", records[1][0])
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_AllJSON(t *testing.T) {
	fakeArchive(t)

	out := mustRunCLI(t, "fetch", "--all", "-o", "json")

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "51 Peg b", rows[1]["pl_name"])
	assert.Equal(t, 150.0, rows[1]["pl_bmasse"])
	assert.Nil(t, rows[2]["sy_dist"])
}

func TestFetch_MethodAndRangeFlags(t *testing.T) {
	fakeArchive(t)

	out := mustRunCLI(t, "fetch", "--method", "Radial Velocity", "--mass-max", "200", "-o", "json")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "51 Peg b", rows[0]["pl_name"])

	out = mustRunCLI(t, "fetch", "--method", "Astrometry", "-o", "json")
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Empty(t, rows)
}

func TestFetch_TableAndLimit(t *testing.T) {
	fakeArchive(t)

	out := mustRunCLI(t, "fetch", "--all", "--limit", "2", "-o", "table")
	assert.Contains(t, out, "Kepler-22 b")
	assert.Contains(t, out, "51 Peg b")
	assert.NotContains(t, out, "HD 1 b")
	assert.Contains(t, out, "(2 rows)")

	out = mustRunCLI(t, "fetch", "--method", "Astrometry", "-o", "table")
	assert.Equal(t, "(0 rows)\n", out)

	out = mustRunCLI(t, "fetch", "--all", "-o", "md")
	assert.Contains(t, out, "| pl_name |")
}

func TestFetch_Errors(t *testing.T) {
	t.Run("negative limit", func(t *testing.T) {
		fakeArchive(t)
		_, _, err := runCLI(t, "fetch", "--limit", "-1")
		require.Error(t, err)
	})

	t.Run("unknown output", func(t *testing.T) {
		fakeArchive(t)
		_, _, err := runCLI(t, "fetch", "-o", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format")
	})

	t.Run("invalid source flag", func(t *testing.T) {
		fakeArchive(t)
		_, _, err := runCLI(t, "fetch", "--source", "ftp")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ARCHIVE_SOURCE")
	})

	t.Run("upstream failure", func(t *testing.T) {
		fakeArchive(t)
		t.Setenv("ARCHIVE_URL", "http://127.0.0.1:1/TAP/sync")
		_, _, err := runCLI(t, "fetch")
		require.Error(t, err)
		var fe *domain.FetchError
		assert.True(t, errors.As(err, &fe), "got %T: %v", err, err)
	})
}

func TestSnapshot_ThenFetchOffline(t *testing.T) {
	calls := fakeArchive(t)
	path := filepath.Join(t.TempDir(), "exo.duckdb")

	mustRunCLI(t, "snapshot", "--out", path)
	assert.Equal(t, int32(1), calls.Load())

	out := mustRunCLI(t, "fetch", "--snapshot", path, "--all", "-o", "json")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 3)
	assert.Equal(t, int32(1), calls.Load(), "offline fetch must not reach the archive")
}

func TestSnapshot_Errors(t *testing.T) {
	fakeArchive(t)

	_, _, err := runCLI(t, "snapshot")
	require.Error(t, err, "--out is required")

	path := filepath.Join(t.TempDir(), "exo.duckdb")
	_, _, err = runCLI(t, "snapshot", "--snapshot", path, "--out", path)
	require.Error(t, err)
	var ve *domain.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestRunScheduled(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("invalid schedule", func(t *testing.T) {
		err := runScheduled(t.Context(), "not a schedule", func(context.Context) error { return nil }, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid schedule")
	})

	t.Run("takes one snapshot before waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		var taken int
		err := runScheduled(ctx, "@daily", func(context.Context) error {
			taken++
			cancel()
			return nil
		}, logger)
		require.NoError(t, err)
		assert.Equal(t, 1, taken)
	})

	t.Run("initial failure stops", func(t *testing.T) {
		boom := errors.New("boom")
		err := runScheduled(t.Context(), "@hourly", func(context.Context) error { return boom }, logger)
		require.ErrorIs(t, err, boom)
	})
}

func TestVersion(t *testing.T) {
	out := mustRunCLI(t, "version")
	assert.Equal(t, "exodash version dev (commit: none)\n", out)

	out = mustRunCLI(t, "version", "-o", "json")
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, "dev", v["version"])
}

func TestCompletion(t *testing.T) {
	out := mustRunCLI(t, "completion", "bash")
	assert.Contains(t, out, "exodash")

	_, _, err := runCLI(t, "completion", "tcsh")
	require.Error(t, err)
}

func TestServe_InvalidConfig(t *testing.T) {
	fakeArchive(t)
	_, _, err := runCLI(t, "serve", "--source", "duckdb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNAPSHOT_PATH")
}

func TestRenderTable_CSVMatchesArchiveEncoding(t *testing.T) {
	tbl, err := archive.DecodeCSV(strings.NewReader(archiveCSV), domain.AllColumns())
	require.NoError(t, err)

	var got strings.Builder
	require.NoError(t, renderTable(&got, tbl, "csv"))
	var want strings.Builder
	require.NoError(t, archive.EncodeCSV(&want, tbl))
	assert.Equal(t, want.String(), got.String())
}

func TestValidateOutputFormat(t *testing.T) {
	for _, f := range []string{"", "table", "csv", "json", "md"} {
		assert.NoError(t, validateOutputFormat(f), f)
	}
	assert.Error(t, validateOutputFormat("yaml"))
}

func TestSamePath(t *testing.T) {
	assert.True(t, samePath("a/b.duckdb", "a/../a/b.duckdb"))
	assert.False(t, samePath("", "x"))
	assert.False(t, samePath("x.duckdb", "y.duckdb"))
}
