package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const archiveCSV = `pl_name,hostname,discoverymethod,sy_dist,pl_bmasse,pl_rade,pl_orbper,pl_trandep,pl_trandur,st_teff,st_lum,st_rad,sy_gaiamag
"Kepler-22 b",Kepler-22,Transit,190.0,9.1,2.1,289.86,0.049,7.4,5518,-0.1,0.98,11.5
"51 Peg b","51 Peg","Radial Velocity",15.46,150.0,13.9,4.23,,,5768,0.13,1.15,5.3
"HD 1 b","HD 1",Imaging,,8.0,1.0,100,,,,,,
`

// fakeArchive serves archiveCSV from a TAP-like endpoint and points
// ARCHIVE_URL at it.
func fakeArchive(t *testing.T) *atomic.Int32 {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if !strings.HasPrefix(r.URL.Query().Get("query"), "SELECT ") {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(archiveCSV))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("ARCHIVE_SOURCE", "tap")
	t.Setenv("ARCHIVE_URL", srv.URL+"/TAP/sync")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("EXODASH_CONFIG", "")
	return &calls
}

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(t.Context())
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, stderr, err := runCLI(t, args...)
	require.NoError(t, err, "stderr: %s", stderr)
	return out
}
