package main

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The embedded tree is re-rooted below static/ so the dashboard is
// served at / in production, the same path -dev serves from disk.
func TestEmbeddedStaticServesDashboardAtRoot(t *testing.T) {
	sub, err := fs.Sub(staticFiles, "static")
	require.NoError(t, err)
	srv := http.FileServer(http.FS(sub))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Stacking Monitor")

	// /index.html canonicalizes to / rather than 404ing
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.html", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
}
