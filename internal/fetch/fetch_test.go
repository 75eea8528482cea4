package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFetchWritesDestination ensures a successful download lands at the
// destination with the full body.
func TestFetchWritesDestination(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("binary payload"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "sing-box-1.13.0-linux-amd64v3")

	require.NoError(t, New("").Fetch(context.Background(), server.URL, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "binary payload", string(data))
}

// TestFetchBadStatusLeavesNoFile ensures a non-2xx response produces an
// error naming the URL and leaves nothing at the destination.
func TestFetchBadStatusLeavesNoFile(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "asset")

	err := New("").Fetch(context.Background(), server.URL, dest)
	require.ErrorIs(t, err, ErrBadStatus)
	require.Contains(t, err.Error(), server.URL)

	_, statErr := os.Stat(dest)
	require.ErrorIs(t, statErr, os.ErrNotExist)

	// No stray partial files either.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	require.Empty(t, entries)
}

// TestFetchForwardsToken ensures the auth token is attached to downloads.
func TestFetchForwardsToken(t *testing.T) {
	t.Parallel()

	var auth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "asset")

	require.NoError(t, New("token-456").Fetch(context.Background(), server.URL, dest))
	require.Equal(t, "Bearer token-456", auth)
}
