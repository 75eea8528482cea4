package receipt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadMissing returns ErrNotFound before any install happened.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "state", "installer-state.json"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestSaveLoadRoundtrip persists a receipt into a not-yet-existing
// directory and reads it back.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "state", "installer-state.json"))

	rec := &Receipt{
		Version:         "1.13.0",
		PreviousVersion: "1.12.4",
		Asset:           "sing-box-1.13.0-linux-amd64v3",
		InstalledAt:     time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Save(context.Background(), rec))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, rec, loaded)
}
