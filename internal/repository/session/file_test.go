package session

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Koora7334/minecraft-launcher-core/internal/service/yggdrasil"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))

	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal session.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "launcher", "session.json")
	repo := NewFileRepository(file)

	want := yggdrasil.OfflineSession("Steve")
	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(file)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm(),
			"session files hold access tokens and must be owner-only")
	}
}

func TestFileRepository_SaveNil(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "session.json"))
	require.ErrorIs(t, repo.Save(context.Background(), nil), errNothingToSave)
}

func TestFileRepository_Clear(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "session.json")
	repo := NewFileRepository(file)

	require.NoError(t, repo.Save(context.Background(), yggdrasil.OfflineSession("Steve")))
	require.NoError(t, repo.Clear(context.Background()))

	_, err := os.Stat(file)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, repo.Clear(context.Background()), "clearing an absent session is not an error")
}

func TestFileRepository_LoadCorrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(file, []byte("{ not json"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
