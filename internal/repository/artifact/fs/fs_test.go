package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"storefront-media/internal/repository/artifact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepository_Ensure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	repo := NewFileRepository(dir)

	require.NoError(t, repo.Ensure(context.Background()))
	require.NoError(t, repo.Ensure(context.Background()), "existing directory is not an error")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFileRepository_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewFileRepository(dir)
	require.NoError(t, repo.Ensure(ctx))

	require.NoError(t, repo.Save(ctx, "a.png", []byte("payload"), "image/png"))

	rc, err := repo.Get(ctx, "a.png")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, repo.Delete(ctx, "a.png"))

	_, err = repo.Get(ctx, "a.png")
	assert.ErrorIs(t, err, artifact.ErrArtifactNotFound)
}

func TestFileRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(t.TempDir())

	assert.ErrorIs(t, repo.Delete(ctx, "nope.webp"), artifact.ErrArtifactNotFound)

	_, err := repo.Get(ctx, "nope.webp")
	assert.ErrorIs(t, err, artifact.ErrArtifactNotFound)
}

func TestFileRepository_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	repo := NewFileRepository(filepath.Join(root, "uploads"))
	require.NoError(t, repo.Ensure(ctx))

	err := repo.Save(ctx, "../escape.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, artifact.ErrInvalidFilename)

	_, statErr := os.Stat(filepath.Join(root, "escape.png"))
	assert.True(t, os.IsNotExist(statErr))

	assert.ErrorIs(t, repo.Delete(ctx, "../uploads"), artifact.ErrInvalidFilename)

	_, err = repo.Get(ctx, "../uploads/x.png")
	assert.ErrorIs(t, err, artifact.ErrInvalidFilename)
}

func TestFileRepository_SaveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewFileRepository(t.TempDir())
	assert.ErrorIs(t, repo.Save(ctx, "a.png", []byte("x"), "image/png"), context.Canceled)
}
