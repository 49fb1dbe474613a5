package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"storefront-media/internal/repository/artifact"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FileRepository keeps artifacts in one flat directory.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

// Ensure creates the directory tree if needed; an existing directory is success.
func (r *FileRepository) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: failed to create directory %s: %w", artifact.ErrStorageError, r.dir, err)
	}
	return nil
}

// Save writes data to a temporary file in the same directory and renames
// it into place, so readers never observe a half-written artifact.
func (r *FileRepository) Save(ctx context.Context, filename string, data []byte, contentType string) error {
	if err := artifact.ValidateFilename(filename); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", artifact.ErrStorageError, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to write %s: %w", artifact.ErrStorageError, filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to close %s: %w", artifact.ErrStorageError, filename, err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to chmod %s: %w", artifact.ErrStorageError, filename, err)
	}
	if err := os.Rename(tmpName, filepath.Join(r.dir, filename)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: failed to move %s into place: %w", artifact.ErrStorageError, filename, err)
	}

	return nil
}

// Get opens an artifact for reading. The result supports seeking for range requests.
func (r *FileRepository) Get(ctx context.Context, filename string) (io.ReadSeekCloser, error) {
	if err := artifact.ValidateFilename(filename); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(r.dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return nil, artifact.ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", artifact.ErrStorageError, filename, err)
	}
	return f, nil
}

// Delete reports ErrArtifactNotFound for a missing file; callers decide whether that matters.
func (r *FileRepository) Delete(ctx context.Context, filename string) error {
	if err := artifact.ValidateFilename(filename); err != nil {
		return err
	}

	err := os.Remove(filepath.Join(r.dir, filename))
	if errors.Is(err, os.ErrNotExist) {
		return artifact.ErrArtifactNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: failed to delete %s: %w", artifact.ErrStorageError, filename, err)
	}
	return nil
}
