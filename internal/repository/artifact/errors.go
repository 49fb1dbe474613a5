package artifact

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrRecordNotFound   = errors.New("artifact record not found")
	ErrInvalidFilename  = errors.New("invalid artifact filename")
	ErrStorageError     = errors.New("storage error")
)

// ValidateFilename accepts only flat names: no separators, no dot segments.
func ValidateFilename(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidFilename
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidFilename
	}
	if strings.HasPrefix(name, ".") {
		return ErrInvalidFilename
	}
	return nil
}
