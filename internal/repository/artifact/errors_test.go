package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilename(t *testing.T) {
	valid := []string{
		"3f1c2d9e-6b1a-4a57-9a8e-1f2b3c4d5e6f.webp",
		"photo.png",
	}
	for _, name := range valid {
		assert.NoError(t, ValidateFilename(name), name)
	}

	invalid := []string{
		"",
		".",
		"..",
		"../etc/passwd",
		"sub/dir.png",
		`..\win.png`,
		".upload-123",
	}
	for _, name := range invalid {
		assert.ErrorIs(t, ValidateFilename(name), ErrInvalidFilename, name)
	}
}
