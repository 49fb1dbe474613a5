package upload

import "errors"

var (
	ErrMissingFile   = errors.New("no image file provided")
	ErrNotImage      = errors.New("only image files are allowed")
	ErrFileTooLarge  = errors.New("file too large")
	ErrInvalidUpload = errors.New("invalid upload request")
)
