package processor

import "errors"

var (
	ErrProcessing       = errors.New("image processing failed")
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrImageTooLarge    = errors.New("image dimensions too large")
)
