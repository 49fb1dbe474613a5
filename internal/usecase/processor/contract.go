package processor

import (
	"context"
	"image"
)

type fileRepository interface {
	Ensure(ctx context.Context) error
	Save(ctx context.Context, filename string, data []byte, contentType string) error
	Delete(ctx context.Context, filename string) error
}

type watermarker interface {
	Apply(img image.Image) (image.Image, error)
}
