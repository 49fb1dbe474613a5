package upload

import (
	"context"
	"io"

	"storefront-media/internal/domain"
)

type mediaUsecase interface {
	UploadImage(ctx context.Context, data []byte, originalName string) (*domain.ProcessingResult, error)
	DeleteImage(ctx context.Context, filename string)
	OpenImage(ctx context.Context, filename string) (io.ReadSeekCloser, error)
	PublicPath(filename string) string
}
