package media

import (
	"context"
	"io"

	"storefront-media/internal/domain"
)

type imageProcessor interface {
	Process(ctx context.Context, data []byte, originalName string) (*domain.ProcessingResult, error)
}

type fileRepository interface {
	Get(ctx context.Context, filename string) (io.ReadSeekCloser, error)
	Delete(ctx context.Context, filename string) error
}

type artifactCatalog interface {
	Save(ctx context.Context, rec *domain.ArtifactRecord) error
	GetByFilename(ctx context.Context, filename string) (*domain.ArtifactRecord, error)
	DeleteByFilename(ctx context.Context, filename string) error
}

type eventNotifier interface {
	Publish(ctx context.Context, event domain.ArtifactEvent) error
}
