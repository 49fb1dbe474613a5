package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"storefront-media/internal/domain"
	repoArtifact "storefront-media/internal/repository/artifact"

	"github.com/wb-go/wbf/zlog"
)

type MediaUsecase struct {
	processor imageProcessor
	fileRepo  fileRepository
	catalog   artifactCatalog
	notifier  eventNotifier
	resolver  *URLResolver
	logger    *zlog.Zerolog
}

type Option func(*MediaUsecase)

// WithCatalog records every upload so cleanup can retire both artifacts.
func WithCatalog(c artifactCatalog) Option {
	return func(m *MediaUsecase) {
		m.catalog = c
	}
}

func WithNotifier(n eventNotifier) Option {
	return func(m *MediaUsecase) {
		m.notifier = n
	}
}

func NewMediaUsecase(processor imageProcessor, fileRepo fileRepository, resolver *URLResolver, logger *zlog.Zerolog, opts ...Option) *MediaUsecase {
	m := &MediaUsecase{
		processor: processor,
		fileRepo:  fileRepo,
		resolver:  resolver,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UploadImage runs the processor and then, best-effort, the catalog and
// event hooks. Only processor errors are returned.
func (m *MediaUsecase) UploadImage(ctx context.Context, data []byte, originalName string) (*domain.ProcessingResult, error) {
	result, err := m.processor.Process(ctx, data, originalName)
	if err != nil {
		return nil, fmt.Errorf("failed to process image: %w", err)
	}

	winner := result.Winner()

	if m.catalog != nil {
		rec := &domain.ArtifactRecord{
			Filename:     result.Filename,
			Sibling:      result.Sibling(),
			Kind:         result.Kind,
			Format:       winner.Format,
			HasAlpha:     winner.HasAlpha,
			OriginalName: originalName,
			Size:         winner.Size,
			CreatedAt:    time.Now(),
		}
		if err := m.catalog.Save(ctx, rec); err != nil {
			m.logger.Error().Err(err).Str("filename", result.Filename).Msg("Failed to save artifact record")
		}
	}

	m.publish(ctx, domain.ArtifactEvent{
		Type:     domain.EventArtifactStored,
		Filename: result.Filename,
		Sibling:  result.Sibling(),
		Kind:     result.Kind,
		HasAlpha: winner.HasAlpha,
	})

	return result, nil
}

// DeleteImage removes an artifact. It never fails: every problem is logged.
// With a catalog configured the sibling artifact and the record go too.
func (m *MediaUsecase) DeleteImage(ctx context.Context, filename string) {
	if err := repoArtifact.ValidateFilename(filename); err != nil {
		m.logger.Warn().Err(err).Str("filename", filename).Msg("Refusing to delete artifact")
		return
	}

	targets := []string{filename}
	recordKey := ""

	if m.catalog != nil {
		rec, err := m.catalog.GetByFilename(ctx, filename)
		switch {
		case err == nil:
			recordKey = rec.Filename
			for _, name := range []string{rec.Filename, rec.Sibling} {
				if name != "" && name != filename {
					targets = append(targets, name)
				}
			}
		case errors.Is(err, repoArtifact.ErrRecordNotFound):
			m.logger.Debug().Str("filename", filename).Msg("No artifact record")
		default:
			m.logger.Error().Err(err).Str("filename", filename).Msg("Failed to look up artifact record")
		}
	}

	for _, name := range targets {
		m.deleteFile(ctx, name)
	}

	if recordKey != "" {
		if err := m.catalog.DeleteByFilename(ctx, recordKey); err != nil {
			m.logger.Error().Err(err).Str("filename", recordKey).Msg("Failed to delete artifact record")
		}
	}

	m.publish(ctx, domain.ArtifactEvent{
		Type:     domain.EventArtifactDeleted,
		Filename: filename,
	})
}

// OpenImage returns a stored artifact for serving. Unsafe names report
// ErrInvalidFilename, missing ones ErrArtifactNotFound.
func (m *MediaUsecase) OpenImage(ctx context.Context, filename string) (io.ReadSeekCloser, error) {
	if err := repoArtifact.ValidateFilename(filename); err != nil {
		return nil, err
	}
	rc, err := m.fileRepo.Get(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", filename, err)
	}
	return rc, nil
}

func (m *MediaUsecase) deleteFile(ctx context.Context, filename string) {
	err := m.fileRepo.Delete(ctx, filename)
	switch {
	case err == nil:
		m.logger.Info().Str("filename", filename).Msg("Artifact deleted")
	case errors.Is(err, repoArtifact.ErrArtifactNotFound):
		m.logger.Warn().Str("filename", filename).Msg("Artifact already absent")
	default:
		m.logger.Error().Err(err).Str("filename", filename).Msg("Failed to delete artifact")
	}
}

func (m *MediaUsecase) publish(ctx context.Context, event domain.ArtifactEvent) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Publish(ctx, event); err != nil {
		m.logger.Error().Err(err).
			Str("filename", event.Filename).
			Str("event", string(event.Type)).
			Msg("Failed to publish artifact event")
	}
}

func (m *MediaUsecase) ResolveURL(ref string) string {
	return m.resolver.ResolveURL(ref)
}

func (m *MediaUsecase) PublicPath(filename string) string {
	return m.resolver.PublicPath(filename)
}
