package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"storefront-media/internal/domain"
	"storefront-media/internal/usecase/processor/operations"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"
	_ "golang.org/x/image/webp"
)

// Sources above this pixel count are refused before full decode.
const maxSourcePixels = 64_000_000

type ImageProcessor struct {
	resizer     *operations.Resizer
	encoder     *operations.Encoder
	watermarker watermarker
	fileRepo    fileRepository
	logger      *zlog.Zerolog
}

type Option func(*ImageProcessor)

func WithWatermarker(w watermarker) Option {
	return func(p *ImageProcessor) {
		p.watermarker = w
	}
}

func NewImageProcessor(fileRepo fileRepository, logger *zlog.Zerolog, opts ...Option) *ImageProcessor {
	p := &ImageProcessor{
		resizer:  operations.NewResizer(domain.MaxWidth, domain.MaxHeight),
		encoder:  operations.NewEncoder(),
		fileRepo: fileRepo,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process turns an uploaded buffer into stored artifacts. Every failure is
// reported as ErrProcessing; when the alternate fails after the primary was
// written, the primary is removed before returning.
func (p *ImageProcessor) Process(ctx context.Context, data []byte, originalName string) (*domain.ProcessingResult, error) {
	if err := p.fileRepo.Ensure(ctx); err != nil {
		return nil, p.fail("ensure storage", originalName, err)
	}

	primaryID := uuid.New().String()
	alternateID := uuid.New().String()

	img, format, err := p.decode(data)
	if err != nil {
		return nil, p.fail("decode", originalName, err)
	}

	hasAlpha := operations.HasAlpha(img)
	resized := p.resizer.Fit(img)

	if p.watermarker != nil {
		resized, err = p.watermarker.Apply(resized)
		if err != nil {
			return nil, p.fail("watermark", originalName, err)
		}
	}

	p.logger.Debug().
		Str("original_name", originalName).
		Str("format", string(format)).
		Bool("has_alpha", hasAlpha).
		Int("width", resized.Bounds().Dx()).
		Int("height", resized.Bounds().Dy()).
		Msg("Image decoded")

	primaryName := primaryID + primaryExtension(originalName, format)
	primary, err := p.store(ctx, resized, primaryName, format, domain.PrimaryQuality, domain.KindPrimary, hasAlpha)
	if err != nil {
		return nil, p.fail("store primary", originalName, err)
	}

	if hasAlpha {
		result := domain.NewProcessingResult(*primary, nil)
		p.logCompleted(originalName, result)
		return result, nil
	}

	alternateName := alternateID + domain.AlternateExt
	alternate, err := p.store(ctx, resized, alternateName, domain.FormatWebP, domain.AlternateQuality, domain.KindAlternate, hasAlpha)
	if err != nil {
		p.discard(ctx, primaryName)
		return nil, p.fail("store alternate", originalName, err)
	}

	result := domain.NewProcessingResult(*primary, alternate)
	p.logCompleted(originalName, result)
	return result, nil
}

func (p *ImageProcessor) decode(data []byte) (image.Image, domain.ImageFormat, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image header: %w", err)
	}

	format, ok := domain.ParseFormat(name)
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxSourcePixels {
		return nil, "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	return img, format, nil
}

func (p *ImageProcessor) store(ctx context.Context, img image.Image, filename string, format domain.ImageFormat, quality int, kind domain.ArtifactKind, hasAlpha bool) (*domain.StoredArtifact, error) {
	encoded, err := p.encoder.Encode(img, format, quality)
	if err != nil {
		return nil, err
	}

	if err := p.fileRepo.Save(ctx, filename, encoded, format.ContentType()); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", filename, err)
	}

	p.logger.Debug().
		Str("filename", filename).
		Str("kind", string(kind)).
		Int("size", len(encoded)).
		Msg("Artifact saved")

	return &domain.StoredArtifact{
		Filename:    filename,
		Kind:        kind,
		Format:      format,
		ContentType: format.ContentType(),
		Size:        int64(len(encoded)),
		HasAlpha:    hasAlpha,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
	}, nil
}

func (p *ImageProcessor) discard(ctx context.Context, filename string) {
	if err := p.fileRepo.Delete(context.WithoutCancel(ctx), filename); err != nil {
		p.logger.Warn().Err(err).Str("filename", filename).Msg("Failed to remove primary after partial failure")
		return
	}
	p.logger.Info().Str("filename", filename).Msg("Removed primary after partial failure")
}

func (p *ImageProcessor) fail(stage, originalName string, err error) error {
	p.logger.Error().
		Err(err).
		Str("stage", stage).
		Str("original_name", originalName).
		Msg("Image processing failed")

	if errors.Is(err, ErrProcessing) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrProcessing, stage, err)
}

func (p *ImageProcessor) logCompleted(originalName string, result *domain.ProcessingResult) {
	p.logger.Info().
		Str("original_name", originalName).
		Str("filename", result.Filename).
		Str("kind", string(result.Kind)).
		Msg("Image processing completed")
}

// primaryExtension keeps the uploaded extension when it names the decoded
// format, so the stored file never claims a format it does not contain.
func primaryExtension(originalName string, format domain.ImageFormat) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if format.Matches(ext) {
		return ext
	}
	return format.Extension()
}
