package domain

import "time"

// StoredArtifact is a single image file written by the processor.
type StoredArtifact struct {
	Filename    string
	Kind        ArtifactKind
	Format      ImageFormat
	ContentType string
	Size        int64
	HasAlpha    bool
	Width       int
	Height      int
}

// ProcessingResult names the artifact callers should reference from now on.
// Alternate is nil when the source carried transparency.
type ProcessingResult struct {
	Kind      ArtifactKind
	Filename  string
	Primary   StoredArtifact
	Alternate *StoredArtifact
}

// ArtifactRecord is the optional catalog row describing one upload.
type ArtifactRecord struct {
	Filename     string
	Sibling      string
	Kind         ArtifactKind
	Format       ImageFormat
	HasAlpha     bool
	OriginalName string
	Size         int64
	CreatedAt    time.Time
}

type ArtifactKind string

const (
	KindPrimary   ArtifactKind = "primary"
	KindAlternate ArtifactKind = "alternate"
)

type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatGIF  ImageFormat = "gif"
	FormatWebP ImageFormat = "webp"
	FormatBMP  ImageFormat = "bmp"
	FormatTIFF ImageFormat = "tiff"
)

const (
	MaxUploadSize    = 5 << 20
	MaxWidth         = 1200
	MaxHeight        = 1200
	PrimaryQuality   = 80
	AlternateQuality = 75
	UploadFieldName  = "image"
	AlternateExt     = ".webp"
)

type ArtifactEventType string

const (
	EventArtifactStored  ArtifactEventType = "artifact.stored"
	EventArtifactDeleted ArtifactEventType = "artifact.deleted"
)

// ArtifactEvent is published after an artifact is stored or retired.
type ArtifactEvent struct {
	Type       ArtifactEventType `json:"type"`
	Filename   string            `json:"filename"`
	Sibling    string            `json:"sibling,omitempty"`
	Kind       ArtifactKind      `json:"kind,omitempty"`
	HasAlpha   bool              `json:"has_alpha"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewProcessingResult picks the alternate artifact when one was produced and
// falls back to the primary otherwise.
func NewProcessingResult(primary StoredArtifact, alternate *StoredArtifact) *ProcessingResult {
	if alternate != nil {
		return &ProcessingResult{
			Kind:      KindAlternate,
			Filename:  alternate.Filename,
			Primary:   primary,
			Alternate: alternate,
		}
	}
	return &ProcessingResult{
		Kind:     KindPrimary,
		Filename: primary.Filename,
		Primary:  primary,
	}
}

// Sibling is the non-winning artifact of the same upload, if any.
func (r *ProcessingResult) Sibling() string {
	if r.Kind == KindAlternate {
		return r.Primary.Filename
	}
	return ""
}

// Winner returns the artifact named by Filename.
func (r *ProcessingResult) Winner() StoredArtifact {
	if r.Kind == KindAlternate && r.Alternate != nil {
		return *r.Alternate
	}
	return r.Primary
}
