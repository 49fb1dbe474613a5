package domain

import "strings"

// ParseFormat maps a decoder name ("jpeg", "png", ...) to an ImageFormat.
func ParseFormat(name string) (ImageFormat, bool) {
	switch strings.ToLower(name) {
	case "jpeg", "jpg":
		return FormatJPEG, true
	case "png":
		return FormatPNG, true
	case "gif":
		return FormatGIF, true
	case "webp":
		return FormatWebP, true
	case "bmp":
		return FormatBMP, true
	case "tiff", "tif":
		return FormatTIFF, true
	default:
		return "", false
	}
}

// Extension returns the canonical file extension, leading dot included.
func (f ImageFormat) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tiff"
	default:
		return "." + string(f)
	}
}

// Matches reports whether ext (lower-cased, with dot) is a known extension of f.
func (f ImageFormat) Matches(ext string) bool {
	switch f {
	case FormatJPEG:
		return ext == ".jpg" || ext == ".jpeg" || ext == ".jpe" || ext == ".jfif"
	case FormatTIFF:
		return ext == ".tif" || ext == ".tiff"
	default:
		return ext == "."+string(f)
	}
}

func (f ImageFormat) ContentType() string {
	return "image/" + string(f)
}
