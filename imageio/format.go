package imageio

import (
	"path/filepath"
	"strings"
)

// Format identifies a supported image file format.
type Format uint8

const (
	// FormatUnknown marks a format that could not be determined.
	FormatUnknown Format = iota

	// FormatPNG is the PNG format (lossless; round-trips pixels byte exact).
	FormatPNG

	// FormatJPEG is the JPEG format (lossy).
	FormatJPEG

	// FormatBMP is the Windows bitmap format (lossless).
	FormatBMP
)

// String returns a string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "PNG"
	case FormatJPEG:
		return "JPEG"
	case FormatBMP:
		return "BMP"
	default:
		return "Unknown"
	}
}

// Ext returns the canonical file extension for the format, including the
// leading dot. Unknown formats yield an empty string.
func (f Format) Ext() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatJPEG:
		return ".jpg"
	case FormatBMP:
		return ".bmp"
	default:
		return ""
	}
}

// FormatFromPath derives the format from a file path extension.
// The comparison is case-insensitive.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".jpg", ".jpeg":
		return FormatJPEG
	case ".bmp":
		return FormatBMP
	default:
		return FormatUnknown
	}
}

// formatFromName maps the format names reported by image.Decode.
func formatFromName(name string) Format {
	switch name {
	case "png":
		return FormatPNG
	case "jpeg":
		return FormatJPEG
	case "bmp":
		return FormatBMP
	default:
		return FormatUnknown
	}
}
