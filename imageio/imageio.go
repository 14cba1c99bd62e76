// Package imageio reads and writes the image files the weave tooling
// exchanges: PNG, JPEG and BMP.
//
// Pixels cross this boundary as non-premultiplied RGBA in a weave.Pixmap.
// Decoding sniffs the format from the stream; encoding selects it
// explicitly, or from the file extension when saving by path.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	weave "github.com/KartikMangalpalli/weave-image-lab"
)

// ErrUnsupportedFormat is returned when an image format is not supported.
var ErrUnsupportedFormat = errors.New("imageio: unsupported image format")

// EncodeOption configures encoding behavior.
type EncodeOption func(*encodeOptions)

type encodeOptions struct {
	jpegQuality int
}

func defaultEncodeOptions() encodeOptions {
	return encodeOptions{
		jpegQuality: jpeg.DefaultQuality,
	}
}

// WithJPEGQuality sets the JPEG encoding quality in the range 1 to 100.
// Values outside the range are clamped. The option has no effect on
// lossless formats.
func WithJPEGQuality(quality int) EncodeOption {
	return func(o *encodeOptions) {
		if quality < 1 {
			quality = 1
		}
		if quality > 100 {
			quality = 100
		}
		o.jpegQuality = quality
	}
}

// Decode reads an image from r, sniffing the format from the stream.
// The decoded pixels are converted to non-premultiplied RGBA.
func Decode(r io.Reader) (*weave.Pixmap, Format, error) {
	img, name, err := image.Decode(r)
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("imageio: decode image: %w", err)
	}
	return weave.FromImage(img), formatFromName(name), nil
}

// Encode writes pm to w in the given format.
func Encode(w io.Writer, pm *weave.Pixmap, format Format, opts ...EncodeOption) error {
	if pm == nil {
		return errors.New("imageio: encode nil pixmap")
	}

	o := defaultEncodeOptions()
	for _, opt := range opts {
		opt(&o)
	}

	img := pm.ToImage()
	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("imageio: encode PNG: %w", err)
		}
	case FormatJPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: o.jpegQuality}); err != nil {
			return fmt.Errorf("imageio: encode JPEG: %w", err)
		}
	case FormatBMP:
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("imageio: encode BMP: %w", err)
		}
	default:
		return fmt.Errorf("imageio: encode %v: %w", format, ErrUnsupportedFormat)
	}
	return nil
}

// Load reads an image from a file.
func Load(path string) (*weave.Pixmap, Format, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, FormatUnknown, fmt.Errorf("imageio: open file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Save writes pm to a file, deriving the format from the path extension.
func Save(path string, pm *weave.Pixmap, opts ...EncodeOption) error {
	format := FormatFromPath(path)
	if format == FormatUnknown {
		return fmt.Errorf("imageio: save %q: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("imageio: create file: %w", err)
	}
	if err := Encode(f, pm, format, opts...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
