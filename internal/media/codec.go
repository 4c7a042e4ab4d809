package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Quality bounds for JPEG re-encoding
const (
	MinQuality     = 20
	MaxQuality     = 100
	DefaultQuality = 80
)

// maxPixels guards against decompression bombs
const maxPixels = 50_000_000

var errTooLarge = errors.New("image dimensions too large")

// Codec re-encodes an image payload into the storage-side format
type Codec interface {
	Compress(data []byte, quality int) ([]byte, error)
	// Ext is the file extension of the encoded output, with the dot
	Ext() string
}

// JPEGCodec flattens any decodable image onto white and encodes JPEG
type JPEGCodec struct{}

// Ext returns ".jpeg"
func (JPEGCodec) Ext() string { return ".jpeg" }

// Compress decodes data (png, jpeg, gif, webp, bmp), drops transparency by
// compositing over an opaque white canvas and encodes JPEG at quality.
// Callers clamp quality with ClampQuality first.
func (JPEGCodec) Compress(data []byte, quality int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("empty image %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, errTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ClampQuality limits q to [MinQuality, MaxQuality]
func ClampQuality(q int) int {
	if q < MinQuality {
		return MinQuality
	}
	if q > MaxQuality {
		return MaxQuality
	}
	return q
}
