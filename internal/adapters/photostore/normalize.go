package photostore

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// decoders for uploads
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Output format.
const (
	PhotoSize    = 150
	JPEGQuality  = 70
	MaxUploadLen = 8 << 20
	MaxPixels    = 4096 * 4096
)

// Normalize crops the centre square of an uploaded image, scales it to
// PhotoSize x PhotoSize and re-encodes it as JPEG.
func Normalize(upload []byte) ([]byte, error) {
	if len(upload) == 0 {
		return nil, ErrEmptyPhoto
	}
	if len(upload) > MaxUploadLen {
		return nil, ErrTooLarge
	}
	// Bound the raster size before decoding it.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(upload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodePhoto, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty bounds", ErrDecodePhoto)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(upload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodePhoto, err)
	}

	b := src.Bounds()
	side := min(b.Dx(), b.Dy())
	if side <= 0 {
		return nil, fmt.Errorf("%w: empty bounds", ErrDecodePhoto)
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, PhotoSize, PhotoSize))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode photo: %w", err)
	}
	return buf.Bytes(), nil
}
