// Package media prepares photos for upload. Backends reject bodies
// over ~4.5MB, so images are stepped down in size and JPEG quality
// until they fit, bounded to a few attempts.
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
)

// DefaultMaxBytes matches the upload ceiling of the marketplace API.
const DefaultMaxBytes = 4608 * 1024 // 4.5MB

const (
	maxAttempts  = 3
	startWidth   = 1440
	startQuality = 80
	minQuality   = 55
)

// Decode reads a JPEG or PNG photo.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// CompressToLimit re-encodes src as JPEG, shrinking width by 20% and
// quality by 10 points per attempt until the output fits maxBytes.
// After the final attempt the result is returned regardless of size;
// the server gets the last word.
func CompressToLimit(src image.Image, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	width := startWidth
	quality := startQuality

	var out []byte
	for i := 0; i < maxAttempts; i++ {
		scaled := scaleToWidth(src, width)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		out = buf.Bytes()
		if len(out) <= maxBytes {
			break
		}

		width = width * 4 / 5
		quality -= 10
		if quality < minQuality {
			quality = minQuality
		}
	}
	return out, nil
}

// scaleToWidth downsizes to the given width keeping aspect ratio.
// Images already narrower are passed through; uploads never upscale.
func scaleToWidth(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() <= width || width <= 0 {
		return src
	}

	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		sy := b.Min.Y + y*b.Dy()/height
		for x := 0; x < width; x++ {
			sx := b.Min.X + x*b.Dx()/width
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}
