package webhook

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageWidth  = 1920
	maxImageHeight = 1440
	jpegQuality    = 80
)

// Image is a file attached to the webhook payload.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// compressImage decodes data, shrinks it to fit within 1920x1440 keeping the
// aspect ratio, and re-encodes it as JPEG.
func compressImage(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("compressImage: decode: %w", err)
	}

	w, h := fitWithin(src.Bounds().Dx(), src.Bounds().Dy(), maxImageWidth, maxImageHeight)

	var out image.Image = src
	if w != src.Bounds().Dx() || h != src.Bounds().Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("compressImage: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// fitWithin scales (w, h) down by a single ratio so both fit the bounds.
// Dimensions already within bounds are returned unchanged.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	ratio := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(float64(w)*ratio)), max(1, int(float64(h)*ratio))
}
