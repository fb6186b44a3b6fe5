// Package photo provides the capture-side photo transforms: bounded
// recompression before upload and the fire/smoke screening heuristic.
package photo

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
)

// Result is a compressed photo ready for upload.
type Result struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
}

const (
	// DefaultMaxEdge bounds the longest edge of an uploaded photo.
	DefaultMaxEdge = 1280

	// DefaultJPEGQuality is the re-encode quality.
	DefaultJPEGQuality = 80
)

// Compress decodes a captured photo (JPEG, PNG, GIF or WebP), shrinks
// it so its longest edge fits maxEdge, and re-encodes it as JPEG.
// Images already within bounds are still re-encoded, which normalizes
// format and strips metadata.
func Compress(data []byte, maxEdge, quality int) (*Result, error) {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	mime := mimetype.Detect(data)
	switch mime.String() {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return nil, errors.New(errors.ErrPhotoUnsupported,
			"unsupported photo format: "+mime.String())
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrPhotoDecode, "failed to decode photo", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxEdge || bounds.Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "failed to encode photo", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ContentType: "image/jpeg",
	}, nil
}
