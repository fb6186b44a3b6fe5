package photo

import (
	"bytes"
	"image"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
)

// Analysis is the screening result attached to a report before upload.
// It is a hint for triage, not a verdict.
type Analysis struct {
	FireDetected  bool    `json:"fire_detected"`
	SmokeDetected bool    `json:"smoke_detected"`
	Confidence    float64 `json:"confidence"`
}

const (
	// fireRatioThreshold is the fraction of flame-colored pixels above
	// which a frame is flagged as fire.
	fireRatioThreshold = 0.08

	// smokeRatioThreshold is the fraction of desaturated mid-bright
	// pixels above which a frame is flagged as smoke.
	smokeRatioThreshold = 0.25

	// sampleStride subsamples pixels; full-resolution scanning buys no
	// accuracy for a ratio heuristic.
	sampleStride = 4
)

// Analyze screens a photo for fire and smoke signatures using pixel
// color ratios: saturated warm pixels for flames, desaturated
// mid-brightness pixels for smoke.
func Analyze(data []byte) (*Analysis, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrPhotoDecode, "failed to decode photo", err)
	}

	bounds := img.Bounds()

	var total, warm, grey int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleStride {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleStride {
			r16, g16, b16, _ := img.At(x, y).RGBA()
			r, g, b := int(r16>>8), int(g16>>8), int(b16>>8)
			total++

			if isFlame(r, g, b) {
				warm++
			} else if isSmoke(r, g, b) {
				grey++
			}
		}
	}

	if total == 0 {
		return &Analysis{}, nil
	}

	warmRatio := float64(warm) / float64(total)
	greyRatio := float64(grey) / float64(total)

	a := &Analysis{
		FireDetected:  warmRatio >= fireRatioThreshold,
		SmokeDetected: greyRatio >= smokeRatioThreshold,
	}

	switch {
	case a.FireDetected:
		a.Confidence = clamp(warmRatio / fireRatioThreshold / 4)
	case a.SmokeDetected:
		a.Confidence = clamp(greyRatio / smokeRatioThreshold / 4)
	}

	return a, nil
}

// isFlame matches saturated orange-red pixels.
func isFlame(r, g, b int) bool {
	return r > 150 && r > g+40 && g >= b && b < 120
}

// isSmoke matches desaturated pixels in the smoke brightness band.
func isSmoke(r, g, b int) bool {
	lum := (r + g + b) / 3
	if lum < 90 || lum > 220 {
		return false
	}
	return abs(r-g) < 20 && abs(g-b) < 20 && abs(r-b) < 25
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
