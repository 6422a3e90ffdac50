// Package mock provides a deterministic FaceAnalyzer/DocumentReader for
// tests and local development. Signals are derived from the image hash so
// the same bytes always produce the same observation.
package mock

import (
	"context"
	"crypto/sha256"

	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/provider"
)

const minImageBytes = 1000

type Provider struct{}

func New() *Provider {
	return &Provider{}
}

var _ provider.FaceAnalyzer = (*Provider)(nil)
var _ provider.DocumentReader = (*Provider)(nil)

// DetectLandmarks returns a single synthetic face. Eye openness and yaw
// are derived from the image hash: byte 0 drives the eyelid spread, byte
// 1 shifts the nose tip horizontally.
func (p *Provider) DetectLandmarks(ctx context.Context, image []byte) ([]provider.FaceObservation, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	hash := sha256.Sum256(image)
	eyeSpread := 4.0 + 8.0*float64(hash[0])/255.0       // vertical lid distance, px
	noseShift := (float64(hash[1])/255.0 - 0.5) * 40.0  // nose offset from center, px

	return []provider.FaceObservation{
		{
			BoundingBox: provider.BoundingBox{X: 100, Y: 100, Width: 200, Height: 240},
			Confidence:  0.99,
			Landmarks:   syntheticLandmarks(eyeSpread, noseShift),
		},
	}, nil
}

// AnalyzeEmotions reports a visible face whose happy score follows the
// image hash (byte 2 scaled to 0-100).
func (p *Provider) AnalyzeEmotions(ctx context.Context, image []byte) (*provider.EmotionOutcome, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	hash := sha256.Sum256(image)
	happy := 100.0 * float64(hash[2]) / 255.0
	neutral := 100.0 - happy

	dominant := "neutral"
	if happy > neutral {
		dominant = "happy"
	}

	return &provider.EmotionOutcome{
		Visible:         true,
		Emotions:        map[string]float64{"happy": happy, "neutral": neutral},
		DominantEmotion: dominant,
	}, nil
}

// CheckAntiSpoof always scores 0.9 for valid images.
func (p *Provider) CheckAntiSpoof(ctx context.Context, image []byte, threshold float64) (*provider.SpoofResult, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	score := 0.9
	return &provider.SpoofResult{
		IsReal: score >= threshold,
		Score:  score,
	}, nil
}

// ExtractText returns a fixed national-ID style text body for pipeline
// development without a real OCR backend.
func (p *Provider) ExtractText(ctx context.Context, image []byte) (*provider.OCRResult, error) {
	if len(image) < minImageBytes {
		return nil, domain.ErrInvalidImage
	}

	const sample = "REPUBLICA DOMINICANA CEDULA DE IDENTIDAD Y ELECTORAL\n" +
		"NOMBRES: JUAN ALBERTO\nAPELLIDOS: PEREZ GOMEZ\n" +
		"001-1391820-5\nFECHA NACIMIENTO: 15/03/1990\nVENCE: 15/03/2030\nSEXO: M"

	return &provider.OCRResult{
		FullText: sample,
		TextBlocks: []provider.TextBlock{
			{Text: sample, Confidence: 0.93},
		},
	}, nil
}

// syntheticLandmarks builds a 106-point face in the InsightFace layout.
// Only the indices the trackers read are meaningful: eye rings around
// 33-38 and 87-92, contour extremes 0/32, chin 16, nose tip 54.
func syntheticLandmarks(eyeSpread, noseShift float64) []provider.Point {
	pts := make([]provider.Point, provider.LandmarkCount)

	// Face contour: leftmost, rightmost, chin.
	pts[0] = provider.Point{X: 100, Y: 220}
	pts[32] = provider.Point{X: 300, Y: 220}
	pts[16] = provider.Point{X: 200, Y: 340}

	// Nose tip near face center, shifted to simulate yaw.
	pts[54] = provider.Point{X: 200 + noseShift, Y: 250}

	// Right eye (33-38): corners 30px apart, lids eyeSpread apart.
	placeEye(pts, 33, 140, 190, eyeSpread)
	// Left eye (87-92).
	placeEye(pts, 87, 230, 190, eyeSpread)

	return pts
}

func placeEye(pts []provider.Point, base int, cx, cy, spread float64) {
	half := spread / 2
	pts[base+0] = provider.Point{X: cx - 15, Y: cy}        // outer corner
	pts[base+1] = provider.Point{X: cx - 5, Y: cy - half}  // upper lid
	pts[base+2] = provider.Point{X: cx + 5, Y: cy - half}  // upper lid
	pts[base+3] = provider.Point{X: cx + 15, Y: cy}        // inner corner
	pts[base+4] = provider.Point{X: cx + 5, Y: cy + half}  // lower lid
	pts[base+5] = provider.Point{X: cx - 5, Y: cy + half}  // lower lid
}
