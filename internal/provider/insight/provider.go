package insight

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/verid-labs/verid/internal/provider"
)

// minFaceConfidence below which an analyze result is treated as an
// obscured face rather than a readable one.
const minFaceConfidence = 0.5

// Provider implements provider.FaceAnalyzer using an InsightFace REST service
type Provider struct {
	client *Client
}

// NewProvider creates a new InsightFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// DetectLandmarks detects faces and their 106-point landmark sets
func (p *Provider) DetectLandmarks(ctx context.Context, image []byte) ([]provider.FaceObservation, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Detect(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("detect landmarks: %w", err)
	}

	faces := make([]provider.FaceObservation, 0, len(resp.Faces))
	for _, f := range resp.Faces {
		landmarks := make([]provider.Point, 0, len(f.Landmarks))
		for _, lm := range f.Landmarks {
			landmarks = append(landmarks, provider.Point{X: lm[0], Y: lm[1]})
		}
		faces = append(faces, provider.FaceObservation{
			BoundingBox: provider.BoundingBox{
				X:      f.BBox.X,
				Y:      f.BBox.Y,
				Width:  f.BBox.W,
				Height: f.BBox.H,
			},
			Confidence: f.Score,
			Landmarks:  landmarks,
		})
	}

	return faces, nil
}

// AnalyzeEmotions scores facial emotions. A frame where no face is
// readable comes back with Visible=false instead of an error.
func (p *Provider) AnalyzeEmotions(ctx context.Context, image []byte) (*provider.EmotionOutcome, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Analyze(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("analyze emotions: %w", err)
	}

	if len(resp.Results) == 0 {
		return &provider.EmotionOutcome{Visible: false}, nil
	}

	result := resp.Results[0]
	if result.FaceConfidence < minFaceConfidence {
		return &provider.EmotionOutcome{Visible: false}, nil
	}

	return &provider.EmotionOutcome{
		Visible:         true,
		Emotions:        result.Emotion,
		DominantEmotion: result.DominantEmotion,
	}, nil
}

// CheckAntiSpoof scores presentation-attack likelihood
func (p *Provider) CheckAntiSpoof(ctx context.Context, image []byte, threshold float64) (*provider.SpoofResult, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.AntiSpoof(ctx, imageBase64)
	if err != nil {
		return nil, fmt.Errorf("check anti-spoof: %w", err)
	}

	return &provider.SpoofResult{
		IsReal: resp.Score >= threshold,
		Score:  resp.Score,
	}, nil
}

// Ensure Provider implements provider.FaceAnalyzer
var _ provider.FaceAnalyzer = (*Provider)(nil)
