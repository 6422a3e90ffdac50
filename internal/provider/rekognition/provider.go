package rekognition

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/verid-labs/verid/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider implements provider.FaceAnalyzer and provider.DocumentReader
// using AWS Rekognition. Coordinates come back in image-ratio space, which
// the downstream geometry tolerates since its measures are normalized.
type Provider struct {
	client *Client
}

var _ provider.FaceAnalyzer = (*Provider)(nil)
var _ provider.DocumentReader = (*Provider)(nil)

// NewProvider creates a new Rekognition provider
func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &Provider{client: client}, nil
}

// validateImage checks if image data is valid for Rekognition processing
func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// DetectLandmarks detects faces using the DetectFaces API and maps
// Rekognition's named landmarks onto the dense indexing the trackers read.
// Returns an empty slice if no faces are detected (not an error)
func (p *Provider) DetectLandmarks(ctx context.Context, image []byte) ([]provider.FaceObservation, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", ParseNoFaceError(err))
	}

	faces := make([]provider.FaceObservation, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		obs := provider.FaceObservation{
			Landmarks: mapLandmarks(detail.Landmarks),
		}
		if detail.BoundingBox != nil {
			obs.BoundingBox = provider.BoundingBox{
				X:      float64(deref(detail.BoundingBox.Left)),
				Y:      float64(deref(detail.BoundingBox.Top)),
				Width:  float64(deref(detail.BoundingBox.Width)),
				Height: float64(deref(detail.BoundingBox.Height)),
			}
		}
		if detail.Confidence != nil {
			obs.Confidence = float64(*detail.Confidence) / 100.0
		}
		faces = append(faces, obs)
	}

	return faces, nil
}

// AnalyzeEmotions scores facial emotions using the DetectFaces API.
// A frame without a readable face reports Visible=false, not an error.
func (p *Provider) AnalyzeEmotions(ctx context.Context, image []byte) (*provider.EmotionOutcome, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("analyze emotions: %w", ParseNoFaceError(err))
	}

	if len(output.FaceDetails) == 0 {
		return &provider.EmotionOutcome{Visible: false}, nil
	}

	detail := output.FaceDetails[0]
	emotions := make(map[string]float64, len(detail.Emotions))
	dominant := ""
	best := -1.0
	for _, e := range detail.Emotions {
		name := strings.ToLower(string(e.Type))
		score := float64(deref(e.Confidence))
		emotions[name] = score
		if score > best {
			best = score
			dominant = name
		}
	}

	return &provider.EmotionOutcome{
		Visible:         true,
		Emotions:        emotions,
		DominantEmotion: dominant,
	}, nil
}

// CheckAntiSpoof approximates a presentation-attack score from face quality
// metrics, since DetectFaces has no spoof signal of its own.
// TODO: switch to the Rekognition Face Liveness session API once the
// capture flow can drive its client-side challenge.
func (p *Provider) CheckAntiSpoof(ctx context.Context, image []byte, threshold float64) (*provider.SpoofResult, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectFacesInput{
		Image: &types.Image{
			Bytes: image,
		},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := p.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("check anti-spoof: %w", ParseNoFaceError(err))
	}

	if len(output.FaceDetails) == 0 {
		return &provider.SpoofResult{IsReal: false, Score: 0}, nil
	}

	score := qualityScore(output.FaceDetails[0].Quality)
	return &provider.SpoofResult{
		IsReal: score >= threshold,
		Score:  score,
	}, nil
}

// ExtractText reads document text using the DetectText API. Line
// detections become text blocks; word detections are dropped since the
// lines already cover them.
func (p *Provider) ExtractText(ctx context.Context, image []byte) (*provider.OCRResult, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	input := &rekognition.DetectTextInput{
		Image: &types.Image{
			Bytes: image,
		},
	}

	output, err := p.client.rekognition.DetectText(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detect text: %w", err)
	}

	var lines []string
	var blocks []provider.TextBlock
	for _, det := range output.TextDetections {
		if det.Type != types.TextTypesLine || det.DetectedText == nil {
			continue
		}
		lines = append(lines, *det.DetectedText)
		blocks = append(blocks, provider.TextBlock{
			Text:       *det.DetectedText,
			Confidence: float64(deref(det.Confidence)) / 100.0,
		})
	}

	return &provider.OCRResult{
		FullText:   strings.Join(lines, "\n"),
		TextBlocks: blocks,
	}, nil
}

// landmarkIndex maps Rekognition landmark names to the dense landmark
// indices the geometry reads: eye rings at 33-38 and 87-92, jaw extremes
// at 0/32, chin at 16, nose tip at 54.
var landmarkIndex = map[types.LandmarkType][]int{
	types.LandmarkTypeLeftEyeLeft:       {33},
	types.LandmarkTypeLeftEyeUp:         {34, 35},
	types.LandmarkTypeLeftEyeRight:      {36},
	types.LandmarkTypeLeftEyeDown:       {37, 38},
	types.LandmarkTypeRightEyeLeft:      {87},
	types.LandmarkTypeRightEyeUp:        {88, 89},
	types.LandmarkTypeRightEyeRight:     {90},
	types.LandmarkTypeRightEyeDown:      {91, 92},
	types.LandmarkTypeUpperJawlineLeft:  {0},
	types.LandmarkTypeUpperJawlineRight: {32},
	types.LandmarkTypeChinBottom:        {16},
	types.LandmarkTypeNose:              {54},
}

func mapLandmarks(landmarks []types.Landmark) []provider.Point {
	pts := make([]provider.Point, provider.LandmarkCount)
	for _, lm := range landmarks {
		indices, ok := landmarkIndex[lm.Type]
		if !ok || lm.X == nil || lm.Y == nil {
			continue
		}
		for _, i := range indices {
			pts[i] = provider.Point{X: float64(*lm.X), Y: float64(*lm.Y)}
		}
	}
	return pts
}

// qualityScore computes an overall quality score from Rekognition quality
// metrics, between 0.0 (poor) and 1.0 (excellent). Sharpness is weighted
// more heavily as it is the stronger replay-artifact signal.
func qualityScore(quality *types.ImageQuality) float64 {
	if quality == nil {
		return 0.0
	}

	brightness := float64(deref(quality.Brightness)) / 100.0
	sharpness := float64(deref(quality.Sharpness)) / 100.0

	return brightness*0.3 + sharpness*0.7
}

func deref(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}
