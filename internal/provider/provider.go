package provider

import "context"

// LandmarkCount is the number of points in the landmark layout all
// providers must emit (InsightFace 106-point convention).
const LandmarkCount = 106

// Point is a 2D landmark coordinate in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FaceObservation is one detected face with its dense landmarks.
type FaceObservation struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
	Landmarks   []Point     `json:"landmarks"` // 106 points, InsightFace ordering
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// EmotionOutcome is the tagged result of an emotion analysis. The
// classifier failing to find a clear face is a signal (face obscured),
// not an error, so the three cases are kept distinct.
type EmotionOutcome struct {
	Visible         bool               `json:"visible"`
	Emotions        map[string]float64 `json:"emotions,omitempty"` // 0-100 per label
	DominantEmotion string             `json:"dominant_emotion,omitempty"`
}

// Happy returns the happy-emotion score, 0 if absent.
func (e *EmotionOutcome) Happy() float64 {
	if e == nil || e.Emotions == nil {
		return 0
	}
	return e.Emotions["happy"]
}

// SpoofResult is the output of a single-frame anti-spoof check.
type SpoofResult struct {
	IsReal bool    `json:"is_real"`
	Score  float64 `json:"score"` // 0.0 - 1.0, higher = more likely real
}

// OCRResult is the raw output of the text recognition engine.
type OCRResult struct {
	FullText   string      `json:"full_text"`
	TextBlocks []TextBlock `json:"text_blocks"`
}

// TextBlock is one recognized text region.
type TextBlock struct {
	Text        string      `json:"text"`
	Confidence  float64     `json:"confidence"` // 0.0 - 1.0
	BoundingBox BoundingBox `json:"bounding_box"`
}

// FaceAnalyzer is the boundary to the face ML models. Implementations
// are black boxes: this service only consumes their structured output.
type FaceAnalyzer interface {
	// DetectLandmarks returns the detected faces with 106-point
	// landmarks, largest face first. An empty slice means no face:
	// that is a result, not an error.
	DetectLandmarks(ctx context.Context, image []byte) ([]FaceObservation, error)

	// AnalyzeEmotions runs the emotion classifier on the primary face.
	// An obscured or unclear face yields Visible=false, not an error.
	AnalyzeEmotions(ctx context.Context, image []byte) (*EmotionOutcome, error)

	// CheckAntiSpoof scores the frame for presentation attacks.
	CheckAntiSpoof(ctx context.Context, image []byte, threshold float64) (*SpoofResult, error)
}

// DocumentReader is the boundary to the OCR engine.
type DocumentReader interface {
	// ExtractText recognizes text in a document image. No text found
	// yields an empty result, not an error.
	ExtractText(ctx context.Context, image []byte) (*OCRResult, error)
}
