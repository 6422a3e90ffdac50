package challenge

import (
	"context"

	"github.com/verid-labs/verid/internal/liveness"
	"github.com/verid-labs/verid/internal/provider"
)

// BatchSmileThreshold is the happy score a single frame must reach when
// challenges are judged from collected images instead of a live stream.
const BatchSmileThreshold = 30.0

// BatchItem is one collected challenge frame.
type BatchItem struct {
	ChallengeType Type   `json:"challenge_type"`
	Image         []byte `json:"image"`
}

// ItemResult is the verdict for one batch item.
type ItemResult struct {
	Index         int      `json:"index"`
	ChallengeType Type     `json:"challenge_type"`
	Passed        bool     `json:"passed"`
	Score         *float64 `json:"score,omitempty"`
	EAR           *float64 `json:"ear_value,omitempty"`
	Yaw           *float64 `json:"yaw,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// BatchResult summarizes a batch validation.
type BatchResult struct {
	AllPassed       bool         `json:"all_passed"`
	TotalChallenges int          `json:"total_challenges"`
	PassedCount     int          `json:"passed_count"`
	Results         []ItemResult `json:"results"`
}

// BatchValidator judges collected challenge frames one image per
// challenge. The single-frame criteria are necessarily weaker than the
// streaming detectors: a blink frame must show closed eyes, a turn frame
// must clear the stricter batch yaw threshold.
type BatchValidator struct {
	faces provider.FaceAnalyzer
}

// NewBatchValidator creates a batch validator on top of a face analyzer
func NewBatchValidator(faces provider.FaceAnalyzer) *BatchValidator {
	return &BatchValidator{faces: faces}
}

// Validate judges every item independently. Per-item failures (unknown
// type, analysis errors) mark that item failed without aborting the rest.
func (v *BatchValidator) Validate(ctx context.Context, items []BatchItem) (*BatchResult, error) {
	result := &BatchResult{
		AllPassed:       true,
		TotalChallenges: len(items),
		Results:         make([]ItemResult, 0, len(items)),
	}

	for i, item := range items {
		ir := v.validateItem(ctx, i, item)
		if ir.Passed {
			result.PassedCount++
		} else {
			result.AllPassed = false
		}
		result.Results = append(result.Results, ir)
	}

	return result, nil
}

func (v *BatchValidator) validateItem(ctx context.Context, index int, item BatchItem) ItemResult {
	ir := ItemResult{Index: index, ChallengeType: item.ChallengeType}

	if !item.ChallengeType.Valid() {
		ir.Error = "unknown challenge type: " + string(item.ChallengeType)
		return ir
	}
	if len(item.Image) == 0 {
		ir.Error = "missing image"
		return ir
	}

	switch item.ChallengeType {
	case TypeSmile:
		out, err := v.faces.AnalyzeEmotions(ctx, item.Image)
		if err != nil {
			ir.Error = err.Error()
			return ir
		}
		if !out.Visible {
			ir.Error = "no face detected"
			return ir
		}
		score := out.Happy()
		ir.Score = &score
		ir.Passed = score >= BatchSmileThreshold

	case TypeBlink:
		landmarks, err := v.detectLandmarks(ctx, item.Image)
		if err != nil {
			ir.Error = err.Error()
			return ir
		}
		if landmarks == nil {
			ir.Error = "no face detected"
			return ir
		}
		ear, _, _ := liveness.AverageEAR(landmarks)
		ir.EAR = &ear
		ir.Passed = ear < liveness.EARClosedThreshold

	case TypeTurnLeft, TypeTurnRight:
		landmarks, err := v.detectLandmarks(ctx, item.Image)
		if err != nil {
			ir.Error = err.Error()
			return ir
		}
		if landmarks == nil {
			ir.Error = "no face detected"
			return ir
		}
		yaw := liveness.HeadYaw(landmarks)
		ir.Yaw = &yaw

		required := liveness.DirectionLeft
		if item.ChallengeType == TypeTurnRight {
			required = liveness.DirectionRight
		}
		ir.Passed = liveness.TurnMeets(yaw, required, liveness.BatchYawThreshold)
	}

	return ir
}

func (v *BatchValidator) detectLandmarks(ctx context.Context, image []byte) ([]provider.Point, error) {
	faces, err := v.faces.DetectLandmarks(ctx, image)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, nil
	}
	return faces[0].Landmarks, nil
}
