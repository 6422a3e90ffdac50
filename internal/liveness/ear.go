// Package liveness implements the frame geometry and per-session state
// machines behind the liveness challenges: eye aspect ratio, blink
// tracking and head pose estimation over dense facial landmarks.
package liveness

import (
	"math"

	"github.com/verid-labs/verid/internal/provider"
)

// Dense landmark indices used by the geometry (InsightFace ordering).
// Each eye contributes six points: outer corner, two upper lid points,
// inner corner, two lower lid points.
var (
	RightEyeIndices = [6]int{33, 34, 35, 36, 37, 38}
	LeftEyeIndices  = [6]int{87, 88, 89, 90, 91, 92}
)

// EyeAspectRatio computes EAR for a single eye from its six key points:
//
//	EAR = (||p2-p6|| + ||p3-p5||) / (2 * ||p1-p4||)
//
// where p1/p4 are the horizontal corners and p2,p3 / p5,p6 the upper and
// lower eyelid points. Returns 0.0 for degenerate input.
func EyeAspectRatio(eye []provider.Point) float64 {
	if len(eye) < 6 {
		return 0.0
	}

	v1 := distance(eye[1], eye[5])
	v2 := distance(eye[2], eye[4])
	h := distance(eye[0], eye[3])

	if h == 0 {
		return 0.0
	}

	return (v1 + v2) / (2.0 * h)
}

// AverageEAR computes EAR for both eyes and returns the average along
// with the per-eye values.
func AverageEAR(landmarks []provider.Point) (avg, left, right float64) {
	if len(landmarks) < provider.LandmarkCount {
		return 0, 0, 0
	}

	right = EyeAspectRatio(eyePoints(landmarks, RightEyeIndices))
	left = EyeAspectRatio(eyePoints(landmarks, LeftEyeIndices))

	return (left + right) / 2.0, left, right
}

func eyePoints(landmarks []provider.Point, indices [6]int) []provider.Point {
	eye := make([]provider.Point, 6)
	for i, idx := range indices {
		eye[i] = landmarks[idx]
	}
	return eye
}

func distance(a, b provider.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
