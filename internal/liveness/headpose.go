package liveness

import (
	"math"

	"github.com/verid-labs/verid/internal/provider"
)

// Head pose thresholds.
const (
	// YawThreshold is the yaw magnitude that counts as a head turn
	YawThreshold = 0.10
	// PitchThreshold is the pitch magnitude that counts as an up/down tilt
	PitchThreshold = 0.20
	// BatchYawThreshold is the stricter yaw magnitude used when judging a
	// single uploaded frame instead of a live stream
	BatchYawThreshold = 0.15
	// turnConfirmFrames is how many consecutive turned frames confirm a turn
	turnConfirmFrames = 2
)

// Landmark indices for pose estimation (InsightFace ordering).
const (
	contourLeft   = 0  // leftmost point of face contour
	contourRight  = 32 // rightmost point of face contour
	chin          = 16
	noseTip       = 54
	leftEyeInner  = 87 // approximates left eye center
	rightEyeOuter = 33 // approximates right eye center
)

// Direction is a head direction from the user's perspective.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionLeft    Direction = "left"
	DirectionRight   Direction = "right"
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionUnknown Direction = "unknown"
)

// HeadYaw estimates left/right head rotation from the nose position
// relative to the face contour. The sign is in camera frame: when the
// user turns their left, the nose moves right in the image and yaw goes
// positive. Range is clamped to [-1, 1]; degenerate input yields 0.
func HeadYaw(landmarks []provider.Point) float64 {
	if len(landmarks) < provider.LandmarkCount {
		return 0.0
	}

	left := landmarks[contourLeft]
	right := landmarks[contourRight]
	nose := landmarks[noseTip]

	faceWidth := distance(left, right)
	if faceWidth < 1 {
		return 0.0
	}

	faceCenterX := (left.X + right.X) / 2
	noseOffset := nose.X - faceCenterX

	yaw := (noseOffset / faceWidth) * 2
	return clamp(yaw, -1.0, 1.0)
}

// HeadPitch estimates up/down head tilt from the vertical nose position
// relative to the eye line. Positive means looking up. Range is clamped
// to [-1, 1]; degenerate input yields 0.
func HeadPitch(landmarks []provider.Point) float64 {
	if len(landmarks) < provider.LandmarkCount {
		return 0.0
	}

	leftEye := landmarks[leftEyeInner]
	rightEye := landmarks[rightEyeOuter]
	nose := landmarks[noseTip]
	chinPt := landmarks[chin]

	eyeCenterY := (leftEye.Y + rightEye.Y) / 2

	faceHeight := math.Abs(chinPt.Y - eyeCenterY)
	if faceHeight < 1 {
		return 0.0
	}

	// A level nose sits roughly 40% of the way from the eye line to the chin.
	expectedNoseY := eyeCenterY + faceHeight*0.4
	noseDeviation := nose.Y - expectedNoseY

	pitch := (noseDeviation / faceHeight) * 2.5
	return clamp(-pitch, -1.0, 1.0)
}

// ClassifyDirection maps yaw and pitch to a direction from the user's
// perspective. Positive yaw means the user turned left. Yaw wins over
// pitch when both exceed their thresholds.
func ClassifyDirection(yaw, pitch float64) Direction {
	if math.Abs(yaw) > YawThreshold {
		if yaw > 0 {
			return DirectionLeft
		}
		return DirectionRight
	}
	if math.Abs(pitch) > PitchThreshold {
		if pitch > 0 {
			return DirectionUp
		}
		return DirectionDown
	}
	return DirectionForward
}

// TurnMeets reports whether a single frame's yaw satisfies the required
// turn direction at the given threshold. Directions other than left and
// right never match.
func TurnMeets(yaw float64, required Direction, threshold float64) bool {
	switch required {
	case DirectionLeft:
		return yaw > threshold
	case DirectionRight:
		return yaw < -threshold
	default:
		return false
	}
}

// PoseFrame is the per-frame output of the turn detector.
type PoseFrame struct {
	Yaw                float64   `json:"yaw"`
	Pitch              float64   `json:"pitch"`
	Direction          Direction `json:"direction"`
	IsTurningLeft      bool      `json:"is_turning_left"`
	IsTurningRight     bool      `json:"is_turning_right"`
	LeftTurnCompleted  bool      `json:"left_turn_completed"`
	RightTurnCompleted bool      `json:"right_turn_completed"`
	FaceDetected       bool      `json:"face_detected"`
}

// TurnDetector confirms head turns over consecutive frames. A turn in
// either direction is confirmed after turnConfirmFrames consecutive
// turned frames and stays confirmed for the rest of the session. Facing
// forward or turning the other way resets the consecutive counters;
// frames without a face do not.
//
// Not safe for concurrent use; each session owns its own detector.
type TurnDetector struct {
	leftTurnFrames  int
	rightTurnFrames int
	leftConfirmed   bool
	rightConfirmed  bool
}

// NewTurnDetector creates a turn detector with fresh state
func NewTurnDetector() *TurnDetector {
	return &TurnDetector{}
}

// Reset clears turn state for a new session
func (d *TurnDetector) Reset() {
	d.leftTurnFrames = 0
	d.rightTurnFrames = 0
	d.leftConfirmed = false
	d.rightConfirmed = false
}

// LeftConfirmed reports whether a left turn has been confirmed this session
func (d *TurnDetector) LeftConfirmed() bool { return d.leftConfirmed }

// RightConfirmed reports whether a right turn has been confirmed this session
func (d *TurnDetector) RightConfirmed() bool { return d.rightConfirmed }

// ProcessFrame advances the state machine with one frame's landmarks.
// Pass nil when no face was found in the frame.
func (d *TurnDetector) ProcessFrame(landmarks []provider.Point) PoseFrame {
	if len(landmarks) < provider.LandmarkCount {
		return PoseFrame{
			Direction:          DirectionUnknown,
			LeftTurnCompleted:  d.leftConfirmed,
			RightTurnCompleted: d.rightConfirmed,
		}
	}

	yaw := HeadYaw(landmarks)
	pitch := HeadPitch(landmarks)

	// User's perspective: positive yaw = user turned left.
	isTurningLeft := yaw > YawThreshold
	isTurningRight := yaw < -YawThreshold

	switch {
	case isTurningLeft:
		d.leftTurnFrames++
		d.rightTurnFrames = 0
	case isTurningRight:
		d.rightTurnFrames++
		d.leftTurnFrames = 0
	default:
		d.leftTurnFrames = 0
		d.rightTurnFrames = 0
	}

	if d.leftTurnFrames >= turnConfirmFrames {
		d.leftConfirmed = true
	}
	if d.rightTurnFrames >= turnConfirmFrames {
		d.rightConfirmed = true
	}

	return PoseFrame{
		Yaw:                yaw,
		Pitch:              pitch,
		Direction:          ClassifyDirection(yaw, pitch),
		IsTurningLeft:      isTurningLeft,
		IsTurningRight:     isTurningRight,
		LeftTurnCompleted:  d.leftConfirmed,
		RightTurnCompleted: d.rightConfirmed,
		FaceDetected:       true,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
