package liveness

import "github.com/verid-labs/verid/internal/provider"

const (
	// EARClosedThreshold is the EAR below which the eyes count as closed
	EARClosedThreshold = 0.21
	// EAROpenThreshold is the EAR above which the eyes are confidently open
	EAROpenThreshold = 0.25
	// blinkClosedFrames is how many consecutive closed frames arm a blink
	blinkClosedFrames = 2
)

// BlinkFrame is the per-frame output of the blink detector.
type BlinkFrame struct {
	BlinkDetected bool    `json:"blink_detected"`
	EAR           float64 `json:"ear_value"`
	LeftEAR       float64 `json:"left_ear"`
	RightEAR      float64 `json:"right_ear"`
	BlinkCount    int     `json:"blink_count"`
	LeftEyeOpen   bool    `json:"left_eye_open"`
	RightEyeOpen  bool    `json:"right_eye_open"`
	FaceDetected  bool    `json:"face_detected"`
}

// BlinkDetector tracks blinks across frames. A blink is counted when the
// eyes stay closed for blinkClosedFrames consecutive frames and then
// reopen. Frames without a face leave the state untouched.
//
// Not safe for concurrent use; each session owns its own detector.
type BlinkDetector struct {
	blinkCount      int
	eyeClosedFrames int
	wasEyeClosed    bool
}

// NewBlinkDetector creates a blink detector with fresh state
func NewBlinkDetector() *BlinkDetector {
	return &BlinkDetector{}
}

// Reset clears blink state for a new session
func (d *BlinkDetector) Reset() {
	d.blinkCount = 0
	d.eyeClosedFrames = 0
	d.wasEyeClosed = false
}

// Count returns the number of blinks observed so far
func (d *BlinkDetector) Count() int {
	return d.blinkCount
}

// ProcessFrame advances the state machine with one frame's landmarks.
// Pass nil when no face was found in the frame.
func (d *BlinkDetector) ProcessFrame(landmarks []provider.Point) BlinkFrame {
	if len(landmarks) < provider.LandmarkCount {
		return BlinkFrame{BlinkCount: d.blinkCount}
	}

	avg, left, right := AverageEAR(landmarks)
	eyesOpen := avg > EARClosedThreshold

	blinkDetected := false
	if !eyesOpen {
		d.eyeClosedFrames++
		if d.eyeClosedFrames >= blinkClosedFrames {
			d.wasEyeClosed = true
		}
	} else {
		if d.wasEyeClosed {
			d.blinkCount++
			blinkDetected = true
			d.wasEyeClosed = false
		}
		d.eyeClosedFrames = 0
	}

	return BlinkFrame{
		BlinkDetected: blinkDetected,
		EAR:           avg,
		LeftEAR:       left,
		RightEAR:      right,
		BlinkCount:    d.blinkCount,
		LeftEyeOpen:   left > EARClosedThreshold,
		RightEyeOpen:  right > EARClosedThreshold,
		FaceDetected:  true,
	}
}
