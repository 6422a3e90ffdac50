package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/verid-labs/verid/internal/challenge"
	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/liveness"
	"github.com/verid-labs/verid/internal/provider"
)

type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *domain.Verification) error
}

const (
	defaultSmileThreshold = 50.0
	minSmileDelta         = 20.0
	defaultSpoofThreshold = 0.3

	minFaceConfidence = 0.85
	minFaceAreaRatio  = 0.05
)

// SmileOutcome compares a neutral baseline frame against the challenge
// frame. Requiring a delta stops a photo of a smiling face from passing
// both frames at once.
type SmileOutcome struct {
	Passed         bool    `json:"passed"`
	BaselineScore  float64 `json:"baseline_score"`
	ChallengeScore float64 `json:"challenge_score"`
	FaceVisible    bool    `json:"face_visible"`
}

// FaceQuality is the result of the pre-verification quality gate.
type FaceQuality struct {
	FaceCount     int     `json:"face_count"`
	Confidence    float64 `json:"confidence"`
	AreaRatio     float64 `json:"area_ratio"`
	MultipleFaces bool    `json:"multiple_faces"`
	Acceptable    bool    `json:"acceptable"`
}

// PassiveLiveness summarizes blink activity over a burst of frames.
type PassiveLiveness struct {
	BlinkCount     int  `json:"blink_count"`
	FramesWithFace int  `json:"frames_with_face"`
	BestFrameIndex int  `json:"best_frame_index"`
	IsLikelyReal   bool `json:"is_likely_real"`
}

type LivenessService struct {
	store            *challenge.Store
	faces            provider.FaceAnalyzer
	batch            *challenge.BatchValidator
	verificationRepo VerificationRepositoryInterface
	smileThreshold   float64
	spoofThreshold   float64
}

func NewLivenessService(
	store *challenge.Store,
	faces provider.FaceAnalyzer,
	verificationRepo VerificationRepositoryInterface,
) *LivenessService {
	return &LivenessService{
		store:            store,
		faces:            faces,
		batch:            challenge.NewBatchValidator(faces),
		verificationRepo: verificationRepo,
		smileThreshold:   defaultSmileThreshold,
		spoofThreshold:   defaultSpoofThreshold,
	}
}

func (s *LivenessService) WithSmileThreshold(threshold float64) *LivenessService {
	s.smileThreshold = threshold
	return s
}

func (s *LivenessService) WithSpoofThreshold(threshold float64) *LivenessService {
	s.spoofThreshold = threshold
	return s
}

func (s *LivenessService) CreateSession(opts challenge.Options) *challenge.Session {
	return s.store.Create(opts)
}

func (s *LivenessService) GetSession(id string) (*challenge.Session, error) {
	return s.store.Get(id)
}

// ProcessBlinkFrame feeds one camera frame to the session's blink
// detector. Frames without a face keep the detector state untouched.
func (s *LivenessService) ProcessBlinkFrame(ctx context.Context, sessionID string, imageBytes []byte) (*liveness.BlinkFrame, error) {
	if _, err := s.store.Get(sessionID); err != nil {
		return nil, err
	}

	landmarks, err := s.primaryLandmarks(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	frame, err := s.store.ProcessBlinkFrame(sessionID, landmarks)
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

// ProcessPoseFrame feeds one camera frame to the session's turn detector.
func (s *LivenessService) ProcessPoseFrame(ctx context.Context, sessionID string, imageBytes []byte) (*liveness.PoseFrame, error) {
	if _, err := s.store.Get(sessionID); err != nil {
		return nil, err
	}

	landmarks, err := s.primaryLandmarks(ctx, imageBytes)
	if err != nil {
		return nil, err
	}

	frame, err := s.store.ProcessPoseFrame(sessionID, landmarks)
	if err != nil {
		return nil, err
	}
	return &frame, nil
}

// ValidateSmile checks a smile challenge against a neutral baseline.
// Without a usable baseline only the absolute threshold applies.
func (s *LivenessService) ValidateSmile(ctx context.Context, baseline, challengeImage []byte) (*SmileOutcome, error) {
	challengeEmotions, err := s.faces.AnalyzeEmotions(ctx, challengeImage)
	if err != nil {
		return nil, fmt.Errorf("analyze challenge frame: %w", err)
	}
	if !challengeEmotions.Visible {
		return &SmileOutcome{Passed: false, FaceVisible: false}, nil
	}

	outcome := &SmileOutcome{
		FaceVisible:    true,
		ChallengeScore: challengeEmotions.Happy(),
	}

	baselineEmotions, err := s.faces.AnalyzeEmotions(ctx, baseline)
	if err != nil {
		return nil, fmt.Errorf("analyze baseline frame: %w", err)
	}

	if baselineEmotions.Visible {
		outcome.BaselineScore = baselineEmotions.Happy()
		delta := outcome.ChallengeScore - outcome.BaselineScore
		outcome.Passed = outcome.ChallengeScore >= s.smileThreshold && delta >= minSmileDelta
	} else {
		outcome.Passed = outcome.ChallengeScore >= s.smileThreshold
	}

	return outcome, nil
}

// CheckAntiSpoof scores one frame for presentation attacks.
func (s *LivenessService) CheckAntiSpoof(ctx context.Context, imageBytes []byte) (*provider.SpoofResult, error) {
	result, err := s.faces.CheckAntiSpoof(ctx, imageBytes, s.spoofThreshold)
	if err != nil {
		return nil, fmt.Errorf("check anti-spoof: %w", err)
	}
	return result, nil
}

// ValidateFaceQuality gates verification on a clear, close-enough face.
func (s *LivenessService) ValidateFaceQuality(ctx context.Context, imageBytes []byte) (*FaceQuality, error) {
	faces, err := s.faces.DetectLandmarks(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	primary := faces[0]
	quality := &FaceQuality{
		FaceCount:     len(faces),
		Confidence:    primary.Confidence,
		AreaRatio:     faceAreaRatio(imageBytes, primary.BoundingBox),
		MultipleFaces: len(faces) > 1,
	}

	quality.Acceptable = quality.Confidence >= minFaceConfidence &&
		(quality.AreaRatio == 0 || quality.AreaRatio >= minFaceAreaRatio)

	return quality, nil
}

// AnalyzePassiveLiveness counts blinks over a burst of frames. At least
// one blink marks the subject as likely real; the best frame (face
// present, eyes open, widest EAR) is reported for downstream use.
func (s *LivenessService) AnalyzePassiveLiveness(ctx context.Context, frames [][]byte) (*PassiveLiveness, error) {
	detector := liveness.NewBlinkDetector()

	result := &PassiveLiveness{BestFrameIndex: -1}
	bestEAR := 0.0

	for i, frameBytes := range frames {
		landmarks, err := s.primaryLandmarks(ctx, frameBytes)
		if err != nil {
			return nil, err
		}

		frame := detector.ProcessFrame(landmarks)
		if !frame.FaceDetected {
			continue
		}
		result.FramesWithFace++

		if frame.LeftEyeOpen && frame.RightEyeOpen && frame.EAR > bestEAR {
			bestEAR = frame.EAR
			result.BestFrameIndex = i
		}
	}

	result.BlinkCount = detector.Count()
	result.IsLikelyReal = result.BlinkCount >= 1

	return result, nil
}

// ValidateBatch judges one collected frame per challenge.
func (s *LivenessService) ValidateBatch(ctx context.Context, items []challenge.BatchItem) (*challenge.BatchResult, error) {
	return s.batch.Validate(ctx, items)
}

// CompleteChallenge records a challenge outcome. When the outcome
// finishes the session an audit record is written.
func (s *LivenessService) CompleteChallenge(ctx context.Context, sessionID string, challengeType challenge.Type, passed bool, metadata map[string]any, spoofScore *float64) (*challenge.CompleteResult, error) {
	result, err := s.store.Complete(sessionID, challengeType, passed, metadata)
	if err != nil {
		return nil, err
	}

	if result.SessionDone {
		session, err := s.store.Get(sessionID)
		if err != nil {
			return nil, err
		}

		verification := &domain.Verification{
			SessionID:       sessionID,
			Passed:          result.SessionPassed != nil && *result.SessionPassed,
			ChallengesTotal: len(session.Challenges),
			ChallengesDone:  len(session.Completed),
			SpoofScore:      spoofScore,
			LatencyMs:       time.Since(session.CreatedAt).Milliseconds(),
		}
		if err := s.verificationRepo.Create(ctx, verification); err != nil {
			return nil, fmt.Errorf("record verification: %w", err)
		}
	}

	return result, nil
}

// primaryLandmarks returns the largest face's landmarks, nil when no
// face is in frame.
func (s *LivenessService) primaryLandmarks(ctx context.Context, imageBytes []byte) ([]provider.Point, error) {
	faces, err := s.faces.DetectLandmarks(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("detect landmarks: %w", err)
	}
	if len(faces) == 0 {
		return nil, nil
	}
	return faces[0].Landmarks, nil
}

// faceAreaRatio computes the face box share of the image. Normalized
// boxes are used directly; pixel boxes need the image dimensions. An
// undecodable image yields 0, which skips the area check.
func faceAreaRatio(imageBytes []byte, box provider.BoundingBox) float64 {
	if box.Width <= 0 || box.Height <= 0 {
		return 0
	}
	if box.Width <= 1.0 && box.Height <= 1.0 {
		return box.Width * box.Height
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return 0
	}
	return (box.Width * box.Height) / float64(cfg.Width*cfg.Height)
}
