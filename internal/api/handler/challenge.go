package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/verid-labs/verid/internal/challenge"
	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/liveness"
	"github.com/verid-labs/verid/internal/provider"
	"github.com/verid-labs/verid/internal/service"
)

// LivenessService interface for the service
type LivenessService interface {
	CreateSession(opts challenge.Options) *challenge.Session
	GetSession(id string) (*challenge.Session, error)
	ProcessBlinkFrame(ctx context.Context, sessionID string, imageBytes []byte) (*liveness.BlinkFrame, error)
	ProcessPoseFrame(ctx context.Context, sessionID string, imageBytes []byte) (*liveness.PoseFrame, error)
	ValidateSmile(ctx context.Context, baseline, challengeImage []byte) (*service.SmileOutcome, error)
	CheckAntiSpoof(ctx context.Context, imageBytes []byte) (*provider.SpoofResult, error)
	ValidateFaceQuality(ctx context.Context, imageBytes []byte) (*service.FaceQuality, error)
	AnalyzePassiveLiveness(ctx context.Context, frames [][]byte) (*service.PassiveLiveness, error)
	ValidateBatch(ctx context.Context, items []challenge.BatchItem) (*challenge.BatchResult, error)
	CompleteChallenge(ctx context.Context, sessionID string, challengeType challenge.Type, passed bool, metadata map[string]any, spoofScore *float64) (*challenge.CompleteResult, error)
}

// ChallengeHandler handles liveness challenge requests
type ChallengeHandler struct {
	service LivenessService
	logger  *slog.Logger
}

// NewChallengeHandler creates a new ChallengeHandler instance
func NewChallengeHandler(service LivenessService, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		service: service,
		logger:  logger,
	}
}

// CreateSessionRequest configures the generated challenge sequence
type CreateSessionRequest struct {
	NumChallenges   int      `json:"num_challenges"`
	Exclude         []string `json:"exclude"`
	RequireHeadTurn bool     `json:"require_head_turn"`
}

// SessionResponse is a session plus the challenge to perform next
type SessionResponse struct {
	*challenge.Session
	Current *challenge.CurrentChallenge `json:"current_challenge,omitempty"`
}

// CompleteRequest reports the outcome of the current challenge
type CompleteRequest struct {
	ChallengeType string         `json:"challenge_type"`
	Passed        bool           `json:"passed"`
	Metadata      map[string]any `json:"metadata"`
	SpoofScore    *float64       `json:"spoof_score"`
}

// BatchValidateRequest carries one collected frame per challenge
type BatchValidateRequest struct {
	Items []BatchValidateItem `json:"items"`
}

// BatchValidateItem is one challenge frame, base64-encoded
type BatchValidateItem struct {
	ChallengeType string `json:"challenge_type"`
	Image         string `json:"image"`
}

// CreateSession POST /v1/challenges - start a liveness session
func (h *ChallengeHandler) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrValidationFailed.WithError(err)
		}
	}

	exclude := make([]challenge.Type, 0, len(req.Exclude))
	for _, raw := range req.Exclude {
		t := challenge.Type(strings.TrimSpace(raw))
		if !t.Valid() {
			return domain.ErrUnknownChallengeType.WithError(errors.New("exclude: " + raw))
		}
		exclude = append(exclude, t)
	}

	session := h.service.CreateSession(challenge.Options{
		NumChallenges:   req.NumChallenges,
		Exclude:         exclude,
		RequireHeadTurn: req.RequireHeadTurn,
	})

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		Session: session,
		Current: session.Current(),
	})
}

// GetSession GET /v1/challenges/:session_id - session state
func (h *ChallengeHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.service.GetSession(c.Params("session_id"))
	if err != nil {
		return err
	}

	return c.JSON(SessionResponse{
		Session: session,
		Current: session.Current(),
	})
}

// Complete POST /v1/challenges/:session_id/complete - record a challenge outcome
func (h *ChallengeHandler) Complete(c *fiber.Ctx) error {
	var req CompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	challengeType := challenge.Type(req.ChallengeType)
	if !challengeType.Valid() {
		return domain.ErrUnknownChallengeType.WithError(errors.New(req.ChallengeType))
	}

	result, err := h.service.CompleteChallenge(c.Context(), c.Params("session_id"), challengeType, req.Passed, req.Metadata, req.SpoofScore)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// BlinkFrame POST /v1/challenges/:session_id/frames/blink - feed one blink frame
func (h *ChallengeHandler) BlinkFrame(c *fiber.Ctx) error {
	imageBytes, err := extractImage(c, "image")
	if err != nil {
		return err
	}

	frame, err := h.service.ProcessBlinkFrame(c.Context(), c.Params("session_id"), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(frame)
}

// PoseFrame POST /v1/challenges/:session_id/frames/pose - feed one head-pose frame
func (h *ChallengeHandler) PoseFrame(c *fiber.Ctx) error {
	imageBytes, err := extractImage(c, "image")
	if err != nil {
		return err
	}

	frame, err := h.service.ProcessPoseFrame(c.Context(), c.Params("session_id"), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(frame)
}

// ValidateBatch POST /v1/challenges/validate-batch - judge collected frames
func (h *ChallengeHandler) ValidateBatch(c *fiber.Ctx) error {
	var req BatchValidateRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}
	if len(req.Items) == 0 {
		return domain.ErrValidationFailed.WithError(errors.New("items is required"))
	}

	items := make([]challenge.BatchItem, 0, len(req.Items))
	for _, item := range req.Items {
		imageBytes, err := base64.StdEncoding.DecodeString(item.Image)
		if err != nil {
			return domain.ErrInvalidImage.WithError(err)
		}
		items = append(items, challenge.BatchItem{
			ChallengeType: challenge.Type(item.ChallengeType),
			Image:         imageBytes,
		})
	}

	result, err := h.service.ValidateBatch(c.Context(), items)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// ValidateSmile POST /v1/liveness/smile - baseline vs challenge smile check
func (h *ChallengeHandler) ValidateSmile(c *fiber.Ctx) error {
	baseline, err := extractImage(c, "baseline")
	if err != nil {
		return err
	}
	challengeImage, err := extractImage(c, "challenge")
	if err != nil {
		return err
	}

	outcome, err := h.service.ValidateSmile(c.Context(), baseline, challengeImage)
	if err != nil {
		return err
	}

	return c.JSON(outcome)
}

// CheckSpoof POST /v1/liveness/spoof - single-frame anti-spoof score
func (h *ChallengeHandler) CheckSpoof(c *fiber.Ctx) error {
	imageBytes, err := extractImage(c, "image")
	if err != nil {
		return err
	}

	result, err := h.service.CheckAntiSpoof(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// CheckQuality POST /v1/liveness/quality - pre-verification quality gate
func (h *ChallengeHandler) CheckQuality(c *fiber.Ctx) error {
	imageBytes, err := extractImage(c, "image")
	if err != nil {
		return err
	}

	quality, err := h.service.ValidateFaceQuality(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(quality)
}

// PassiveLiveness POST /v1/liveness/passive - blink counting over a frame burst
func (h *ChallengeHandler) PassiveLiveness(c *fiber.Ctx) error {
	frames, err := extractImages(c, "frames")
	if err != nil {
		return err
	}

	result, err := h.service.AnalyzePassiveLiveness(c.Context(), frames)
	if err != nil {
		return err
	}

	return c.JSON(result)
}
