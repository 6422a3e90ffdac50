package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/service"
)

// DocumentService interface for the service
type DocumentService interface {
	Process(ctx context.Context, imageBytes []byte) (*service.DocumentOutcome, error)
	Register(ctx context.Context, result *domain.DocumentResult, faceEmbedding []float32) (*service.RegisteredIdentity, error)
	VerifyClaim(ctx context.Context, identityID uuid.UUID, documentNumber, fullName, salt string) (*service.ClaimResult, error)
}

// DocumentHandler handles document extraction and identity requests
type DocumentHandler struct {
	service DocumentService
	logger  *slog.Logger
}

// NewDocumentHandler creates a new DocumentHandler instance
func NewDocumentHandler(service DocumentService, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		service: service,
		logger:  logger,
	}
}

// ClaimRequest carries the field values a user claims plus the salt
// they kept from registration.
type ClaimRequest struct {
	DocumentNumber string `json:"document_number"`
	FullName       string `json:"full_name"`
	Salt           string `json:"salt"`
}

// Process POST /v1/documents/process - run the extraction pipeline
func (h *DocumentHandler) Process(c *fiber.Ctx) error {
	imageBytes, err := extractImage(c, "image")
	if err != nil {
		return err
	}

	outcome, err := h.service.Process(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	return c.JSON(outcome)
}

// Register POST /v1/identities - process a document and store its commitments
func (h *DocumentHandler) Register(c *fiber.Ctx) error {
	imageBytes, err := extractImage(c, "image")
	if err != nil {
		return err
	}

	embedding, err := parseEmbedding(c.FormValue("face_embedding"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	outcome, err := h.service.Process(c.Context(), imageBytes)
	if err != nil {
		return err
	}

	registered, err := h.service.Register(c.Context(), outcome.Result, embedding)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(registered)
}

// VerifyClaim POST /v1/identities/:id/claims - check claimed fields
func (h *DocumentHandler) VerifyClaim(c *fiber.Ctx) error {
	identityID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	var req ClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}
	if req.DocumentNumber == "" && req.FullName == "" {
		return domain.ErrValidationFailed.WithError(errors.New("document_number or full_name is required"))
	}

	result, err := h.service.VerifyClaim(c.Context(), identityID, req.DocumentNumber, req.FullName, req.Salt)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// parseEmbedding decodes an optional JSON float array form value
func parseEmbedding(raw string) ([]float32, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(raw), &embedding); err != nil {
		return nil, errors.New("face_embedding must be a JSON array of numbers")
	}
	return embedding, nil
}
