package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/verid-labs/verid/internal/commitment"
	"github.com/verid-labs/verid/internal/document"
	"github.com/verid-labs/verid/internal/domain"
)

type IdentityRepositoryInterface interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	FindByDocumentHash(ctx context.Context, hash string) (*domain.Identity, error)
	FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.Identity, error)
}

const defaultDuplicateSimilarity = 0.9

// DocumentOutcome bundles the pipeline result with the commitments
// derived from it. The salt inside Commitments is handed to the user
// exactly once and never persisted.
type DocumentOutcome struct {
	Result      *domain.DocumentResult `json:"result"`
	Commitments *commitment.Identity   `json:"commitments,omitempty"`
}

// RegisteredIdentity is returned once at registration time. Salt is the
// user's secret: losing it means losing the ability to prove claims.
type RegisteredIdentity struct {
	Identity *domain.Identity `json:"identity"`
	Salt     string           `json:"salt"`
}

// ClaimResult reports which claimed fields matched the stored
// commitments.
type ClaimResult struct {
	DocumentNumberMatches bool `json:"document_number_matches"`
	FullNameMatches       bool `json:"full_name_matches"`
}

type DocumentService struct {
	pipeline            *document.Pipeline
	identityRepo        IdentityRepositoryInterface
	duplicateSimilarity float64
}

func NewDocumentService(pipeline *document.Pipeline, identityRepo IdentityRepositoryInterface) *DocumentService {
	return &DocumentService{
		pipeline:            pipeline,
		identityRepo:        identityRepo,
		duplicateSimilarity: defaultDuplicateSimilarity,
	}
}

func (s *DocumentService) WithDuplicateSimilarity(threshold float64) *DocumentService {
	s.duplicateSimilarity = threshold
	return s
}

// Process runs the document pipeline and derives commitments from the
// extracted fields. Extraction failures come back inside the result.
func (s *DocumentService) Process(ctx context.Context, imageBytes []byte) (*DocumentOutcome, error) {
	result, err := s.pipeline.Process(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("process document: %w", err)
	}

	outcome := &DocumentOutcome{Result: result}

	data := result.Extracted
	if data != nil && (data.DocumentNumber != "" || data.FullName != "") {
		commitments, err := commitment.NewIdentity(data.DocumentNumber, data.FullName, result.DocumentOrigin)
		if err != nil {
			return nil, fmt.Errorf("derive commitments: %w", err)
		}
		outcome.Commitments = commitments
	}

	return outcome, nil
}

// Register stores the privacy-preserving identity record for a
// processed document. The raw fields never reach the repository: only
// the deterministic document hash (for dedup), salted commitments and
// the optional face embedding are written.
func (s *DocumentService) Register(ctx context.Context, result *domain.DocumentResult, faceEmbedding []float32) (*RegisteredIdentity, error) {
	if result == nil || result.Extracted == nil || result.Extracted.DocumentNumber == "" {
		return nil, domain.ErrValidationFailed.WithError(errors.New("no document number extracted"))
	}
	data := result.Extracted

	docHash := commitment.DocumentHash(data.DocumentNumber)

	existing, err := s.identityRepo.FindByDocumentHash(ctx, docHash)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check document hash: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrDuplicateIdentity
	}

	if len(faceEmbedding) > 0 {
		similar, err := s.identityRepo.FindSimilar(ctx, faceEmbedding, s.duplicateSimilarity, 1)
		if err != nil {
			return nil, fmt.Errorf("search similar faces: %w", err)
		}
		if len(similar) > 0 {
			return nil, domain.ErrDuplicateIdentity
		}
	}

	commitments, err := commitment.NewIdentity(data.DocumentNumber, data.FullName, result.DocumentOrigin)
	if err != nil {
		return nil, fmt.Errorf("derive commitments: %w", err)
	}

	identity := &domain.Identity{
		DocumentHash:             docHash,
		NameCommitment:           commitments.FullNameHash,
		IssuingCountryCommitment: commitments.IssuingCountryHash,
		DocumentType:             string(result.DocumentType),
		FaceEmbedding:            faceEmbedding,
	}

	if err := s.identityRepo.Create(ctx, identity); err != nil {
		return nil, err
	}

	return &RegisteredIdentity{Identity: identity, Salt: commitments.Salt}, nil
}

// VerifyClaim checks claimed field values against a stored identity
// using the salt the user kept from registration.
func (s *DocumentService) VerifyClaim(ctx context.Context, identityID uuid.UUID, documentNumber, fullName, salt string) (*ClaimResult, error) {
	identity, err := s.identityRepo.GetByID(ctx, identityID)
	if err != nil {
		return nil, err
	}

	result := &ClaimResult{}
	if documentNumber != "" {
		result.DocumentNumberMatches = commitment.DocumentHash(documentNumber) == identity.DocumentHash
	}
	if fullName != "" && identity.NameCommitment != "" {
		result.FullNameMatches = commitment.Verify(identity.NameCommitment, fullName, salt, commitment.NormalizeName)
	}

	return result, nil
}
