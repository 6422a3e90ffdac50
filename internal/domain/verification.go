package domain

import (
	"time"

	"github.com/google/uuid"
)

// Verification is the audit record written for a finished session.
type Verification struct {
	ID              uuid.UUID `json:"id"`
	SessionID       string    `json:"session_id"`
	Passed          bool      `json:"passed"`
	ChallengesTotal int       `json:"challenges_total"`
	ChallengesDone  int       `json:"challenges_done"`
	SpoofScore      *float64  `json:"spoof_score,omitempty"`
	LatencyMs       int64     `json:"latency_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

// Identity holds the privacy-preserving record stored for a verified
// user: salted commitments only, never the raw fields and never the salt.
type Identity struct {
	ID                       uuid.UUID `json:"id"`
	DocumentHash             string    `json:"document_hash"`
	NameCommitment           string    `json:"name_commitment"`
	IssuingCountryCommitment string    `json:"issuing_country_commitment,omitempty"`
	DocumentType             string    `json:"document_type,omitempty"`
	FaceEmbedding            []float32 `json:"-"`
	CreatedAt                time.Time `json:"created_at"`
}
