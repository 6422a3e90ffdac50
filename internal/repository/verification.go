package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/verid-labs/verid/internal/domain"
)

type VerificationRepository struct {
	pool PgxPool
}

func NewVerificationRepository(pool PgxPool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

func (r *VerificationRepository) Create(ctx context.Context, v *domain.Verification) error {
	query := `
		INSERT INTO verifications (id, session_id, passed, challenges_total, challenges_done, spoof_score, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		v.ID,
		v.SessionID,
		v.Passed,
		v.ChallengesTotal,
		v.ChallengesDone,
		v.SpoofScore,
		v.LatencyMs,
	).Scan(&v.CreatedAt)

	if err != nil {
		return fmt.Errorf("create verification: %w", err)
	}

	return nil
}

func (r *VerificationRepository) GetBySessionID(ctx context.Context, sessionID string) (*domain.Verification, error) {
	query := `
		SELECT id, session_id, passed, challenges_total, challenges_done, spoof_score, latency_ms, created_at
		FROM verifications
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var v domain.Verification
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&v.ID,
		&v.SessionID,
		&v.Passed,
		&v.ChallengesTotal,
		&v.ChallengesDone,
		&v.SpoofScore,
		&v.LatencyMs,
		&v.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get verification by session id: %w", err)
	}

	return &v, nil
}

func (r *VerificationRepository) ListRecent(ctx context.Context, limit int) ([]domain.Verification, error) {
	query := `
		SELECT id, session_id, passed, challenges_total, challenges_done, spoof_score, latency_ms, created_at
		FROM verifications
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var verifications []domain.Verification
	for rows.Next() {
		var v domain.Verification
		err := rows.Scan(
			&v.ID,
			&v.SessionID,
			&v.Passed,
			&v.ChallengesTotal,
			&v.ChallengesDone,
			&v.SpoofScore,
			&v.LatencyMs,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		verifications = append(verifications, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verifications: %w", err)
	}

	return verifications, nil
}
