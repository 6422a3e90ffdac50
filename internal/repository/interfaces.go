package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/verid-labs/verid/internal/domain"
)

// PgxPool is the subset of pgxpool.Pool the repositories use,
// compatible with pgxmock.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// VerificationRepositoryInterface defines operations for verification audit records
type VerificationRepositoryInterface interface {
	Create(ctx context.Context, v *domain.Verification) error
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Verification, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Verification, error)
}

// IdentityRepositoryInterface defines operations for identity commitment records
type IdentityRepositoryInterface interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error)
	FindByDocumentHash(ctx context.Context, hash string) (*domain.Identity, error)
	FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.Identity, error)
}
