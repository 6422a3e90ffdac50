package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/verid-labs/verid/internal/domain"
)

type IdentityRepository struct {
	pool PgxPool
}

func NewIdentityRepository(pool PgxPool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	query := `
		INSERT INTO identities (id, document_hash, name_commitment, issuing_country_commitment, document_type, face_embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}

	var embedding *pgvector.Vector
	if len(identity.FaceEmbedding) > 0 {
		vec := pgvector.NewVector(identity.FaceEmbedding)
		embedding = &vec
	}

	err := r.pool.QueryRow(ctx, query,
		identity.ID,
		identity.DocumentHash,
		identity.NameCommitment,
		identity.IssuingCountryCommitment,
		identity.DocumentType,
		embedding,
	).Scan(&identity.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		return fmt.Errorf("create identity: %w", err)
	}

	return nil
}

func (r *IdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Identity, error) {
	query := `
		SELECT id, document_hash, name_commitment, issuing_country_commitment, document_type, face_embedding, created_at
		FROM identities
		WHERE id = $1
	`

	var identity domain.Identity
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&identity.ID,
		&identity.DocumentHash,
		&identity.NameCommitment,
		&identity.IssuingCountryCommitment,
		&identity.DocumentType,
		&embedding,
		&identity.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity by id: %w", err)
	}

	if embedding != nil && embedding.Slice() != nil {
		identity.FaceEmbedding = embedding.Slice()
	}

	return &identity, nil
}

func (r *IdentityRepository) FindByDocumentHash(ctx context.Context, hash string) (*domain.Identity, error) {
	query := `
		SELECT id, document_hash, name_commitment, issuing_country_commitment, document_type, face_embedding, created_at
		FROM identities
		WHERE document_hash = $1
	`

	var identity domain.Identity
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, hash).Scan(
		&identity.ID,
		&identity.DocumentHash,
		&identity.NameCommitment,
		&identity.IssuingCountryCommitment,
		&identity.DocumentType,
		&embedding,
		&identity.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity by document hash: %w", err)
	}

	if embedding != nil && embedding.Slice() != nil {
		identity.FaceEmbedding = embedding.Slice()
	}

	return &identity, nil
}

func (r *IdentityRepository) FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.Identity, error) {
	query := `
		SELECT id, document_hash, name_commitment, issuing_country_commitment, document_type, created_at,
			1 - (face_embedding <=> $1) AS similarity
		FROM identities
		WHERE face_embedding IS NOT NULL
			AND 1 - (face_embedding <=> $1) >= $2
		ORDER BY face_embedding <=> $1
		LIMIT $3
	`

	vec := pgvector.NewVector(embedding)

	rows, err := r.pool.Query(ctx, query, vec, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("find similar identities: %w", err)
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		var similarity float64
		err := rows.Scan(
			&identity.ID,
			&identity.DocumentHash,
			&identity.NameCommitment,
			&identity.IssuingCountryCommitment,
			&identity.DocumentType,
			&identity.CreatedAt,
			&similarity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}

	return identities, nil
}
