package database_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verid-labs/verid/internal/database"
)

// TestMigratorIntegration tests the migration functionality against a real database
func TestMigratorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))

	cleanupDatabase(t, db)

	t.Run("NewMigrator creates migrator successfully", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, "verid_test")
		require.NoError(t, err)
		require.NotNil(t, migrator)
		defer func() { _ = migrator.Close() }()
	})

	t.Run("Up runs migrations successfully", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, "verid_test")
		require.NoError(t, err)
		defer func() { _ = migrator.Close() }()

		err = migrator.Up()
		require.NoError(t, err)

		assertTableExists(t, db, "verifications")
		assertTableExists(t, db, "identities")
	})

	t.Run("Version returns current version", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, "verid_test")
		require.NoError(t, err)
		defer func() { _ = migrator.Close() }()

		version, dirty, err := migrator.Version()
		require.NoError(t, err)
		assert.False(t, dirty, "migration should not be dirty")
		assert.Equal(t, uint(1), version, "should be at version 1")
	})

	t.Run("Schema validation after migration", func(t *testing.T) {
		t.Run("verifications table has correct columns", func(t *testing.T) {
			columns := getTableColumns(t, db, "verifications")
			expectedColumns := []string{
				"id", "session_id", "passed", "challenges_total",
				"challenges_done", "spoof_score", "latency_ms", "created_at",
			}
			for _, col := range expectedColumns {
				assert.Contains(t, columns, col, "verifications should have column %s", col)
			}
		})

		t.Run("identities table has correct columns", func(t *testing.T) {
			columns := getTableColumns(t, db, "identities")
			expectedColumns := []string{
				"id", "document_hash", "name_commitment", "issuing_country_commitment",
				"document_type", "face_embedding", "created_at",
			}
			for _, col := range expectedColumns {
				assert.Contains(t, columns, col, "identities should have column %s", col)
			}
		})

		t.Run("indexes are created", func(t *testing.T) {
			indexes := getTableIndexes(t, db, "verifications")
			assert.Contains(t, indexes, "idx_verifications_session_id")
			assert.Contains(t, indexes, "idx_verifications_created_at")

			identityIndexes := getTableIndexes(t, db, "identities")
			assert.Contains(t, identityIndexes, "idx_identities_face_embedding")
		})
	})

	t.Run("Duplicate document hash is rejected", func(t *testing.T) {
		_, err := db.Exec(`
			INSERT INTO identities (id, document_hash, name_commitment)
			VALUES (gen_random_uuid(), 'dup-hash', 'commit-1')
		`)
		require.NoError(t, err)

		_, err = db.Exec(`
			INSERT INTO identities (id, document_hash, name_commitment)
			VALUES (gen_random_uuid(), 'dup-hash', 'commit-2')
		`)
		require.Error(t, err, "duplicate document_hash should violate unique constraint")
	})

	t.Cleanup(func() {
		cleanupDatabase(t, db)
	})
}

// Helper functions

func cleanupDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(`
		DROP TABLE IF EXISTS identities;
		DROP TABLE IF EXISTS verifications;
		DROP TABLE IF EXISTS schema_migrations;
	`)
	if err != nil {
		t.Logf("cleanup warning: %v", err)
	}
}

func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)

	require.NoError(t, err)
	assert.True(t, exists, "table %s should exist", tableName)
}

func getTableColumns(t *testing.T, db *sql.DB, tableName string) []string {
	t.Helper()

	rows, err := db.Query(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = $1
		ORDER BY ordinal_position
	`, tableName)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var col string
		require.NoError(t, rows.Scan(&col))
		columns = append(columns, col)
	}

	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, tableName string) []string {
	t.Helper()

	rows, err := db.Query(`
		SELECT indexname
		FROM pg_indexes
		WHERE schemaname = 'public'
		AND tablename = $1
	`, tableName)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var indexes []string
	for rows.Next() {
		var idx string
		require.NoError(t, rows.Scan(&idx))
		indexes = append(indexes, idx)
	}

	return indexes
}
