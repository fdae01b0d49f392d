// internal/policystore/postgres.go
package policystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"policy-assistant/internal/common/logger"
	"policy-assistant/internal/models"
)

// PostgresStore reads policy records from a user_policies table with a JSONB
// record column. Matching happens in Go with the same precedence as the file
// store so both backends behave identically.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "policystore-pg"}),
	}
}

// FindPolicy scans rows in insertion order and returns the first match.
func (s *PostgresStore) FindPolicy(ctx context.Context, q Query) (*models.PolicyRecord, error) {
	if q.Empty() {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM user_policies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query user_policies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan user_policies row: %w", err)
		}

		var rec models.PolicyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.logger.Warn("skipping malformed policy record", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}

		if matches(&rec, q) {
			return &rec, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user_policies: %w", err)
	}

	return nil, ErrNotFound
}
