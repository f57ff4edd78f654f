package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: pq.QuoteIdentifier(table)}
}

func (s *PostgresStore) Read(ctx context.Context, collection string, filter Filter) ([]json.RawMessage, error) {
	if filter == nil {
		filter = Filter{}
	}
	criteria, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: encode filter: %v", ErrRejected, err)
	}

	query := fmt.Sprintf(`SELECT body FROM %s WHERE collection = $1 AND body @> $2::jsonb ORDER BY created_at, id`, s.table)
	rows, err := s.db.QueryContext(ctx, query, collection, string(criteria))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, collection, err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrUnavailable, collection, err)
		}
		out = append(out, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, collection, err)
	}
	return out, nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: encode document: %v", ErrRejected, err)
	}
	id, err := documentID(raw)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`INSERT INTO %s (collection, id, body) VALUES ($1, $2, $3::jsonb)`, s.table)
	if _, err := s.db.ExecContext(ctx, query, collection, id, string(raw)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", fmt.Errorf("%w: %s/%s already exists", ErrRejected, collection, id)
		}
		return "", fmt.Errorf("%w: create in %s: %v", ErrUnavailable, collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, partial interface{}) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("%w: encode update: %v", ErrRejected, err)
	}

	query := fmt.Sprintf(`UPDATE %s SET body = body || $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2`, s.table)
	res, err := s.db.ExecContext(ctx, query, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("%w: update %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

func (s *PostgresStore) UpdateIf(ctx context.Context, collection, id string, match Filter, partial interface{}) error {
	if match == nil {
		match = Filter{}
	}
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("%w: encode update: %v", ErrRejected, err)
	}
	criteria, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("%w: encode match: %v", ErrRejected, err)
	}

	query := fmt.Sprintf(`UPDATE %s SET body = body || $3::jsonb, updated_at = now() WHERE collection = $1 AND id = $2 AND body @> $4::jsonb`, s.table)
	res, err := s.db.ExecContext(ctx, query, collection, id, string(raw), string(criteria))
	if err != nil {
		return fmt.Errorf("%w: update %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	query = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE collection = $1 AND id = $2)`, s.table)
	if err := s.db.QueryRowContext(ctx, query, collection, id).Scan(&exists); err != nil {
		return fmt.Errorf("%w: update %s/%s: %v", ErrUnavailable, collection, id, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return fmt.Errorf("%w: %s/%s", ErrConflict, collection, id)
}
