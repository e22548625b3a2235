package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("docstore: document not found")
	ErrDuplicate = errors.New("docstore: duplicate document id")
)

// Store persists schemaless JSON documents in a single Postgres table,
// keyed by (collection, doc_id). Filters are equality maps; dotted keys
// address nested fields ("security.is_email_verified").
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Insert(ctx context.Context, collection, docID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (collection, doc_id, data)
		VALUES ($1, $2, $3)
	`, collection, docID, data)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// FindByID loads a single document by its key into out.
func (s *Store) FindByID(ctx context.Context, collection, docID string, out any) error {
	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND doc_id = $2
	`, collection, docID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// FindOne loads the first document matching the filter into out.
func (s *Store) FindOne(ctx context.Context, collection string, filter map[string]any, out any) error {
	cond, err := json.Marshal(expandFilter(filter))
	if err != nil {
		return err
	}
	var data []byte
	err = s.pool.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND data @> $2
		LIMIT 1
	`, collection, cond).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// FindMany returns raw documents matching the filter, newest first.
// limit <= 0 means no limit.
func (s *Store) FindMany(ctx context.Context, collection string, filter map[string]any, limit, skip int) ([]json.RawMessage, error) {
	cond, err := json.Marshal(expandFilter(filter))
	if err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	rows, err := s.pool.Query(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND data @> $2
		ORDER BY data->>'created_at' DESC NULLS LAST
		LIMIT $3 OFFSET $4
	`, collection, cond, limitArg(limit), skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(data))
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	cond, err := json.Marshal(expandFilter(filter))
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.pool.QueryRow(ctx, `
		SELECT count(*) FROM documents
		WHERE collection = $1 AND data @> $2
	`, collection, cond).Scan(&n)
	return n, err
}

// Replace overwrites the whole document.
func (s *Store) Replace(ctx context.Context, collection, docID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents SET data = $3
		WHERE collection = $1 AND doc_id = $2
	`, collection, docID, data)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFields updates individual fields in place. Dotted keys address
// nested objects; intermediate objects are created as needed.
func (s *Store) SetFields(ctx context.Context, collection, docID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	expr := "data"
	args := []any{collection, docID}
	i := 3
	for path, val := range fields {
		data, err := json.Marshal(val)
		if err != nil {
			return err
		}
		args = append(args, strings.Split(path, "."), data)
		expr = fmt.Sprintf("jsonb_set(%s, $%d, $%d::jsonb, true)", expr, i, i+1)
		i += 2
	}
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE documents SET data = %s
		WHERE collection = $1 AND doc_id = $2
	`, expr), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, docID string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND doc_id = $2
	`, collection, docID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// limitArg maps limit <= 0 to a NULL bound, which Postgres treats as
// LIMIT ALL. A negative parameter would be rejected outright.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// expandFilter turns dotted keys into nested objects so the map can be
// used as a jsonb containment condition.
func expandFilter(filter map[string]any) map[string]any {
	out := make(map[string]any, len(filter))
	for key, val := range filter {
		parts := strings.Split(key, ".")
		node := out
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = val
	}
	return out
}
