package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it in tests.
type Database interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore keeps every collection in one documents table keyed by
// (collection, id), with the JSON body in a jsonb column.
type PostgresStore struct {
	db Database
}

func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) QueryByOwner(ctx context.Context, collection, owner string) ([]Document, error) {
	query := `
		SELECT id, owner, doc
		FROM documents
		WHERE collection = $1 AND owner = $2
		ORDER BY id
	`
	rows, err := s.db.Query(ctx, query, collection, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Owner, &doc.Data); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) GetByID(ctx context.Context, collection, id string) (*Document, error) {
	doc := &Document{}
	query := `
		SELECT id, owner, doc
		FROM documents
		WHERE collection = $1 AND id = $2
	`
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&doc.ID, &doc.Owner, &doc.Data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

const upsertQuery = `
	INSERT INTO documents (collection, id, owner, doc, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (collection, id) DO UPDATE SET doc = documents.doc || EXCLUDED.doc, owner = EXCLUDED.owner, updated_at = NOW()
`

func (s *PostgresStore) Upsert(ctx context.Context, collection, id, owner string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", collection, id, err)
	}
	_, err = s.db.Exec(ctx, upsertQuery, collection, id, owner, body)
	return err
}

func (s *PostgresStore) DeleteByID(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
	_, err := s.db.Exec(ctx, query, collection, id)
	return err
}

// BatchWrite applies all operations in one transaction. A failure anywhere
// rolls back and is reported as a single error; callers re-run the whole
// pass, which is safe because upserts are keyed deterministically.
func (s *PostgresStore) BatchWrite(ctx context.Context, ops []WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("batch write failed to begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, op := range ops {
		switch op.Kind {
		case WriteUpsert:
			body, err := json.Marshal(op.Doc)
			if err != nil {
				return fmt.Errorf("failed to encode document %s/%s: %w", op.Collection, op.ID, err)
			}
			if _, err := tx.Exec(ctx, upsertQuery, op.Collection, op.ID, op.Owner, body); err != nil {
				return fmt.Errorf("batch write failed on %s/%s: %w", op.Collection, op.ID, err)
			}
		case WriteDelete:
			query := `DELETE FROM documents WHERE collection = $1 AND id = $2`
			if _, err := tx.Exec(ctx, query, op.Collection, op.ID); err != nil {
				return fmt.Errorf("batch write failed on %s/%s: %w", op.Collection, op.ID, err)
			}
		default:
			return fmt.Errorf("unknown write kind %d for %s/%s", op.Kind, op.Collection, op.ID)
		}
	}

	return tx.Commit(ctx)
}

// DistinctOwners lists every owner with at least one document in the
// collection.
func (s *PostgresStore) DistinctOwners(ctx context.Context, collection string) ([]string, error) {
	query := `SELECT DISTINCT owner FROM documents WHERE collection = $1 ORDER BY owner`
	rows, err := s.db.Query(ctx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, rows.Err()
}
