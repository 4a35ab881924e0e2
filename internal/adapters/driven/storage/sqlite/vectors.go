package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-kb/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/sercha-kb/internal/core/domain"
	"github.com/custodia-labs/sercha-kb/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore keeps embeddings in the vectors table and ranks them by
// exhaustive cosine similarity. It is the persistent default backend for
// single-node deployments.
type VectorStore struct {
	store      *Store
	dimensions int
}

// Upsert writes the batch in one transaction, so a failing batch leaves
// the namespace unchanged.
func (v *VectorStore) Upsert(ctx context.Context, ns string, records []domain.VectorRecord) error {
	width, err := vectorstore.BatchWidth(records)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}
	if err := vectorstore.CheckWidth(v.dimensions, width); err != nil {
		return err
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	existing, err := namespaceWidth(ctx, tx, ns)
	if err != nil {
		return err
	}
	if err := vectorstore.CheckWidth(existing, width); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (namespace, id, document_id, filename, chunk_index, text, tenant_id, dimensions, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			document_id = excluded.document_id,
			filename = excluded.filename,
			chunk_index = excluded.chunk_index,
			text = excluded.text,
			tenant_id = excluded.tenant_id,
			dimensions = excluded.dimensions,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, ns, r.ID, r.Metadata.DocumentID, r.Metadata.Filename,
			r.Metadata.ChunkIndex, r.Metadata.Text, ns, width, float32SliceToBytes(r.Vector)); err != nil {
			return fmt.Errorf("%w: saving vector %s: %w", domain.ErrIndexUnavailable, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Query scores every vector in the namespace and returns the best topK.
func (v *VectorStore) Query(
	ctx context.Context, ns string, q domain.VectorQuery, topK int,
) ([]domain.VectorMatch, error) {
	if err := vectorstore.RequireVector(q); err != nil {
		return nil, err
	}

	existing, err := namespaceWidth(ctx, v.store.db, ns)
	if err != nil {
		return nil, err
	}
	if existing == 0 {
		return []domain.VectorMatch{}, nil
	}
	if err := vectorstore.CheckWidth(existing, len(q.Vector)); err != nil {
		return nil, err
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, document_id, filename, chunk_index, text, tenant_id, embedding
		FROM vectors WHERE namespace = ?
	`, ns)
	if err != nil {
		return nil, fmt.Errorf("%w: querying vectors: %w", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	matches := []domain.VectorMatch{}
	for rows.Next() {
		var m domain.VectorMatch
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Metadata.DocumentID, &m.Metadata.Filename,
			&m.Metadata.ChunkIndex, &m.Metadata.Text, &m.Metadata.TenantID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		m.Score = vectorstore.Cosine(q.Vector, bytesToFloat32Slice(blob))
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	return vectorstore.Rank(matches, topK), nil
}

// Count returns the number of records in a namespace.
func (v *VectorStore) Count(ctx context.Context, ns string) (int, error) {
	var n int
	err := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors WHERE namespace = ?", ns).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return n, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// namespaceWidth returns the width established for ns, or 0 when empty.
func namespaceWidth(ctx context.Context, q queryer, ns string) (int, error) {
	var width int
	err := q.QueryRowContext(ctx, "SELECT dimensions FROM vectors WHERE namespace = ? LIMIT 1", ns).Scan(&width)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading namespace width: %w", domain.ErrIndexUnavailable, err)
	}
	return width, nil
}

// Dimensions returns the configured width, or 0 when adopted per namespace.
func (v *VectorStore) Dimensions() int {
	return v.dimensions
}

// Ping checks the database connection.
func (v *VectorStore) Ping(ctx context.Context) error {
	if err := v.store.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the database.
func (v *VectorStore) Close() error {
	return nil
}
