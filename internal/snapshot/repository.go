package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/vault/internal/token"
)

// ErrNotFound indicates that the requested snapshot was not found.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot represents a stored daily token view.
type Snapshot struct {
	ID           int             `json:"id"`
	TokenID      int             `json:"tokenId"`
	SnapshotDate time.Time       `json:"snapshotDate"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// View decodes the stored token view.
func (s Snapshot) View() (token.View, error) {
	var v token.View
	if err := json.Unmarshal(s.Data, &v); err != nil {
		return token.View{}, fmt.Errorf("decoding snapshot %d: %w", s.ID, err)
	}
	return v, nil
}

// Repository defines persistent storage for snapshots.
type Repository interface {
	Save(ctx context.Context, tokenID int, date time.Time, data json.RawMessage) error
	GetLatest(ctx context.Context, tokenSlug string) (*Snapshot, error)
	GetByDate(ctx context.Context, tokenSlug string, date time.Time) (*Snapshot, error)
	List(ctx context.Context, tokenSlug string, limit int) ([]Snapshot, error)
	GetTokenID(ctx context.Context, slug string) (int, error)
	EnsureToken(ctx context.Context, slug, name, issuer string) (int, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL snapshot repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const selectSnapshot = `SELECT ts.id, ts.token_id, ts.snapshot_date, ts.data, ts.created_at
	 FROM token_snapshots ts
	 JOIN vault_tokens vt ON vt.id = ts.token_id`

func (r *PgRepository) Save(ctx context.Context, tokenID int, date time.Time, data json.RawMessage) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO token_snapshots (token_id, snapshot_date, data)
		 VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (token_id, snapshot_date)
		 DO UPDATE SET data = $3::jsonb`,
		tokenID, date, data)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

func (r *PgRepository) GetLatest(ctx context.Context, tokenSlug string) (*Snapshot, error) {
	row := r.pool.QueryRow(ctx, selectSnapshot+`
		 WHERE vt.slug = $1
		 ORDER BY ts.snapshot_date DESC
		 LIMIT 1`, tokenSlug)
	s, err := scanSnapshot(row)
	if err != nil {
		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}
	return s, nil
}

func (r *PgRepository) GetByDate(ctx context.Context, tokenSlug string, date time.Time) (*Snapshot, error) {
	row := r.pool.QueryRow(ctx, selectSnapshot+`
		 WHERE vt.slug = $1 AND ts.snapshot_date = $2`, tokenSlug, date)
	s, err := scanSnapshot(row)
	if err != nil {
		return nil, fmt.Errorf("getting snapshot by date: %w", err)
	}
	return s, nil
}

func (r *PgRepository) List(ctx context.Context, tokenSlug string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := r.pool.Query(ctx, selectSnapshot+`
		 WHERE vt.slug = $1
		 ORDER BY ts.snapshot_date DESC
		 LIMIT $2`, tokenSlug, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *PgRepository) GetTokenID(ctx context.Context, slug string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM vault_tokens WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("getting token ID for %s: %w", slug, err)
	}
	return id, nil
}

func (r *PgRepository) EnsureToken(ctx context.Context, slug, name, issuer string) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vault_tokens (slug, name, issuer)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (slug) DO UPDATE SET name = $2, issuer = $3
		 RETURNING id`,
		slug, name, issuer).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensuring token %s: %w", slug, err)
	}
	return id, nil
}

func scanSnapshot(row pgx.Row) (*Snapshot, error) {
	var s Snapshot
	if err := row.Scan(&s.ID, &s.TokenID, &s.SnapshotDate, &s.Data, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
