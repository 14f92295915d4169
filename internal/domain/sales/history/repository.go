// Package history keeps a record of past uploads so their reports can be
// rebuilt later. Only the serialized summary is stored, never the file.
package history

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
)

// MaxList caps the number of uploads returned by List.
const MaxList = 50

// Migrations holds the goose migrations for the history table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

var ErrUploadNotFound = errors.New("upload not found")

// Upload is one recorded ingestion.
type Upload struct {
	ID        uuid.UUID          `json:"id"`
	Owner     string             `json:"-"`
	Filename  string             `json:"filename"`
	Mode      summary.Mode       `json:"mode"`
	Total     decimal.Decimal    `json:"total"`
	Summary   summary.Serialized `json:"-"`
	CreatedAt time.Time          `json:"created_at"`
}

// Decode rebuilds the sorted summary of the upload.
func (u *Upload) Decode() (*summary.Summary, error) {
	return summary.Decode(u.Summary, u.Mode)
}

// Repository stores and retrieves uploads.
type Repository interface {
	Record(ctx context.Context, upload *Upload) error
	List(ctx context.Context, owner string, limit int) ([]Upload, error)
	Get(ctx context.Context, owner string, id uuid.UUID) (*Upload, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DBTX is the subset of pgxpool.Pool used by the repository.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository creates a new PostgreSQL upload repository
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Record inserts an upload, assigning an ID when missing.
func (r *PostgresRepository) Record(ctx context.Context, upload *Upload) error {
	query := `
		INSERT INTO sales_uploads (id, owner, filename, mode, total, summary)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::jsonb)
		RETURNING created_at`

	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}

	payload, err := json.Marshal(upload.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	err = r.db.QueryRow(ctx, query,
		upload.ID,
		upload.Owner,
		upload.Filename,
		string(upload.Mode),
		upload.Total.String(),
		payload,
	).Scan(&upload.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// List returns the owner's uploads, newest first. The limit is clamped to
// MaxList.
func (r *PostgresRepository) List(ctx context.Context, owner string, limit int) ([]Upload, error) {
	query := `
		SELECT id, owner, filename, mode, total::text, summary, created_at
		FROM sales_uploads
		WHERE owner = $1
		ORDER BY created_at DESC
		LIMIT $2`

	if limit <= 0 || limit > MaxList {
		limit = MaxList
	}

	rows, err := r.db.Query(ctx, query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *u)
	}
	return uploads, rows.Err()
}

// Get returns one of the owner's uploads.
func (r *PostgresRepository) Get(ctx context.Context, owner string, id uuid.UUID) (*Upload, error) {
	query := `
		SELECT id, owner, filename, mode, total::text, summary, created_at
		FROM sales_uploads
		WHERE id = $1 AND owner = $2`

	u, err := scanUpload(r.db.QueryRow(ctx, query, id, owner))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUploadNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// PruneBefore deletes uploads created before cutoff and returns how many
// were removed.
func (r *PostgresRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM sales_uploads WHERE created_at < $1`

	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune uploads: %w", err)
	}
	return result.RowsAffected(), nil
}

func scanUpload(row pgx.Row) (*Upload, error) {
	var (
		u       Upload
		mode    string
		total   string
		payload []byte
	)
	if err := row.Scan(&u.ID, &u.Owner, &u.Filename, &mode, &total, &payload, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan upload: %w", err)
	}

	u.Mode = summary.Mode(mode)

	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("failed to parse total %q: %w", total, err)
	}
	u.Total = amount

	if err := json.Unmarshal(payload, &u.Summary); err != nil {
		return nil, fmt.Errorf("failed to decode stored summary: %w", err)
	}
	return &u, nil
}
