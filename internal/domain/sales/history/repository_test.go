package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/summary"
)

var uploadColumns = []string{"id", "owner", "filename", "mode", "total", "summary", "created_at"}

func TestPostgresRepository_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now()

	upload := &Upload{
		Owner:    "session-1",
		Filename: "march.csv",
		Mode:     summary.ModeItem,
		Total:    decimal.RequireFromString("15.50"),
		Summary:  summary.Serialized{"Pen": decimal.RequireFromString("15.50")},
	}

	mock.ExpectQuery(`INSERT INTO sales_uploads`).
		WithArgs(pgxmock.AnyArg(), "session-1", "march.csv", "item", "15.5", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	require.NoError(t, repo.Record(context.Background(), upload))

	assert.NotEqual(t, uuid.Nil, upload.ID)
	assert.Equal(t, now, upload.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Record_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO sales_uploads`).WillReturnError(errors.New("connection refused"))

	err = NewPostgresRepository(mock).Record(context.Background(), &Upload{Mode: summary.ModeDate})
	assert.ErrorContains(t, err, "failed to record upload")
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM sales_uploads WHERE owner = \$1`).
		WithArgs("session-1", MaxList).
		WillReturnRows(pgxmock.NewRows(uploadColumns).AddRow(
			id, "session-1", "march.csv", "combined", "7.25",
			[]byte(`{"05-01-2024|Pen":"7.25"}`), now,
		))

	uploads, err := repo.List(context.Background(), "session-1", 500)
	require.NoError(t, err)
	require.Len(t, uploads, 1)

	u := uploads[0]
	assert.Equal(t, id, u.ID)
	assert.Equal(t, summary.ModeCombined, u.Mode)
	assert.Equal(t, "7.25", u.Total.String())

	s, err := u.Decode()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "7.25", s.Total().String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM sales_uploads WHERE id = \$1 AND owner = \$2`).
			WithArgs(id, "session-1").
			WillReturnRows(pgxmock.NewRows(uploadColumns).AddRow(
				id, "session-1", "jan.csv", "date", "3",
				[]byte(`{"01-01-2024":"3"}`), time.Now(),
			))

		u, err := repo.Get(context.Background(), "session-1", id)
		require.NoError(t, err)
		assert.Equal(t, "jan.csv", u.Filename)
		assert.True(t, decimal.NewFromInt(3).Equal(u.Summary["01-01-2024"]))
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM sales_uploads WHERE id = \$1 AND owner = \$2`).
			WithArgs(id, "someone-else").
			WillReturnRows(pgxmock.NewRows(uploadColumns))

		_, err := repo.Get(context.Background(), "someone-else", id)
		assert.ErrorIs(t, err, ErrUploadNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_PruneBefore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cutoff := time.Now().AddDate(0, 0, -90)

	mock.ExpectExec(`DELETE FROM sales_uploads WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := NewPostgresRepository(mock).PruneBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrations_Embedded(t *testing.T) {
	entries, err := Migrations.ReadDir(MigrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_sales_uploads.sql", entries[0].Name())
}
