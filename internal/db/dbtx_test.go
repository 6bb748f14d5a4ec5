package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"no placeholders", "SELECT 1", "SELECT 1"},
		{"single", "SELECT * FROM daily_plans WHERE id = ?", "SELECT * FROM daily_plans WHERE id = $1"},
		{
			"multiple",
			"UPDATE daily_plans SET status = ?, updated_at = ? WHERE id = ?",
			"UPDATE daily_plans SET status = $1, updated_at = $2 WHERE id = $3",
		},
		{
			"quoted literal untouched",
			"SELECT '?' AS q, id FROM t WHERE id = ?",
			"SELECT '?' AS q, id FROM t WHERE id = $1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.query))
		})
	}
}

func TestWrap_SQLiteIsPassthrough(t *testing.T) {
	db := openTestDB(t)
	assert.Same(t, db, Wrap(db, DialectSQLite))
}

func TestWrap_PostgresRewritesPlaceholders(t *testing.T) {
	rec := &recordingDBTX{}
	conn := Wrap(rec, DialectPostgres)

	_, _ = conn.ExecContext(context.Background(), "DELETE FROM t WHERE a = ? AND b = ?", 1, 2)
	require.Len(t, rec.queries, 1)
	assert.Equal(t, "DELETE FROM t WHERE a = $1 AND b = $2", rec.queries[0])
}

type recordingDBTX struct {
	queries []string
}

func (r *recordingDBTX) ExecContext(_ context.Context, query string, _ ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	return nil, nil
}

func (r *recordingDBTX) QueryContext(_ context.Context, query string, _ ...any) (*sql.Rows, error) {
	r.queries = append(r.queries, query)
	return nil, nil
}

func (r *recordingDBTX) QueryRowContext(_ context.Context, query string, _ ...any) *sql.Row {
	r.queries = append(r.queries, query)
	return nil
}
