package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leapquery/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	t.Run("close with nil DB", func(t *testing.T) {
		base := &BaseSQLAdapter{}
		assert.NoError(t, base.Close())
	})

	t.Run("close with open DB", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		mock.ExpectClose()

		base := &BaseSQLAdapter{DB: db}
		require.NoError(t, base.Close())
		assert.False(t, base.IsConnected())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBaseSQLAdapter_Exec(t *testing.T) {
	tests := []struct {
		name      string
		setupDB   bool
		setupMock func(mock sqlmock.Sqlmock)
		sql       string
		args      []any
		errMsg    string
	}{
		{
			name:   "exec without connection",
			sql:    "DELETE FROM document",
			errMsg: "database connection not established",
		},
		{
			name:    "exec with args",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM document WHERE age > \\$1").
					WithArgs(30).
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
			sql:  "DELETE FROM document WHERE age > $1",
			args: []any{30},
		},
		{
			name:    "exec with error",
			setupDB: true,
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INVALID SQL").WillReturnError(assert.AnError)
			},
			sql:    "INVALID SQL",
			errMsg: "failed to execute SQL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				defer func() { _ = db.Close() }()
				tt.setupMock(mock)
				base.DB = db
			}

			err := base.Exec(context.Background(), tt.sql, tt.args...)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("query without connection", func(t *testing.T) {
		base := &BaseSQLAdapter{}
		rows, err := base.Query(ctx, "SELECT 1")
		require.ErrorIs(t, err, ErrNotConnected)
		assert.Nil(t, rows)
	})

	t.Run("query passes args through", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT d.name FROM document d WHERE d.age >= \\$1").
			WithArgs(18).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alpha").AddRow("Beta"))

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.Query(ctx, "SELECT d.name FROM document d WHERE d.age >= $1", 18)
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()

		var names []string
		for rows.Next() {
			var n string
			require.NoError(t, rows.Scan(&n))
			names = append(names, n)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"Alpha", "Beta"}, names)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query with error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectQuery("INVALID").WillReturnError(assert.AnError)

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.Query(ctx, "INVALID SQL")
		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, rows)
		assert.Contains(t, err.Error(), "failed to execute query")
	})
}

func TestBaseSQLAdapter_Open(t *testing.T) {
	base := &BaseSQLAdapter{}
	cfg := core.AdapterConfig{Type: "sqlite", Database: "mem"}
	require.NoError(t, base.Open(context.Background(), "sqlite", ":memory:", cfg))
	defer func() { _ = base.Close() }()

	assert.True(t, base.IsConnected())
	assert.Equal(t, cfg.Type, base.Cfg.Type)

	err := (&BaseSQLAdapter{}).Open(context.Background(), "no-such-driver", "", cfg)
	assert.ErrorContains(t, err, "failed to open no-such-driver connection")
}

func TestDecodeParams(t *testing.T) {
	type params struct {
		Pragmas map[string]string `mapstructure:"pragmas"`
		Threads int               `mapstructure:"threads"`
	}

	tests := []struct {
		name   string
		params map[string]any
		want   params
		errMsg string
	}{
		{
			name: "empty",
		},
		{
			name: "weakly typed",
			params: map[string]any{
				"pragmas": map[string]any{"foreign_keys": "on"},
				"threads": "4",
			},
			want: params{Pragmas: map[string]string{"foreign_keys": "on"}, Threads: 4},
		},
		{
			name:   "unknown key",
			params: map[string]any{"nope": 1},
			errMsg: "invalid sqlite params",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got params
			err := DecodeParams(core.AdapterConfig{Type: "sqlite", Params: tt.params}, &got)
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
