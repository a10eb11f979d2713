package mysql

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	driver "github.com/go-sql-driver/mysql"
	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name   string
		config adapter.Config
		addr   string
		user   string
		dbName string
		params map[string]string
	}{
		{
			name:   "defaults",
			config: adapter.Config{Database: "app"},
			addr:   "localhost:3306",
			dbName: "app",
		},
		{
			name: "credentials and options",
			config: adapter.Config{
				Host:     "db.internal",
				Port:     3307,
				Database: "shop",
				Username: "reader",
				Password: "p@ss:word",
				Options:  map[string]string{"charset": "utf8mb4"},
			},
			addr:   "db.internal:3307",
			user:   "reader",
			dbName: "shop",
			params: map[string]string{"charset": "utf8mb4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := driver.ParseDSN(buildDSN(tt.config))
			require.NoError(t, err)
			assert.Equal(t, "tcp", parsed.Net)
			assert.Equal(t, tt.addr, parsed.Addr)
			assert.Equal(t, tt.user, parsed.User)
			assert.Equal(t, tt.config.Password, parsed.Passwd)
			assert.Equal(t, tt.dbName, parsed.DBName)
			assert.True(t, parsed.ParseTime)
			for k, v := range tt.params {
				assert.Equal(t, v, parsed.Params[k])
			}
		})
	}
}

func TestAdapter_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	adp := New(nil)
	adp.DB = db
	defer func() { _ = adp.Close() }()

	mock.ExpectQuery(`SELECT d.name FROM document d ORDER BY d.name LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Alpha"))

	rows, err := adp.Query(context.Background(), "SELECT d.name FROM document d ORDER BY d.name LIMIT 5")
	require.NoError(t, err)
	require.NoError(t, rows.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "mysql", adp.Dialect().GetName())
}
