// Package dbtest opens throwaway in-memory sqlite databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/abdusco/shortlink/internal/config"
	"github.com/abdusco/shortlink/internal/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Open(t testing.TB) *db.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	instance, err := db.Open(context.Background(), config.DriverSQLite, dsn)
	require.NoError(t, err)

	t.Cleanup(func() { instance.Close() })
	return instance
}
