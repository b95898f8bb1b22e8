// Package dbtest provides migrated in-memory SQLite databases for tests.
package dbtest

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-catalog/internal/config"
	"github.com/iliyamo/movie-show-catalog/internal/database"
)

var seq atomic.Int64

// Open returns a fresh database with all migrations applied.  Each call gets
// its own named in-memory database, closed when the test ends.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("%s_%d", strings.NewReplacer("/", "_", " ", "_", "#", "_", "?", "_").Replace(t.Name()), seq.Add(1))
	db, err := database.OpenSQLite(database.MemoryDSN(name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db, config.DriverSQLite))
	return db
}
