package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrescamacho/garmentflow/internal/infrastructure/database"
)

// NewTestDB returns a private in-memory ledger with every engine table
// migrated. It is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.NewTestConnection()
	require.NoError(t, err, "open in-memory ledger")
	t.Cleanup(func() { _ = database.Close(db) })

	return db
}
