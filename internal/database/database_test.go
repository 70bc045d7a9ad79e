package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("postgres", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown DB_DRIVER")
}

func TestMigrate_SQLite(t *testing.T) {
	db, err := Open("sqlite", "file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	for _, table := range []string{"courses", "enrollments", "payments", "provider_events"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex("payments", "ux_payments_enrollment_id"))
	assert.True(t, db.Migrator().HasIndex("provider_events", "ux_provider_events_provider_event"))
}
