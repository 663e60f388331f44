package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/capshop-backend/pkg/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestRunUpCreatesStorefrontTables(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Run(context.Background(), sqlDB, config.DriverSQLite, "up"))

	for _, table := range []string{"products", "base_hats", "customization_categories", "discount_codes", "orders", "custom_products"} {
		require.Truef(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}

	require.NoError(t, Run(context.Background(), sqlDB, config.DriverSQLite, "down"))
	require.False(t, conn.Migrator().HasTable("orders"))
	require.True(t, conn.Migrator().HasTable("discount_codes"))
}

func TestRunRequiresDB(t *testing.T) {
	require.Error(t, Run(context.Background(), nil, config.DriverSQLite, "up"))
}

func TestMigrateToVersionRejectsGarbage(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_version?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.Error(t, MigrateToVersion(context.Background(), sqlDB, config.DriverSQLite, ""))
	require.Error(t, MigrateToVersion(context.Background(), sqlDB, config.DriverSQLite, "latest"))
}

func TestCreateAndValidateDir(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Gift Cards")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_gift_cards.sql"))
	require.NoError(t, ValidateDir(dir))

	bad := filepath.Join(dir, "not_versioned.sql")
	require.NoError(t, os.WriteFile(bad, []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func TestDialectFor(t *testing.T) {
	if got := dialectFor(config.DriverSQLite); got != "sqlite3" {
		t.Fatalf("expected sqlite3, got %q", got)
	}
	if got := dialectFor(config.DriverPostgres); got != "postgres" {
		t.Fatalf("expected postgres, got %q", got)
	}
}
