package models_test

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onyangohw/hardware_backend/config"
	"github.com/onyangohw/hardware_backend/models"
	"github.com/onyangohw/hardware_backend/utils"
)

// openTestDB swaps the global connection for an in-memory sqlite database
// scoped to the test. cache=shared with a single connection keeps every
// transaction on the same memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Use(config.NewTenantGuardPlugin()); err != nil {
		t.Fatalf("tenant guard: %v", err)
	}

	config.SetDB(db)
	models.MigrateTable()

	t.Cleanup(func() {
		config.SetDB(nil)
		sqlDB.Close()
	})
	return db
}

// newTestContext seeds a business with its two units and returns a context
// carrying the acting user and tenant, the way SessionMiddleware would.
func newTestContext(t *testing.T) context.Context {
	t.Helper()

	ctx := context.Background()
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test User")
	ctx = utils.SetUsernameInContext(ctx, "test@local")

	business, err := models.CreateBusiness(ctx, &models.NewBusiness{Name: "Test Hardware"})
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	return utils.SetBusinessIdInContext(ctx, business.ID.String())
}

func unitByCode(t *testing.T, ctx context.Context, code models.UnitCode) *models.Unit {
	t.Helper()

	unit, err := models.GetUnitByCode(ctx, code)
	if err != nil {
		t.Fatalf("resolve %s unit: %v", code, err)
	}
	return unit
}
