package infra

import (
	"fmt"

	"github.com/Neo52000/ma-papeterie-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate,
// then applies idempotent SQL patches that GORM cannot express (the ledger's
// append-only trigger, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations creates/updates all tables and applies the schema patches.
// Also used by integration test setups.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Ruleset{},
		&model.Rule{},
		&model.Simulation{},
		&model.SimulationItem{},
		&model.PriceChangeLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements. Each statement uses
// IF NOT EXISTS / OR REPLACE semantics so re-running on an already-patched
// DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// The price-change ledger is append-only. The repository exposes no
		// update/delete, and this trigger enforces the same invariant against
		// ad-hoc SQL: any UPDATE or DELETE on the table raises.
		{"ledger immutability function", `
CREATE OR REPLACE FUNCTION price_change_log_immutable() RETURNS trigger AS $$
BEGIN
  RAISE EXCEPTION 'price_change_log is append-only (%% rejected)', TG_OP;
END;
$$ LANGUAGE plpgsql`},
		{"ledger immutability trigger", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_price_change_log_immutable') THEN
    CREATE TRIGGER trg_price_change_log_immutable
        BEFORE UPDATE OR DELETE ON price_change_log
        FOR EACH ROW EXECUTE FUNCTION price_change_log_immutable();
  END IF;
END $$`},
		// Rollback reads exactly the non-rollback rows of one simulation.
		{"partial index for rollback worklist", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_price_log_apply_entries') THEN
    CREATE INDEX idx_price_log_apply_entries
        ON price_change_log (simulation_id, created_at)
        WHERE is_rollback = false;
  END IF;
END $$`},
		// The engine's eligibility scan: active products with a real price.
		{"partial index for eligible products", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_products_eligible') THEN
    CREATE INDEX idx_products_eligible
        ON products (category)
        WHERE is_active = true AND price_ht > 0;
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
