package database

import (
	"github.com/yeremiapane/tableside-app/utils"
	"gorm.io/gorm"
)

// EnsureGuards applies database-level guards after AutoMigrate. The session
// uniqueness rule is also enforced in application code; the trigger is the
// backstop against a writer that bypasses the service layer.
func EnsureGuards(db *gorm.DB) error {
	statements := []string{
		`CREATE INDEX IF NOT EXISTS idx_orders_settlement ON orders (table_id, payment_status)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_active ON table_sessions (table_id, status)`,
	}
	if db.Dialector.Name() != "mysql" {
		statements = append(statements,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_one_active ON carts (table_id) WHERE status = 'active'`)
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error applying schema guard: %v\nStatement: %s", err, stmt)
			continue
		}
	}

	if db.Dialector.Name() == "mysql" {
		// MySQL has no partial unique indexes, so triggers guard the
		// one-active-session and one-active-cart invariants.
		triggers := []string{`
CREATE TRIGGER IF NOT EXISTS trg_one_active_session
BEFORE INSERT ON table_sessions
FOR EACH ROW
BEGIN
    IF NEW.status = 'active' AND EXISTS (
        SELECT 1 FROM table_sessions
        WHERE table_id = NEW.table_id AND status = 'active'
    ) THEN
        SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'table already has an active session';
    END IF;
END`, `
CREATE TRIGGER IF NOT EXISTS trg_one_active_cart
BEFORE INSERT ON carts
FOR EACH ROW
BEGIN
    IF NEW.status = 'active' AND EXISTS (
        SELECT 1 FROM carts
        WHERE table_id = NEW.table_id AND status = 'active'
    ) THEN
        SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = 'table already has an active cart';
    END IF;
END`}
		for _, trigger := range triggers {
			if err := db.Exec(trigger).Error; err != nil {
				utils.ErrorLogger.Printf("Error creating uniqueness trigger: %v", err)
			}
		}
	}

	return nil
}
