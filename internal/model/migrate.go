package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&QRCode{}); err != nil {
		return err
	}

	// Owner dashboards list newest first.
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_qr_codes_owner_created " +
			"ON qr_codes (owner_id, created_at DESC)",
	).Error
}
