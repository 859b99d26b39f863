package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanEvent carries one successful resolution to the analytics path.
// ScanCount is the post-scan value computed from the record that was read.
type ScanEvent struct {
	QRCodeID  uuid.UUID `json:"qr_code_id"`
	ShortID   string    `json:"short_id"`
	ScanCount int64     `json:"scan_count"`
	ScannedAt time.Time `json:"scanned_at"`
}
