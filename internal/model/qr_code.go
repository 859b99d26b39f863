package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRCode is a dynamic code: ShortID is printed in the QR image and resolves to
// CurrentURL until the code is deactivated, expires or runs out of scans.
// Deletion is a hard delete; IsActive=false is the only disabled state.
type QRCode struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	ShortID       string     `gorm:"type:varchar(16);uniqueIndex;not null" json:"short_id"`
	Name          string     `gorm:"type:varchar(255);not null" json:"name"`
	CurrentURL    string     `gorm:"type:text;not null" json:"current_url"`
	Description   *string    `gorm:"type:text" json:"description"`
	IsActive      bool       `gorm:"not null" json:"is_active"`
	ScanCount     int64      `gorm:"not null;default:0" json:"scan_count"`
	MaxScans      *int64     `json:"max_scans"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at"`
	FallbackURL   *string    `gorm:"type:text" json:"fallback_url"`
	LastScannedAt *time.Time `json:"last_scanned_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (QRCode) TableName() string { return "qr_codes" }

func (c *QRCode) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Clone returns a deep copy so stored records cannot be mutated through pointers.
func (c *QRCode) Clone() *QRCode {
	out := *c
	out.Description = clonePtr(c.Description)
	out.MaxScans = clonePtr(c.MaxScans)
	out.ExpiresAt = clonePtr(c.ExpiresAt)
	out.FallbackURL = clonePtr(c.FallbackURL)
	out.LastScannedAt = clonePtr(c.LastScannedAt)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
