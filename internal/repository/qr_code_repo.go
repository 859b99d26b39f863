package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"dynqr/redirector/internal/model"
)

var (
	ErrNotFound         = errors.New("qr code not found")
	ErrDuplicateShortID = errors.New("short id already taken")
)

// QRCodeRepository is the keyed record store behind the resolver and the owner API.
// Implementations: PostgreSQL via gorm (production) or in-memory (local dev / tests).
type QRCodeRepository interface {
	Create(ctx context.Context, code *model.QRCode) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.QRCode, error)
	// FindByShortID is an exact, case-sensitive match.
	FindByShortID(ctx context.Context, shortID string) (*model.QRCode, error)
	ExistsShortID(ctx context.Context, shortID string) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.QRCode, error)
	UpdateFields(ctx context.Context, id uuid.UUID, patch *model.QRCodePatch) (*model.QRCode, error)
	// UpdateScanStats stores scanCount unless the stored value is already higher,
	// so a late write from a stale read never lowers the count.
	UpdateScanStats(ctx context.Context, id uuid.UUID, scanCount int64, scannedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}
