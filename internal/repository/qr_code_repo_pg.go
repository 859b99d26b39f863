package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"dynqr/redirector/internal/model"
)

type pgQRCodeRepository struct {
	db *gorm.DB
}

// NewPGQRCodeRepository expects a *gorm.DB opened with TranslateError enabled.
func NewPGQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &pgQRCodeRepository{db: db}
}

func (r *pgQRCodeRepository) Create(ctx context.Context, code *model.QRCode) error {
	return mapError(r.db.WithContext(ctx).Create(code).Error)
}

func (r *pgQRCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).First(&code, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &code, nil
}

func (r *pgQRCodeRepository) FindByShortID(ctx context.Context, shortID string) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).Where("short_id = ?", shortID).First(&code).Error; err != nil {
		return nil, mapError(err)
	}
	return &code, nil
}

func (r *pgQRCodeRepository) ExistsShortID(ctx context.Context, shortID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("short_id = ?", shortID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *pgQRCodeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.QRCode, error) {
	codes := make([]model.QRCode, 0)
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *pgQRCodeRepository) UpdateFields(ctx context.Context, id uuid.UUID, patch *model.QRCodePatch) (*model.QRCode, error) {
	res := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("id = ?", id).
		Updates(patch.Columns())
	if res.Error != nil {
		return nil, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *pgQRCodeRepository) UpdateScanStats(ctx context.Context, id uuid.UUID, scanCount int64, scannedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"scan_count":      gorm.Expr("CASE WHEN scan_count < ? THEN ? ELSE scan_count END", scanCount, scanCount),
			"last_scanned_at": scannedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgQRCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.QRCode{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateShortID
	}
	return err
}
