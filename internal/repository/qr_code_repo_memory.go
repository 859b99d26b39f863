package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"dynqr/redirector/internal/model"
)

type memoryQRCodeRepository struct {
	mu      sync.RWMutex
	codes   map[uuid.UUID]*model.QRCode
	byShort map[string]uuid.UUID
}

// NewMemoryQRCodeRepository returns a process-local store. Records handed out
// are copies.
func NewMemoryQRCodeRepository() QRCodeRepository {
	return &memoryQRCodeRepository{
		codes:   make(map[uuid.UUID]*model.QRCode),
		byShort: make(map[string]uuid.UUID),
	}
}

func (r *memoryQRCodeRepository) Create(_ context.Context, code *model.QRCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byShort[code.ShortID]; taken {
		return ErrDuplicateShortID
	}
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	now := time.Now().UTC()
	if code.CreatedAt.IsZero() {
		code.CreatedAt = now
	}
	code.UpdatedAt = now

	r.codes[code.ID] = code.Clone()
	r.byShort[code.ShortID] = code.ID
	return nil
}

func (r *memoryQRCodeRepository) GetByID(_ context.Context, id uuid.UUID) (*model.QRCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.codes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return code.Clone(), nil
}

func (r *memoryQRCodeRepository) FindByShortID(_ context.Context, shortID string) (*model.QRCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byShort[shortID]
	if !ok {
		return nil, ErrNotFound
	}
	return r.codes[id].Clone(), nil
}

func (r *memoryQRCodeRepository) ExistsShortID(_ context.Context, shortID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byShort[shortID]
	return ok, nil
}

func (r *memoryQRCodeRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.QRCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.QRCode, 0)
	for _, code := range r.codes {
		if code.OwnerID == ownerID {
			out = append(out, *code.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryQRCodeRepository) UpdateFields(_ context.Context, id uuid.UUID, patch *model.QRCodePatch) (*model.QRCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(code)
	code.UpdatedAt = time.Now().UTC()
	return code.Clone(), nil
}

func (r *memoryQRCodeRepository) UpdateScanStats(_ context.Context, id uuid.UUID, scanCount int64, scannedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[id]
	if !ok {
		return ErrNotFound
	}
	if scanCount > code.ScanCount {
		code.ScanCount = scanCount
	}
	at := scannedAt
	code.LastScannedAt = &at
	return nil
}

func (r *memoryQRCodeRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	code, ok := r.codes[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byShort, code.ShortID)
	delete(r.codes, id)
	return nil
}
