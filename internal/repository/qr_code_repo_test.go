package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dynqr/redirector/internal/model"
)

func newSQLiteRepo(t *testing.T) QRCodeRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	// every new connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewPGQRCodeRepository(db)
}

// forEachStore runs fn against every QRCodeRepository implementation.
func forEachStore(t *testing.T, fn func(t *testing.T, repo QRCodeRepository)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryQRCodeRepository()) })
	t.Run("gorm", func(t *testing.T) { fn(t, newSQLiteRepo(t)) })
}

func newCode(owner uuid.UUID, shortID string) *model.QRCode {
	return &model.QRCode{
		OwnerID:    owner,
		ShortID:    shortID,
		Name:       "Menu " + shortID,
		CurrentURL: "https://example.com/" + shortID,
		IsActive:   true,
	}
}

func TestCreateAndFind(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo QRCodeRepository) {
		ctx := context.Background()
		owner := uuid.New()
		code := newCode(owner, "Ab3dE5gH")
		if err := repo.Create(ctx, code); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if code.ID == uuid.Nil {
			t.Fatal("Create did not assign an id")
		}

		got, err := repo.FindByShortID(ctx, "Ab3dE5gH")
		if err != nil {
			t.Fatalf("FindByShortID: %v", err)
		}
		if got.ID != code.ID || got.CurrentURL != code.CurrentURL || !got.IsActive {
			t.Errorf("FindByShortID = %+v, want %+v", got, code)
		}

		byID, err := repo.GetByID(ctx, code.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if byID.ShortID != "Ab3dE5gH" {
			t.Errorf("GetByID short id = %q", byID.ShortID)
		}
	})
}

func TestFindByShortID_CaseSensitive(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo QRCodeRepository) {
		ctx := context.Background()
		if err := repo.Create(ctx, newCode(uuid.New(), "AbCdEfGh")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if _, err := repo.FindByShortID(ctx, "abcdefgh"); !errors.Is(err, ErrNotFound) {
			t.Errorf("lowercase lookup err = %v, want ErrNotFound", err)
		}
		if _, err := repo.FindByShortID(ctx, "missing1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("missing lookup err = %v, want ErrNotFound", err)
		}
	})
}

func TestCreate_DuplicateShortID(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo QRCodeRepository) {
		ctx := context.Background()
		if err := repo.Create(ctx, newCode(uuid.New(), "dup00001")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		err := repo.Create(ctx, newCode(uuid.New(), "dup00001"))
		if !errors.Is(err, ErrDuplicateShortID) {
			t.Fatalf("second Create err = %v, want ErrDuplicateShortID", err)
		}

		exists, err := repo.ExistsShortID(ctx, "dup00001")
		if err != nil || !exists {
			t.Errorf("ExistsShortID = %v, %v; want true", exists, err)
		}
		exists, err = repo.ExistsShortID(ctx, "free0001")
		if err != nil || exists {
			t.Errorf("ExistsShortID(free) = %v, %v; want false", exists, err)
		}
	})
}

func TestListByOwner(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo QRCodeRepository) {
		ctx := context.Background()
		owner, other := uuid.New(), uuid.New()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		for i, sid := range []string{"list0001", "list0002", "list0003"} {
			c := newCode(owner, sid)
			c.CreatedAt = base.Add(time.Duration(i) * time.Hour)
			if err := repo.Create(ctx, c); err != nil {
				t.Fatalf("Create %s: %v", sid, err)
			}
		}
		if err := repo.Create(ctx, newCode(other, "list0004")); err != nil {
			t.Fatalf("Create other: %v", err)
		}

		codes, err := repo.ListByOwner(ctx, owner)
		if err != nil {
			t.Fatalf("ListByOwner: %v", err)
		}
		if len(codes) != 3 {
			t.Fatalf("ListByOwner len = %d, want 3", len(codes))
		}
		want := []string{"list0003", "list0002", "list0001"}
		for i, c := range codes {
			if c.ShortID != want[i] {
				t.Errorf("codes[%d] = %s, want %s", i, c.ShortID, want[i])
			}
		}

		empty, err := repo.ListByOwner(ctx, uuid.New())
		if err != nil || len(empty) != 0 {
			t.Errorf("ListByOwner(unknown) = %v, %v", empty, err)
		}
	})
}

func TestUpdateFields(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo QRCodeRepository) {
		ctx := context.Background()
		desc := "lunch"
		limit := int64(10)
		code := newCode(uuid.New(), "upd00001")
		code.Description = &desc
		code.MaxScans = &limit
		if err := repo.Create(ctx, code); err != nil {
			t.Fatalf("Create: %v", err)
		}

		newURL := "https://example.com/dinner"
		inactive := false
		patch := &model.QRCodePatch{
			CurrentURL:  &newURL,
			IsActive:    &inactive,
			Description: model.Null[string](),
			FallbackURL: model.NewNullable("https://fb.example"),
		}
		got, err := repo.UpdateFields(ctx, code.ID, patch)
		if err != nil {
			t.Fatalf("UpdateFields: %v", err)
		}
		if got.CurrentURL != newURL || got.IsActive {
			t.Errorf("UpdateFields = %+v", got)
		}
		if got.Description != nil {
			t.Errorf("Description = %q, want cleared", *got.Description)
		}
		if got.FallbackURL == nil || *got.FallbackURL != "https://fb.example" {
			t.Errorf("FallbackURL = %v", got.FallbackURL)
		}
		if got.MaxScans == nil || *got.MaxScans != 10 {
			t.Errorf("MaxScans changed: %v", got.MaxScans)
		}
		if got.Name != code.Name {
			t.Errorf("Name changed: %q", got.Name)
		}

		if _, err := repo.UpdateFields(ctx, uuid.New(), patch); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateFields(unknown) err = %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateScanStats_NeverLowersCount(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo QRCodeRepository) {
		ctx := context.Background()
		code := newCode(uuid.New(), "scan0001")
		code.ScanCount = 4
		if err := repo.Create(ctx, code); err != nil {
			t.Fatalf("Create: %v", err)
		}

		at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
		if err := repo.UpdateScanStats(ctx, code.ID, 5, at); err != nil {
			t.Fatalf("UpdateScanStats: %v", err)
		}
		// stale write from a concurrent resolution
		later := at.Add(time.Second)
		if err := repo.UpdateScanStats(ctx, code.ID, 5, later); err != nil {
			t.Fatalf("UpdateScanStats stale: %v", err)
		}
		if err := repo.UpdateScanStats(ctx, code.ID, 3, later); err != nil {
			t.Fatalf("UpdateScanStats lower: %v", err)
		}

		got, err := repo.GetByID(ctx, code.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got.ScanCount != 5 {
			t.Errorf("ScanCount = %d, want 5", got.ScanCount)
		}
		if got.LastScannedAt == nil || !got.LastScannedAt.Equal(later) {
			t.Errorf("LastScannedAt = %v, want %v", got.LastScannedAt, later)
		}

		if err := repo.UpdateScanStats(ctx, uuid.New(), 1, at); !errors.Is(err, ErrNotFound) {
			t.Errorf("UpdateScanStats(unknown) err = %v, want ErrNotFound", err)
		}
	})
}

func TestDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo QRCodeRepository) {
		ctx := context.Background()
		code := newCode(uuid.New(), "del00001")
		if err := repo.Create(ctx, code); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := repo.Delete(ctx, code.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.FindByShortID(ctx, "del00001"); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindByShortID after delete err = %v", err)
		}
		if err := repo.Delete(ctx, code.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete err = %v, want ErrNotFound", err)
		}
		// short id is free again
		if err := repo.Create(ctx, newCode(uuid.New(), "del00001")); err != nil {
			t.Errorf("recreate after delete: %v", err)
		}
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryQRCodeRepository()
	code := newCode(uuid.New(), "copy0001")
	if err := repo.Create(ctx, code); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := repo.FindByShortID(ctx, "copy0001")
	got.CurrentURL = "https://mutated.example"
	code.IsActive = false

	again, _ := repo.FindByShortID(ctx, "copy0001")
	if again.CurrentURL != "https://example.com/copy0001" || !again.IsActive {
		t.Errorf("stored record mutated through returned pointer: %+v", again)
	}
}
