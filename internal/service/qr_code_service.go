package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dynqr/redirector/internal/expiry"
	"dynqr/redirector/internal/model"
	"dynqr/redirector/internal/repository"
	"dynqr/redirector/pkg/shortid"
	"dynqr/redirector/pkg/urlutil"
)

const maxShortIDAttempts = 5

type CreateQRCodeInput struct {
	Name        string
	CurrentURL  string
	Description *string
	MaxScans    *int64
	ExpiresAt   *time.Time
	FallbackURL *string
}

// Lifespan summarizes where a code stands against its expiry policy right now.
type Lifespan struct {
	Verdict            expiry.Verdict `json:"verdict"`
	Message            string         `json:"message,omitempty"`
	RemainingScans     *int64         `json:"remaining_scans"`
	SecondsUntilExpiry *int64         `json:"seconds_until_expiry"`
}

// QRCodeService is the owner-facing management API. Every call is scoped to
// ownerID; codes of other owners report ErrQRCodeNotFound.
type QRCodeService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateQRCodeInput) (*model.QRCode, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.QRCode, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch *model.QRCodePatch) (*model.QRCode, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Lifespan(code *model.QRCode) Lifespan
}

type qrCodeService struct {
	repo       repository.QRCodeRepository
	genShortID func() (string, error)
	now        func() time.Time
}

func NewQRCodeService(repo repository.QRCodeRepository) QRCodeService {
	return &qrCodeService{repo: repo, genShortID: shortid.Generate, now: time.Now}
}

func (s *qrCodeService) Create(ctx context.Context, ownerID uuid.UUID, in CreateQRCodeInput) (*model.QRCode, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	target, err := cleanURL(in.CurrentURL, ErrInvalidURL)
	if err != nil {
		return nil, err
	}
	if in.MaxScans != nil && *in.MaxScans <= 0 {
		return nil, ErrInvalidMaxScans
	}
	var fallback *string
	if in.FallbackURL != nil && strings.TrimSpace(*in.FallbackURL) != "" {
		u, err := cleanURL(*in.FallbackURL, ErrInvalidFallbackURL)
		if err != nil {
			return nil, err
		}
		fallback = &u
	}

	code := &model.QRCode{
		OwnerID:     ownerID,
		Name:        name,
		CurrentURL:  target,
		Description: in.Description,
		IsActive:    true,
		MaxScans:    in.MaxScans,
		ExpiresAt:   in.ExpiresAt,
		FallbackURL: fallback,
	}

	for attempt := 0; attempt < maxShortIDAttempts; attempt++ {
		sid, err := s.genShortID()
		if err != nil {
			return nil, fmt.Errorf("generate short id: %w", err)
		}
		if !shortid.Valid(sid) {
			return nil, fmt.Errorf("generate short id: malformed id %q", sid)
		}
		taken, err := s.repo.ExistsShortID(ctx, sid)
		if err != nil {
			return nil, fmt.Errorf("check short id: %w", err)
		}
		if taken {
			continue
		}

		code.ShortID = sid
		err = s.repo.Create(ctx, code)
		if errors.Is(err, repository.ErrDuplicateShortID) {
			// lost a race with a concurrent create
			code.ID = uuid.Nil
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create qr code: %w", err)
		}
		return code, nil
	}
	return nil, ErrShortIDExhausted
}

func (s *qrCodeService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.QRCode, error) {
	code, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQRCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	if code.OwnerID != ownerID {
		return nil, ErrQRCodeNotFound
	}
	return code, nil
}

func (s *qrCodeService) List(ctx context.Context, ownerID uuid.UUID) ([]model.QRCode, error) {
	codes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	return codes, nil
}

func (s *qrCodeService) Update(ctx context.Context, ownerID, id uuid.UUID, patch *model.QRCodePatch) (*model.QRCode, error) {
	if patch == nil || patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}

	code, err := s.repo.UpdateFields(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQRCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update qr code: %w", err)
	}
	return code, nil
}

func (s *qrCodeService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQRCodeNotFound
	}
	if err != nil {
		return fmt.Errorf("delete qr code: %w", err)
	}
	return nil
}

func (s *qrCodeService) Lifespan(code *model.QRCode) Lifespan {
	now := s.now()
	verdict := expiry.Evaluate(code, now)
	l := Lifespan{
		Verdict:        verdict,
		RemainingScans: expiry.RemainingScans(code),
	}
	if verdict.IsExpired {
		l.Message = expiry.Message(verdict.Reason)
	}
	if d := expiry.TimeUntilExpiry(code, now); d != nil {
		secs := int64(d.Seconds())
		l.SecondsUntilExpiry = &secs
	}
	return l
}

// validatePatch normalizes URL fields in place. An empty fallback clears it.
func validatePatch(p *model.QRCodePatch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return ErrNameRequired
		}
		p.Name = &name
	}
	if p.CurrentURL != nil {
		u, err := cleanURL(*p.CurrentURL, ErrInvalidURL)
		if err != nil {
			return err
		}
		p.CurrentURL = &u
	}
	if p.MaxScans.Valid && p.MaxScans.Value <= 0 {
		return ErrInvalidMaxScans
	}
	if p.FallbackURL.Valid {
		if strings.TrimSpace(p.FallbackURL.Value) == "" {
			p.FallbackURL = model.Null[string]()
		} else {
			u, err := cleanURL(p.FallbackURL.Value, ErrInvalidFallbackURL)
			if err != nil {
				return err
			}
			p.FallbackURL = model.NewNullable(u)
		}
	}
	return nil
}

func cleanURL(raw string, invalid error) (string, error) {
	u := urlutil.Normalize(raw)
	if !urlutil.Valid(u) {
		return "", invalid
	}
	return u, nil
}
