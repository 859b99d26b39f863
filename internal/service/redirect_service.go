package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"dynqr/redirector/internal/expiry"
	"dynqr/redirector/internal/model"
	"dynqr/redirector/internal/repository"
)

type OutcomeKind int

const (
	OutcomeNotFound OutcomeKind = iota
	OutcomeExpired
	OutcomeRedirect
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeExpired:
		return "expired"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "not_found"
	}
}

// Outcome is what the HTTP layer renders for a resolution.
// TargetURL is set for OutcomeRedirect; Reason and Message for OutcomeExpired.
// Fallback marks a redirect to the fallback URL of an automatically expired code.
type Outcome struct {
	Kind      OutcomeKind
	TargetURL string
	Reason    expiry.Reason
	Message   string
	Fallback  bool
}

// ScanRecorder accepts scan events without blocking; analytics.Dispatcher implements it.
type ScanRecorder interface {
	Submit(ev model.ScanEvent) bool
}

type RedirectService interface {
	// Resolve never fails: store errors are logged and reported as OutcomeNotFound.
	Resolve(ctx context.Context, shortID string) *Outcome
}

type redirectService struct {
	repo     repository.QRCodeRepository
	recorder ScanRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewRedirectService(repo repository.QRCodeRepository, recorder ScanRecorder, logger *zap.Logger) RedirectService {
	return newRedirectService(repo, recorder, logger, time.Now)
}

func newRedirectService(repo repository.QRCodeRepository, recorder ScanRecorder, logger *zap.Logger, now func() time.Time) *redirectService {
	return &redirectService{repo: repo, recorder: recorder, logger: logger, now: now}
}

func (s *redirectService) Resolve(ctx context.Context, shortID string) *Outcome {
	code, err := s.repo.FindByShortID(ctx, shortID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Debug("short id not found", zap.String("short_id", shortID))
		} else {
			s.logger.Warn("short id lookup failed", zap.String("short_id", shortID), zap.Error(err))
		}
		return s.done(&Outcome{Kind: OutcomeNotFound})
	}

	now := s.now()
	verdict := expiry.Evaluate(code, now)

	if verdict.IsExpired && !verdict.ShouldUseFallback {
		return s.done(&Outcome{
			Kind:    OutcomeExpired,
			Reason:  verdict.Reason,
			Message: expiry.Message(verdict.Reason),
		})
	}

	out := &Outcome{Kind: OutcomeRedirect, TargetURL: code.CurrentURL, Reason: verdict.Reason}
	if verdict.IsExpired {
		out.TargetURL = *verdict.FallbackURL
		out.Fallback = true
	}

	// fallback hits count as scans too
	s.recorder.Submit(model.ScanEvent{
		QRCodeID:  code.ID,
		ShortID:   code.ShortID,
		ScanCount: code.ScanCount + 1,
		ScannedAt: now,
	})
	return s.done(out)
}

func (s *redirectService) done(out *Outcome) *Outcome {
	reason := out.Reason
	if reason == "" {
		reason = expiry.ReasonNone
	}
	resolutionsTotal.WithLabelValues(out.Kind.String(), string(reason)).Inc()
	return out
}
