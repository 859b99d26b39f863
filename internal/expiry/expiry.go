// Package expiry decides whether a QR code may still redirect.
//
// Evaluate is pure: it reads the record and the supplied clock value only, and
// must be re-run on every resolution because scan counts and time move.
package expiry

import (
	"time"

	"dynqr/redirector/internal/model"
)

// Reason tags why a code stopped redirecting to its current URL.
type Reason string

const (
	ReasonNone        Reason = "none"
	ReasonManual      Reason = "manual"
	ReasonTimeExpired Reason = "time_expired"
	ReasonScanLimit   Reason = "scan_limit"
)

// Verdict is the evaluator output. FallbackURL is nil unless a non-empty
// fallback is configured and the reason allows it.
type Verdict struct {
	IsExpired         bool    `json:"is_expired"`
	Reason            Reason  `json:"reason"`
	ShouldUseFallback bool    `json:"should_use_fallback"`
	FallbackURL       *string `json:"fallback_url"`
}

// Evaluate applies the checks in fixed order, returning at the first match:
// manual deactivation, then time expiry, then scan limit. Manual deactivation
// never uses the fallback.
func Evaluate(code *model.QRCode, now time.Time) Verdict {
	if !code.IsActive {
		return Verdict{IsExpired: true, Reason: ReasonManual}
	}

	if code.ExpiresAt != nil && now.After(*code.ExpiresAt) {
		return automatic(code, ReasonTimeExpired)
	}

	if code.MaxScans != nil && code.ScanCount >= *code.MaxScans {
		return automatic(code, ReasonScanLimit)
	}

	return Verdict{Reason: ReasonNone}
}

func automatic(code *model.QRCode, reason Reason) Verdict {
	v := Verdict{IsExpired: true, Reason: reason}
	if code.FallbackURL != nil && *code.FallbackURL != "" {
		fallback := *code.FallbackURL
		v.ShouldUseFallback = true
		v.FallbackURL = &fallback
	}
	return v
}

// Message is the visitor-facing text for an expiry reason.
func Message(reason Reason) string {
	switch reason {
	case ReasonManual:
		return "This QR code has been deactivated by its owner."
	case ReasonScanLimit:
		return "This QR code has reached its maximum scan limit."
	case ReasonTimeExpired:
		return "This QR code has expired."
	default:
		return "This QR code is no longer available."
	}
}

// RemainingScans returns nil when the code has no scan limit.
func RemainingScans(code *model.QRCode) *int64 {
	if code.MaxScans == nil {
		return nil
	}
	remaining := *code.MaxScans - code.ScanCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// TimeUntilExpiry returns nil when the code has no time limit. The result is
// negative once the cutoff has passed.
func TimeUntilExpiry(code *model.QRCode, now time.Time) *time.Duration {
	if code.ExpiresAt == nil {
		return nil
	}
	d := code.ExpiresAt.Sub(now)
	return &d
}
