package expiry

import (
	"testing"
	"time"

	"dynqr/redirector/internal/model"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestEvaluate(t *testing.T) {
	past := now.Add(-5 * time.Minute)
	future := now.Add(time.Hour)
	fallback := "https://fb.example"

	tests := []struct {
		name         string
		code         model.QRCode
		wantExpired  bool
		wantReason   Reason
		wantFallback *string
	}{
		{
			name:       "active without limits",
			code:       model.QRCode{IsActive: true},
			wantReason: ReasonNone,
		},
		{
			name:        "inactive ignores fallback and limits",
			code:        model.QRCode{IsActive: false, FallbackURL: &fallback, ExpiresAt: &past, MaxScans: ptr[int64](1), ScanCount: 4},
			wantExpired: true,
			wantReason:  ReasonManual,
		},
		{
			name:         "time expired with fallback",
			code:         model.QRCode{IsActive: true, ExpiresAt: &past, FallbackURL: &fallback},
			wantExpired:  true,
			wantReason:   ReasonTimeExpired,
			wantFallback: &fallback,
		},
		{
			name:        "time expired without fallback",
			code:        model.QRCode{IsActive: true, ExpiresAt: &past},
			wantExpired: true,
			wantReason:  ReasonTimeExpired,
		},
		{
			name:        "time expired with empty fallback",
			code:        model.QRCode{IsActive: true, ExpiresAt: &past, FallbackURL: ptr("")},
			wantExpired: true,
			wantReason:  ReasonTimeExpired,
		},
		{
			name:       "expiry exactly now is still valid",
			code:       model.QRCode{IsActive: true, ExpiresAt: ptr(now)},
			wantReason: ReasonNone,
		},
		{
			name:       "future expiry",
			code:       model.QRCode{IsActive: true, ExpiresAt: &future},
			wantReason: ReasonNone,
		},
		{
			name:        "scan limit reached",
			code:        model.QRCode{IsActive: true, MaxScans: ptr[int64](10), ScanCount: 10},
			wantExpired: true,
			wantReason:  ReasonScanLimit,
		},
		{
			name:         "scan limit exceeded with fallback",
			code:         model.QRCode{IsActive: true, MaxScans: ptr[int64](10), ScanCount: 12, FallbackURL: &fallback},
			wantExpired:  true,
			wantReason:   ReasonScanLimit,
			wantFallback: &fallback,
		},
		{
			name:       "below scan limit",
			code:       model.QRCode{IsActive: true, MaxScans: ptr[int64](10), ScanCount: 9, ExpiresAt: &future},
			wantReason: ReasonNone,
		},
		{
			name:         "time and scan limit both breached reports time",
			code:         model.QRCode{IsActive: true, ExpiresAt: &past, MaxScans: ptr[int64](1), ScanCount: 1, FallbackURL: &fallback},
			wantExpired:  true,
			wantReason:   ReasonTimeExpired,
			wantFallback: &fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(&tt.code, now)
			if got.IsExpired != tt.wantExpired {
				t.Errorf("IsExpired = %v, want %v", got.IsExpired, tt.wantExpired)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if got.ShouldUseFallback != (tt.wantFallback != nil) {
				t.Errorf("ShouldUseFallback = %v", got.ShouldUseFallback)
			}
			switch {
			case tt.wantFallback == nil && got.FallbackURL != nil:
				t.Errorf("FallbackURL = %q, want nil", *got.FallbackURL)
			case tt.wantFallback != nil && (got.FallbackURL == nil || *got.FallbackURL != *tt.wantFallback):
				t.Errorf("FallbackURL = %v, want %q", got.FallbackURL, *tt.wantFallback)
			}
		})
	}
}

func TestEvaluate_Stable(t *testing.T) {
	code := model.QRCode{
		IsActive:  true,
		ExpiresAt: ptr(now.Add(-time.Second)),
		MaxScans:  ptr[int64](2),
		ScanCount: 5,
	}
	first := Evaluate(&code, now)
	for i := 0; i < 50; i++ {
		if got := Evaluate(&code, now); got.Reason != first.Reason || got.IsExpired != first.IsExpired {
			t.Fatalf("iteration %d: verdict changed from %+v to %+v", i, first, got)
		}
	}
}

func TestEvaluate_DoesNotMutate(t *testing.T) {
	fallback := "https://fb.example"
	code := model.QRCode{IsActive: true, ExpiresAt: ptr(now.Add(-time.Minute)), FallbackURL: &fallback}
	v := Evaluate(&code, now)
	*v.FallbackURL = "https://changed.example"
	if *code.FallbackURL != "https://fb.example" {
		t.Error("verdict fallback aliases the record field")
	}
}

func TestMessage(t *testing.T) {
	tests := map[Reason]string{
		ReasonManual:      "This QR code has been deactivated by its owner.",
		ReasonScanLimit:   "This QR code has reached its maximum scan limit.",
		ReasonTimeExpired: "This QR code has expired.",
		ReasonNone:        "This QR code is no longer available.",
		Reason("bogus"):   "This QR code is no longer available.",
	}
	for reason, want := range tests {
		if got := Message(reason); got != want {
			t.Errorf("Message(%q) = %q, want %q", reason, got, want)
		}
	}
}

func TestRemainingScans(t *testing.T) {
	if RemainingScans(&model.QRCode{ScanCount: 3}) != nil {
		t.Error("unlimited code should report nil")
	}
	if got := RemainingScans(&model.QRCode{MaxScans: ptr[int64](10), ScanCount: 3}); got == nil || *got != 7 {
		t.Errorf("RemainingScans = %v, want 7", got)
	}
	if got := RemainingScans(&model.QRCode{MaxScans: ptr[int64](2), ScanCount: 5}); got == nil || *got != 0 {
		t.Errorf("RemainingScans = %v, want 0", got)
	}
}

func TestTimeUntilExpiry(t *testing.T) {
	if TimeUntilExpiry(&model.QRCode{}, now) != nil {
		t.Error("no expiry should report nil")
	}
	got := TimeUntilExpiry(&model.QRCode{ExpiresAt: ptr(now.Add(-time.Minute))}, now)
	if got == nil || *got != -time.Minute {
		t.Errorf("TimeUntilExpiry = %v, want -1m", got)
	}
}
