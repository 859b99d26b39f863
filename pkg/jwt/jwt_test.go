package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", "redirector", time.Hour)
	owner := uuid.New()

	token, err := m.GenerateAccessToken(owner)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	got, err := claims.OwnerID()
	if err != nil || got != owner {
		t.Errorf("OwnerID = %v, %v; want %v", got, err, owner)
	}
}

func TestValidate_Rejects(t *testing.T) {
	owner := uuid.New()
	good := NewManager("secret", "redirector", time.Hour)

	otherKey, _ := NewManager("other", "redirector", time.Hour).GenerateAccessToken(owner)
	otherIssuer, _ := NewManager("secret", "someone-else", time.Hour).GenerateAccessToken(owner)
	expired, _ := NewManager("secret", "redirector", -time.Minute).GenerateAccessToken(owner)

	tests := map[string]string{
		"wrong key":    otherKey,
		"wrong issuer": otherIssuer,
		"expired":      expired,
		"garbage":      "not.a.token",
	}
	for name, token := range tests {
		if _, err := good.Validate(token); err == nil {
			t.Errorf("%s: Validate succeeded, want error", name)
		}
	}
}
