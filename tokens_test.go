package identikit

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokenService(ttl time.Duration) *TokenService {
	return NewTokenService("test-secret-key-1234", "identikit-test", ttl)
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)

	token, err := svc.Issue("user-123", "test@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.SubjectID != "user-123" {
		t.Errorf("expected subject user-123, got %q", claims.SubjectID)
	}
	if claims.Email != "test@example.com" {
		t.Errorf("expected email test@example.com, got %q", claims.Email)
	}
}

func TestIssueWithoutEmail(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)

	token, err := svc.Issue("user-456", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Email != "" {
		t.Errorf("expected no email claim, got %q", claims.Email)
	}
}

func TestTokenExpiry(t *testing.T) {
	svc := newTestTokenService(0)
	issued := time.Now()
	svc.Now = func() time.Time { return issued }

	token, err := svc.Issue("user-123", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Advance the clock past expires_at
	svc.Now = func() time.Time { return issued.Add(2 * time.Second) }

	_, err = svc.Validate(token)
	if err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenExpiryAfterClockAdvance(t *testing.T) {
	svc := newTestTokenService(10 * time.Minute)
	issued := time.Now()
	svc.Now = func() time.Time { return issued }

	token, err := svc.Issue("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Still valid just before expiry
	svc.Now = func() time.Time { return issued.Add(9 * time.Minute) }
	if _, err := svc.Validate(token); err != nil {
		t.Fatalf("expected token to still be valid: %v", err)
	}

	svc.Now = func() time.Time { return issued.Add(11 * time.Minute) }
	if _, err := svc.Validate(token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateInvalidTokens(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)
	valid, err := svc.Issue("user-123", "")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tampered, err := otherKey.SignedString([]byte("a-different-secret"))
	if err != nil {
		t.Fatalf("signing with other key failed: %v", err)
	}

	noSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	missingSub, err := noSubject.SignedString([]byte("test-secret-key-1234"))
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"corrupted payload", valid[:len(valid)-6] + "xxxxxx"},
		{"wrong signing key", tampered},
		{"missing subject", missingSub},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			if err != ErrTokenInvalid {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestValidateRejectsNonHMACAlg(t *testing.T) {
	svc := newTestTokenService(15 * time.Minute)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing failed: %v", err)
	}

	if _, err := svc.Validate(token); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}
