package identikit

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the validated payload of a session token
type TokenClaims struct {
	SubjectID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService signs and verifies time-bounded identity assertions. It owns
// no state: a token's validity is a pure function of the secret key, its
// payload and the current time. There is no revocation path - logout only
// clears client-held cookies and an issued token stays valid until expiry.
type TokenService struct {
	SecretKey []byte
	Issuer    string
	TTL       time.Duration

	// Now is the clock used for issuing and expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// NewTokenService creates a token service with the given process-wide secret
func NewTokenService(secretKey string, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		SecretKey: []byte(secretKey),
		Issuer:    issuer,
		TTL:       ttl,
	}
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue signs a token asserting subjectID (and optionally email) until now+TTL
func (s *TokenService) Issue(subjectID, email string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub": subjectID,
		"iat": now.Unix(),
		"exp": now.Add(s.TTL).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	if s.Issuer != "" {
		claims["iss"] = s.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.SecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate decodes and verifies a token. Every failure collapses into
// ErrTokenExpired (expiry specifically) or ErrTokenInvalid (everything
// else: malformed encoding, bad signature, decode errors) so clients never
// learn which case occurred.
func (s *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.SecretKey, nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrTokenInvalid
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrTokenInvalid
	}
	// The library already checks expiry during Parse but we re-check against
	// our own clock so both paths land on the same outcome.
	if s.now().After(exp.Time) {
		return nil, ErrTokenExpired
	}

	out := &TokenClaims{
		SubjectID: sub,
		ExpiresAt: exp.Time,
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, nil
}
