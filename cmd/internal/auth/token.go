package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued access token stays valid.
const DefaultTokenTTL = 30 * time.Minute

// TokenType is reported to clients next to every access token.
const TokenType = "bearer"

// ErrInvalidToken covers every reason a token is rejected: bad signature,
// malformed input, expiry or a missing subject.
var ErrInvalidToken = errors.New("invalid token")

var signingMethod = jwt.SigningMethodHS256

// Claims is the payload of an access token. The user name travels as "sub",
// the numeric id as "uid".
type Claims struct {
	UserID int64 `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 bearer tokens carrying the user name
// as their "sub" claim.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the service that reads the time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	clone := *s
	clone.now = now
	return &clone
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject, bound to the user id that held the name at issue time.
func (s *TokenService) Issue(subject string, userID int64) (string, error) {
	if subject == "" {
		return "", errors.New("issue token: empty subject")
	}

	issuedAt := s.now()
	token := jwt.NewWithClaims(signingMethod, &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature and expiry of raw and returns its subject.
func (s *TokenService) Validate(raw string) (string, error) {
	claims, err := s.Claims(raw)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Claims is Validate returning every claim of the token.
func (s *TokenService) Claims(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
