package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fallback validity period for issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// minSecretBytes enforces a 256-bit minimum for the HS256 signing key.
const minSecretBytes = 32

// ErrMissingRoleClaim reports a token that passed signature and expiry
// checks but carries no role claim. Callers must treat it as authentication
// incomplete and refuse to build a principal from it.
var ErrMissingRoleClaim = errors.New("token: missing role claim")

// TokenConfig bundles the configuration required to build a TokenService.
type TokenConfig struct {
	Secret string
	TTL    time.Duration
	Clock  func() time.Time
}

// Claims are the application claims embedded in issued tokens. The coarse
// role travels in the "rol" claim alongside the registered subject.
type Claims struct {
	Role string `json:"rol"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed, time-limited identity tokens.
// Validity is purely a function of signature and expiry; the server holds no
// session state, so tokens cannot be revoked before they expire.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService constructs a TokenService. A missing or short signing
// secret is a fatal startup condition, not a runtime error path.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret must be provided")
	}
	if len(cfg.Secret) < minSecretBytes {
		return nil, fmt.Errorf("token: signing secret must be at least %d bytes", minSecretBytes)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    now,
	}, nil
}

// Issue produces a signed token for the subject carrying the coarse role claim.
func (s *TokenService) Issue(subject, role string) (string, error) {
	if subject == "" {
		return "", errors.New("token: subject is required")
	}

	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}

	return signed, nil
}

// Validate verifies signature and expiry and returns the token claims.
// A verified token with a blank role claim returns the claims together with
// ErrMissingRoleClaim so callers can distinguish "authentication incomplete"
// from an outright invalid token.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token: token string is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token: parse: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("token: missing subject claim")
	}

	if claims.Role == "" {
		return &claims, ErrMissingRoleClaim
	}

	return &claims, nil
}
