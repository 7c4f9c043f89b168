package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload carried by lifecycle tokens. NewEmail is only
// set on email-change tokens, where it carries the proposed address.
type TokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	NewEmail string `json:"new_email,omitempty"`
}

// Subject returns the subject claim
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// TokenSignerImpl implements the TokenSigner interface. It holds no secret
// of its own; each call receives the binding secret it signs or verifies
// under, so a single instance serves every token class.
type TokenSignerImpl struct {
	issuer string
	logger Logger
}

var _ TokenSigner = (*TokenSignerImpl)(nil)

// NewTokenSigner creates a new TokenSigner instance
func NewTokenSigner(issuer string, logger Logger) *TokenSignerImpl {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenSignerImpl{
		issuer: issuer,
		logger: logger,
	}
}

// Issue produces a signed token for subject expiring at now + ttl
func (ts *TokenSignerImpl) Issue(subject string, claims TokenClaims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	claims.RegisteredClaims.Issuer = ts.issuer
	claims.RegisteredClaims.Subject = subject
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		ts.logger.Error("TokenSigner failed to sign claims: %v", err)
		return "", ErrInvalidToken
	}

	return signed, nil
}

// Verify recomputes the signature under secret and checks the expiry. Bad
// signature, elapsed expiry, and malformed tokens are indistinguishable to
// the caller; all collapse into ErrInvalidToken, and no library-level
// detail crosses this boundary.
func (ts *TokenSignerImpl) Verify(token string, secret []byte) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Decode reads the claims without checking the signature or expiry. It is
// the bootstrapping read the completion phase uses to find which account's
// current secret to verify against.
func (ts *TokenSignerImpl) Decode(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.RegisteredClaims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
