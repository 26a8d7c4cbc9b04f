package blob

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Operations a token can grant.
const (
	OpUpload   = "upload"
	OpDownload = "download"
)

var ErrInvalidToken = errors.New("blob: invalid token")

// Claims bind a token to one key and one operation.
type Claims struct {
	jwt.RegisteredClaims
	Op          string `json:"op"`
	ContentType string `json:"ct,omitempty"`
}

// Key returns the blob key the token grants access to.
func (c *Claims) Key() string { return c.Subject }

// Signer issues and checks HS256 blob tokens.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewSigner(key string, ttl time.Duration) *Signer {
	return &Signer{key: []byte(key), ttl: ttl, now: time.Now}
}

// Issue returns a signed token and its expiry.
func (s *Signer) Issue(op, key, contentType string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   key,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Op:          op,
		ContentType: contentType,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign blob token: %w", err)
	}
	return token, exp, nil
}

// Parse validates token for op and returns its claims.
func (s *Signer) Parse(token, op string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Op != op || claims.Subject == "" {
		return nil, fmt.Errorf("%w: wrong operation", ErrInvalidToken)
	}
	return &claims, nil
}
