package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

const DefaultTokenTTL = 12 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the caller. StoreID is set only for merchant tokens.
type Claims struct {
	Role    Role   `json:"role"`
	StoreID string `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *TokenIssuer) IssueMerchant(storeID string) (string, error) {
	return i.issue(Claims{Role: RoleMerchant, StoreID: storeID})
}

func (i *TokenIssuer) IssueAdmin(username string) (string, error) {
	c := Claims{Role: RoleAdmin}
	c.Subject = username
	return i.issue(c)
}

func (i *TokenIssuer) issue(c Claims) (string, error) {
	now := i.now()
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	if c.Subject == "" {
		c.Subject = c.StoreID
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse verifies the signature and expiry of raw.
func (i *TokenIssuer) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Role != RoleMerchant && claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	if claims.Role == RoleMerchant && claims.StoreID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
