package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the account id in Subject and the role table it lives in.
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"
)

var ErrWrongTokenType = errors.New("wrong token type")

// UserID parses the subject back into a uuid.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TTL is the time left before the token expires.
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

type TokenPair struct {
	Access     string `json:"access"`
	Refresh    string `json:"refresh"`
	AccessJTI  string `json:"-"`
	RefreshJTI string `json:"-"`
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.accessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// Issue creates a fresh access/refresh pair for the account.
func (t *TokenIssuer) Issue(userID uuid.UUID, role string) (*TokenPair, error) {
	now := t.now()

	access, accessJTI, err := sign(userID, role, accessTokenType, now, t.accessTTL, t.accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, refreshJTI, err := sign(userID, role, refreshTokenType, now, t.refreshTTL, t.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		Access:     access,
		Refresh:    refresh,
		AccessJTI:  accessJTI,
		RefreshJTI: refreshJTI,
	}, nil
}

func (t *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return verifyType(token, t.accessSecret, accessTokenType)
}

func (t *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return verifyType(token, t.refreshSecret, refreshTokenType)
}

func sign(userID uuid.UUID, role, tokenType string, now time.Time, ttl time.Duration, secret []byte) (string, string, error) {
	jti := uuid.NewString()
	claims := &Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

func verifyType(token string, secret []byte, tokenType string) (*Claims, error) {
	claims, err := VerifyJWT(token, secret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// VerifyJWT parses and validates a JWT string signed with HS256.
func VerifyJWT(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
