package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session-token verification failures. Handlers collapse both into a
// single 401 so callers cannot distinguish a forged token from a stale
// one, but logs keep the real cause.
var (
	ErrTokenExpired     = errors.New("session token expired")
	ErrInvalidSignature = errors.New("session token signature invalid")
)

// JWTManager issues and verifies signed session tokens.
type JWTManager struct {
	Secret     []byte
	SessionTTL time.Duration
}

var defaultManager *JWTManager

func NewJWTManager(secret string, sessionTTL time.Duration) *JWTManager {
	m := &JWTManager{Secret: []byte(secret), SessionTTL: sessionTTL}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a token identifying userID, valid for the
// configured session TTL.
func (m *JWTManager) GenerateSessionToken(userID string) (string, time.Time, error) {
	exp := time.Now().Add(m.SessionTTL)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// ParseSessionToken verifies signature and expiry, returning
// ErrTokenExpired or ErrInvalidSignature as distinct failures.
func (m *JWTManager) ParseSessionToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidSignature
	}
	if !tkn.Valid {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}
