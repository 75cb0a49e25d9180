package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager issues and verifies the two token kinds used by the account
// lifecycle: activation tokens (emailed once, short lived) and session
// tokens (login cookie, long lived). Both carry the account id as subject;
// they differ only in signing secret and TTL, so a token of one kind never
// verifies as the other.
type JWTManager struct {
	ActivationSecret []byte
	SessionSecret    []byte
	ActivationTTL    time.Duration
	SessionTTL       time.Duration
}

func NewJWTManager(activationSecret, sessionSecret string, activationTTL, sessionTTL time.Duration) *JWTManager {
	return &JWTManager{
		ActivationSecret: []byte(activationSecret),
		SessionSecret:    []byte(sessionSecret),
		ActivationTTL:    activationTTL,
		SessionTTL:       sessionTTL,
	}
}

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (m *JWTManager) GenerateActivationToken(userID string) (string, time.Time, error) {
	return sign(userID, m.ActivationSecret, m.ActivationTTL)
}

func (m *JWTManager) GenerateSessionToken(userID string) (string, time.Time, error) {
	return sign(userID, m.SessionSecret, m.SessionTTL)
}

func (m *JWTManager) ParseActivationToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.ActivationSecret)
}

func (m *JWTManager) ParseSessionToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.SessionSecret)
}

func sign(userID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

func parseToken(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
