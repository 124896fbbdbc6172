package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

type TokenType string

const (
	TokenTypeUndefined TokenType = ""
	TokenTypeMember    TokenType = "member"
	TokenTypeAdmin     TokenType = "admin"
)

// TokenSecretKey signs every token. It is set from configuration at startup.
var TokenSecretKey string

type TokenClaims struct {
	Type TokenType `json:"type"`
	jwt.RegisteredClaims
}

func (t TokenType) known() bool {
	return t == TokenTypeMember || t == TokenTypeAdmin
}

// GenerateToken issues an HS256 token for subject, which is a user id for
// member sessions and an operator name for admin tokens.
func GenerateToken(tokenType TokenType, subject string, dur time.Duration) (string, error) {
	if !tokenType.known() {
		return "", errors.Wrap(ErrUnknownTokenType, string(tokenType))
	}
	if subject == "" {
		return "", ErrEmptySubject
	}

	now := time.Now()
	claims := TokenClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(dur)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(TokenSecretKey))
}

func VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Wrap(ErrInvalidSigningMethod, token.Method.Alg())
		}
		return []byte(TokenSecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid && claims.Type.known() && claims.Subject != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

func IsValidToken(tokenString string) (TokenType, bool) {
	claims, err := VerifyToken(tokenString)
	if err != nil {
		return "", false
	}
	return claims.Type, true
}
