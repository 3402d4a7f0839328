package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const TokenIssuer = "notevault"

var (
	jwtSecret []byte
	tokenTTL  time.Duration

	ErrInvalidToken = errors.New("invalid token")
)

// InitJWT sets the signing secret and token lifetime. Must be called
// before any token is issued or parsed.
func InitJWT(secret string, ttl time.Duration) {
	if secret == "" {
		log.Fatal("JWT secret key not set")
	}
	jwtSecret = []byte(secret)
	tokenTTL = ttl
}

// TokenClaims is the identity a session token carries.
type TokenClaims struct {
	UserID string
	Email  string
}

// GenerateToken issues a signed session token for the identity. The
// token is self-describing; no server-side session record is created.
func GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iss":     TokenIssuer,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken verifies signature, expiry and issuer, and returns the
// embedded identity.
func ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	if iss, _ := claims["iss"].(string); iss != TokenIssuer {
		return nil, ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{UserID: userID, Email: email}, nil
}

// TokenExpiry returns the expiry time recorded in a token without
// requiring the token to still be valid.
func TokenExpiry(tokenString string) time.Time {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return time.Now().Add(tokenTTL)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return time.Now().Add(tokenTTL)
	}
	if exp, ok := claims["exp"].(float64); ok {
		return time.Unix(int64(exp), 0)
	}
	return time.Now().Add(tokenTTL)
}
