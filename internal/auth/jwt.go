package auth

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Actor is the authenticated caller every handler and service sees.
type Actor struct {
	UserID int64
	ShopID int64
	Role   string
	Name   string
}

type Claims struct {
	UserID int64  `json:"user_id"`
	ShopID int64  `json:"shop_id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.StandardClaims
}

// GenerateToken signs an HS256 bearer token for the actor.
func GenerateToken(secret string, actor Actor, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: actor.UserID,
		ShopID: actor.ShopID,
		Role:   actor.Role,
		Name:   actor.Name,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a bearer token and returns its actor.
func ParseToken(secret, tokenString string) (Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Actor{}, ErrInvalidToken
	}

	return Actor{
		UserID: claims.UserID,
		ShopID: claims.ShopID,
		Role:   claims.Role,
		Name:   claims.Name,
	}, nil
}
