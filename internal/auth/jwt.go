package auth

import (
	"fmt"
	"time"

	"github.com/carte-app/api/internal/enum"
	"github.com/golang-jwt/jwt/v5"
)

// adminTokenTTL covers one service; staff log in again the next day.
const adminTokenTTL = 12 * time.Hour

type Claims struct {
	MenuID int64  `json:"menu_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues an admin token scoped to a single menu.
func GenerateToken(secret string, menuID int64) (string, error) {
	now := time.Now()
	claims := Claims{
		MenuID: menuID,
		Role:   enum.RoleMenuAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(adminTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
