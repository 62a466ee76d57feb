package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventgate/internal/domain"
)

type jwtClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenManager struct {
	secret []byte
}

// NewJWTTokenManager returns a token manager that signs and verifies
// HS256 tokens carrying the user's email and role.
func NewJWTTokenManager(secret string) *JWTTokenManager {
	return &JWTTokenManager{secret: []byte(secret)}
}

var _ domain.TokenIssuer = (*JWTTokenManager)(nil)
var _ domain.TokenVerifier = (*JWTTokenManager)(nil)

func (m *JWTTokenManager) Issue(userID, email string, role domain.UserRole, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTTokenManager) Verify(tokenString string) (string, domain.UserRole, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}
	role, ok := domain.ParseUserRole(claims.Role)
	if !ok {
		return "", "", fmt.Errorf("invalid token role %q", claims.Role)
	}
	return claims.Subject, role, nil
}
