package utils

import (
	"os"
	"time"

	userModel "office-portal/models/user"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL    = 12 * time.Hour
	twoFactorTokenTTL = 5 * time.Minute
)

// GenerateAccessToken issues the normal session token.
func GenerateAccessToken(u *userModel.User) (string, error) {
	return signToken(u, "access", accessTokenTTL)
}

// GenerateTwoFactorToken issues the short-lived handoff token returned by
// login when a second factor is still required. It is only accepted by the
// 2FA verify endpoint.
func GenerateTwoFactorToken(u *userModel.User) (string, error) {
	return signToken(u, "two_fa", twoFactorTokenTTL)
}

func signToken(u *userModel.User, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
		"role":  u.Role,
		"typ":   typ,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
