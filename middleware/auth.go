package middleware

import (
	"fmt"
	"os"
	"strings"

	"office-portal/constants"
	"office-portal/logger"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// IsAuthenticated validates the bearer token and checks the caller's role
// against the allowed list. constants.RoleAny in the list admits any
// authenticated user. The authenticated identity is stored in c.Locals("user").
func IsAuthenticated(roles []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Authorization token required",
				Status:  fiber.StatusUnauthorized,
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Invalid authorization header format",
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := VerifyJWT(tokenParts[1])
		if err != nil {
			logger.Error("Failed to verify JWT", err)
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Invalid or expired token",
				Status:  fiber.StatusUnauthorized,
			})
		}

		// Two-factor handoff tokens only work on the verify endpoint.
		if typ, _ := claims["typ"].(string); typ != "access" {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Invalid token type",
				Status:  fiber.StatusUnauthorized,
			})
		}

		authUser, err := claimsToUser(claims)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(types.ErrorResponse{
				Message: "Invalid token claims",
				Status:  fiber.StatusUnauthorized,
			})
		}

		if !roleAllowed(authUser.Role, roles) {
			return c.Status(fiber.StatusForbidden).JSON(types.ErrorResponse{
				Message: "Insufficient permissions",
				Status:  fiber.StatusForbidden,
			})
		}

		c.Locals("user", authUser)
		return c.Next()
	}
}

// RequireRoles creates a middleware admitting only the given roles
func RequireRoles(roles ...string) fiber.Handler {
	return IsAuthenticated(roles)
}

// RequireAuthentication admits any authenticated user
func RequireAuthentication() fiber.Handler {
	return IsAuthenticated([]string{constants.RoleAny})
}

// CurrentUser returns the authenticated identity injected by IsAuthenticated.
func CurrentUser(c *fiber.Ctx) (types.AuthUser, bool) {
	authUser, ok := c.Locals("user").(types.AuthUser)
	return authUser, ok
}

// VerifyJWT verifies an HMAC-signed token and returns its claims.
func VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token")
	}
	return claims, nil
}

func claimsToUser(claims jwt.MapClaims) (types.AuthUser, error) {
	id, ok := claims["id"].(float64)
	if !ok || id <= 0 {
		return types.AuthUser{}, fmt.Errorf("user id not found in token")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)
	if email == "" || role == "" {
		return types.AuthUser{}, fmt.Errorf("incomplete token claims")
	}
	return types.AuthUser{ID: uint(id), Email: email, Name: name, Role: role}, nil
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == constants.RoleAny || r == role {
			return true
		}
	}
	return false
}
