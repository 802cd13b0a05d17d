package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"office-portal/constants"
	"office-portal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func accessClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"id":    float64(7),
		"email": "rahim@example.com",
		"name":  "Rahim",
		"role":  role,
		"typ":   "access",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestIsAuthenticatedInjectsCurrentUser(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	var got types.AuthUser
	var ok bool
	app := fiber.New()
	app.Get("/me", RequireAuthentication(), func(c *fiber.Ctx) error {
		got, ok = CurrentUser(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims("staff")))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.True(t, ok)
	assert.Equal(t, uint(7), got.ID)
	assert.Equal(t, "rahim@example.com", got.Email)
	assert.Equal(t, "staff", got.Role)
}

func TestCurrentUserWithoutMiddleware(t *testing.T) {
	var ok bool
	app := fiber.New()
	app.Get("/bare", func(c *fiber.Ctx) error {
		_, ok = CurrentUser(c)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/bare", nil))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRequireRolesRejectsOtherRoles(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Get("/admin", RequireRoles(constants.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, accessClaims("staff")))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestTwoFactorTokenIsNotAnAccessToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	app := fiber.New()
	app.Get("/me", RequireAuthentication(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	claims := accessClaims("staff")
	claims["typ"] = "two_fa"
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
