package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipprotect/internal/models"
	"shipprotect/internal/repositories"
	"shipprotect/internal/services/auth"
	"shipprotect/internal/utils"
)

const testSecret = "test-access-secret"

type stubAuth struct {
	auth.Service
	versions map[uint]int
}

func (s *stubAuth) TokenVersion(_ context.Context, id uint) (int, error) {
	v, ok := s.versions[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return v, nil
}

func token(t *testing.T, claims models.AccountClaims) string {
	t.Helper()
	tok, err := utils.GenerateToken(claims, utils.TokenAccess, testSecret, time.Minute, time.Now())
	require.NoError(t, err)
	return tok
}

func newApp(versions map[uint]int) *fiber.App {
	m := NewAuthMiddleware(&stubAuth{versions: versions}, testSecret, nil)
	app := fiber.New()
	app.Get("/settings", m.Handler, HasPermission(models.PermissionSettingsRead), func(c *fiber.Ctx) error {
		claims := c.Locals("claims").(*models.AccountClaims)
		return c.JSON(fiber.Map{"shop_id": claims.ShopID})
	})
	app.Post("/charge", m.Handler, HasPermission(models.PermissionBillingWrite), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func request(t *testing.T, app *fiber.App, method, path, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthMiddleware(t *testing.T) {
	app := newApp(map[uint]int{1: 2})

	merchant := models.AccountClaims{
		AccountID:    1,
		ShopID:       7,
		Role:         models.RoleMerchant,
		Permissions:  models.GetDefaultPermissions(models.RoleMerchant),
		TokenVersion: 2,
	}

	assert.Equal(t, fiber.StatusOK, request(t, app, "GET", "/settings", token(t, merchant)))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "GET", "/settings", ""))
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "GET", "/settings", "not-a-jwt"))

	stale := merchant
	stale.TokenVersion = 1
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "GET", "/settings", token(t, stale)))

	unknown := merchant
	unknown.AccountID = 99
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "GET", "/settings", token(t, unknown)))
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	app := newApp(map[uint]int{1: 1})
	claims := models.AccountClaims{
		AccountID:    1,
		Role:         models.RoleMerchant,
		Permissions:  models.GetDefaultPermissions(models.RoleMerchant),
		TokenVersion: 1,
	}

	// Signed with the access secret, so only the kind tells them apart.
	refresh, err := utils.GenerateToken(claims, utils.TokenRefresh, testSecret, time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, request(t, app, "GET", "/settings", refresh))
	assert.Equal(t, fiber.StatusOK, request(t, app, "GET", "/settings", token(t, claims)))
}

func TestAuthMiddleware_WrongScheme(t *testing.T) {
	app := newApp(map[uint]int{1: 1})
	req := httptest.NewRequest("GET", "/settings", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHasPermission(t *testing.T) {
	app := newApp(map[uint]int{1: 1, 2: 1})

	staff := models.AccountClaims{AccountID: 1, Role: models.RoleStaff, Permissions: models.GetDefaultPermissions(models.RoleStaff), TokenVersion: 1}
	assert.Equal(t, fiber.StatusOK, request(t, app, "GET", "/settings", token(t, staff)))
	assert.Equal(t, fiber.StatusForbidden, request(t, app, "POST", "/charge", token(t, staff)))

	admin := models.AccountClaims{AccountID: 2, Role: models.RoleAdmin, TokenVersion: 1}
	assert.Equal(t, fiber.StatusNoContent, request(t, app, "POST", "/charge", token(t, admin)))
}
