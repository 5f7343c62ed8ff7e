package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lifeflow-api/internal/application/dto"
	apphttp "github.com/jhoicas/lifeflow-api/internal/interfaces/http"
	"github.com/jhoicas/lifeflow-api/pkg/jwt"
)

const testSecret = "test-secret"

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := jwt.Generate(testSecret, userID, role, "lifeflow-test", 5)
	require.NoError(t, err)
	return "Bearer " + tok
}

func newAuthApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testSecret), apphttp.RequireRole("admin", "hospital"), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})
	return app
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

// ─── AuthMiddleware ──────────────────────────────────────────────────────────

func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := newAuthApp()
	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", decodeError(t, readBody(t, resp)).Code)
}

func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := newAuthApp()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, readBody(t, resp)).Code)
}

func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	app := newAuthApp()
	tok, err := jwt.Generate("otro-secret", "admin-1", "admin", "x", 5)
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenValido(t *testing.T) {
	app := newAuthApp()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", token(t, "hosp-1", "hospital"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.Unmarshal(readBody(t, resp), &body))
	assert.Equal(t, "hosp-1", body["user_id"])
	assert.Equal(t, "hospital", body["role"])
}

// ─── RequireRole ─────────────────────────────────────────────────────────────

func TestRequireRole_RolNoPermitido(t *testing.T) {
	app := newAuthApp()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", token(t, "donor-1", "donor"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, readBody(t, resp)).Code)
}

func TestRequireRole_SinRol(t *testing.T) {
	app := newAuthApp()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", token(t, "x-1", ""))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_ROLE", decodeError(t, readBody(t, resp)).Code)
}
