package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/smartgoals-api/internal/breakdown"
	"github.com/arnold/smartgoals-api/internal/config"
	"github.com/arnold/smartgoals-api/internal/database"
	"github.com/arnold/smartgoals-api/internal/middleware"
	"github.com/arnold/smartgoals-api/internal/models"
)

func TestCheckReportsFirstField(t *testing.T) {
	err := check(&models.RegisterRequest{FirstName: "Ada", LastName: "L", Email: "not-an-email", Password: "secret123"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
	assert.Equal(t, "email must be a valid email address", verr.Message)

	err = check(&models.RegenerateRequest{GoalData: breakdown.Request{
		Specific: "a", Measurable: "b", Achievable: "c", Relevant: "d", Timebound: "e", Exciting: "f",
		Deadline: "2025-13-40",
	}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "goalData.deadline", verr.Field)

	theme := "neon"
	err = check(&models.UpdateSettingsRequest{Theme: &theme})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "theme must be one of: light, dark, system", verr.Message)

	assert.NoError(t, check(&models.UpdateSettingsRequest{}))
}

func errorApp(err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error { return err })
	return app
}

func TestErrorHandler(t *testing.T) {
	cases := []struct {
		err    error
		status int
		body   string
	}{
		{fiber.ErrNotFound, 404, `"code":"NOT_FOUND"`},
		{fiber.NewError(fiber.StatusConflict, "taken"), 409, `"error":"taken"`},
		{fiber.ErrTeapot, 418, `"code":"BAD_REQUEST"`},
		{&ValidationError{Field: "title", Message: "title is required"}, 400, `"details":{"field":"title"}`},
		{errors.New("boom"), 500, `"error":"Internal server error"`},
	}
	for _, tc := range cases {
		resp, err := errorApp(tc.err).Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, tc.status, resp.StatusCode, tc.err.Error())
		assert.Contains(t, string(body), tc.body)
	}
}

func setupGoogle(t *testing.T, info *googleTokenInfo) *fiber.App {
	t.Helper()
	db, err := database.Open("file:"+t.Name()+"?mode=memory&cache=shared", true)
	require.NoError(t, err)
	database.DB = db
	require.NoError(t, database.Migrate())
	middleware.Configure("test-secret", time.Hour)

	prevVerify, prevCfg := verifyGoogleIDToken, cfg
	verifyGoogleIDToken = func(_ context.Context, token string) (*googleTokenInfo, error) {
		if token != "good" {
			return nil, errors.New("token verification failed with status 400")
		}
		return info, nil
	}
	Configure(&config.Config{GoogleClientIDs: "web-client, ios-client"})
	t.Cleanup(func() {
		verifyGoogleIDToken, cfg = prevVerify, prevCfg
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/google", GoogleLogin)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(data)
}

func TestGoogleLoginCreatesAccountOnce(t *testing.T) {
	app := setupGoogle(t, &googleTokenInfo{
		Aud: "ios-client", Email: "Grace@Example.com", EmailVerified: "true",
		GivenName: "Grace", FamilyName: "Hopper",
	})

	for i := 0; i < 2; i++ {
		status, body := postJSON(t, app, "/google", `{"idToken":"good"}`)
		require.Equal(t, http.StatusOK, status, body)
		assert.Contains(t, body, `"token":"`)
	}

	var users []models.User
	require.NoError(t, database.DB.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "grace@example.com", users[0].Email)
	assert.Equal(t, models.AuthProviderGoogle, users[0].AuthProvider)

	var settings int64
	database.DB.Model(&models.UserSettings{}).Where("user_id = ?", users[0].ID).Count(&settings)
	assert.Equal(t, int64(1), settings)

	status, _ := postJSON(t, app, "/google", `{"idToken":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGoogleLoginRejectsForeignAudience(t *testing.T) {
	app := setupGoogle(t, &googleTokenInfo{Aud: "someone-else", Email: "g@example.com", EmailVerified: "true"})

	status, body := postJSON(t, app, "/google", `{"idToken":"good"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Contains(t, body, "Token not intended for this app")
}

func TestGoogleLoginRequiresVerifiedEmail(t *testing.T) {
	app := setupGoogle(t, &googleTokenInfo{Aud: "web-client", Email: "g@example.com", EmailVerified: "false"})

	status, _ := postJSON(t, app, "/google", `{"idToken":"good"}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBreakdownErrorMapping(t *testing.T) {
	status, code, _ := breakdownError(breakdown.ErrNotConfigured)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, CodeExternalService, code)

	status, _, _ = breakdownError(context.DeadlineExceeded)
	assert.Equal(t, fiber.StatusGatewayTimeout, status)

	status, _, msg := breakdownError(errors.Join(errors.New("weeks 1-4"), breakdown.ErrInvalidResponse))
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, "AI service returned an invalid plan", msg)
}
