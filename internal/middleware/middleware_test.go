package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookstore/internal/middleware"
	"bookstore/internal/services"
	"bookstore/pkg/metrics"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	prom "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware_test_secret"

func token(t *testing.T, userID uint, email, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newApp() *fiber.App {
	auth := services.NewAuthService(nil, secret, time.Hour, nil)
	app := fiber.New()
	api := app.Group("", middleware.AuthRequired(auth))
	api.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": middleware.UserID(c), "email": middleware.Email(c)})
	})
	api.Get("/admin", middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, bearer string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	app := newApp()

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "Token abc").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "Bearer not-a-jwt").StatusCode)

	resp := get(t, app, "/me", "Bearer "+token(t, 7, "u@example.com", "USER"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminOnly(t *testing.T) {
	app := newApp()

	resp := get(t, app, "/admin", "Bearer "+token(t, 7, "u@example.com", "USER"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = get(t, app, "/admin", "Bearer "+token(t, 1, "admin@example.com", "ADMIN"))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	auth := services.NewAuthService(nil, secret, time.Hour, nil)
	app := fiber.New()
	app.Post("/orders", middleware.AuthRequired(auth), middleware.RateLimit(middleware.NewRateLimiter(0.001, 2)),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	post := func(bearer string) int {
		req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader("{}"))
		req.Header.Set("Authorization", bearer)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	alice := "Bearer " + token(t, 1, "alice@example.com", "USER")
	bob := "Bearer " + token(t, 2, "bob@example.com", "USER")

	assert.Equal(t, http.StatusCreated, post(alice))
	assert.Equal(t, http.StatusCreated, post(alice))
	assert.Equal(t, http.StatusTooManyRequests, post(alice))
	// Buckets are per user.
	assert.Equal(t, http.StatusCreated, post(bob))
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	rl := middleware.NewRateLimiter(1, 1, middleware.WithIdleTTL(time.Minute), middleware.WithLimiterClock(clock.Now))

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
	assert.Equal(t, 2, rl.Len())

	clock.Advance(30 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.Equal(t, 2, rl.Len())

	// 10.0.0.2 has been idle for 75s, 10.0.0.1 for 45s.
	clock.Advance(45 * time.Second)
	assert.True(t, rl.Allow("10.0.0.3"))
	assert.Equal(t, 2, rl.Len())
}

func TestRateLimiter_IdleTTLCoversRefill(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	// One token per 1000s outlives the 10 minute default, so the bucket must survive.
	rl := middleware.NewRateLimiter(0.001, 1, middleware.WithLimiterClock(clock.Now))

	assert.True(t, rl.Allow("user:1"))
	clock.Advance(11 * time.Minute)
	assert.True(t, rl.Allow("user:2"))
	assert.False(t, rl.Allow("user:1"))
	assert.Equal(t, 2, rl.Len())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewServerMetrics(reg)

	app := fiber.New()
	app.Use(middleware.Metrics(m))
	app.Get("/books/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for _, id := range []string{"1", "2"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/books/"+id, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, float64(2), prom.ToFloat64(m.Requests.WithLabelValues("GET", "/books/:id", "200")))
}
