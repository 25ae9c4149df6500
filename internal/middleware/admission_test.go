package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/config"
	apperrors "github.com/fanfie/fanfie-api/internal/pkg/errors"
)

type fakeBlockStore struct {
	mu     sync.Mutex
	blocks map[string]string
	bursts map[string]int64
	err    error
}

func newFakeBlockStore() *fakeBlockStore {
	return &fakeBlockStore{
		blocks: make(map[string]string),
		bursts: make(map[string]int64),
	}
}

func (s *fakeBlockStore) Block(_ context.Context, clientID, reason string, _ time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[clientID] = reason
	return nil
}

func (s *fakeBlockStore) BlockReason(_ context.Context, clientID string) (string, bool, error) {
	if s.err != nil {
		return "", false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reason, ok := s.blocks[clientID]
	return reason, ok, nil
}

func (s *fakeBlockStore) IncrementBurst(_ context.Context, clientID string, _ int64) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bursts[clientID]++
	return s.bursts[clientID], nil
}

func testAdmissionConfig() config.AdmissionConfig {
	return config.AdmissionConfig{
		Enabled:        true,
		MaxConcurrent:  100,
		MaxPayloadSize: 10 * 1024 * 1024,
	}
}

func newTestAdmission(cfg config.AdmissionConfig, counters *fakeCounterStore, blocks *fakeBlockStore) *Admission {
	limiter := NewRateLimiter(counters, config.RateLimitConfig{
		Default: config.RateLimitClass{MaxRequests: 2, Window: time.Minute},
		Auth:    config.RateLimitClass{MaxRequests: 2, Window: 15 * time.Minute},
		Images:  config.RateLimitClass{MaxRequests: 5, Window: time.Minute},
	})
	guard := NewAbuseGuard(blocks, config.AbuseConfig{
		Enabled:        true,
		BurstThreshold: 3,
		BlockDuration:  time.Hour,
	})
	return NewAdmission(limiter, guard, cfg, zap.NewNop())
}

// The handler package owns envelope rendering, so tests here map errors to
// bare status codes instead.
func newTestApp(admission *Admission, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(apperrors.GetStatusCode(err)).SendString(err.Error())
		},
	})
	handler := func(c *fiber.Ctx) error { return c.SendString("ok") }
	if len(handlers) > 0 {
		handler = handlers[0]
	}
	app.All("/api/test", admission.Handler("default"), handler)
	return app
}

func TestAdmissionHandler(t *testing.T) {
	t.Run("admits a plain request", func(t *testing.T) {
		app := newTestApp(newTestAdmission(testAdmissionConfig(), newFakeCounterStore(), newFakeBlockStore()))

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})

	t.Run("preflight bypasses every check", func(t *testing.T) {
		blocks := newFakeBlockStore()
		blocks.blocks["0.0.0.0"] = "test block"
		app := newTestApp(newTestAdmission(testAdmissionConfig(), newFakeCounterStore(), blocks))

		resp, err := app.Test(httptest.NewRequest(fiber.MethodOptions, "/api/test", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("disabled gate passes everything through", func(t *testing.T) {
		cfg := testAdmissionConfig()
		cfg.Enabled = false
		app := newTestApp(newTestAdmission(cfg, newFakeCounterStore(), newFakeBlockStore()))

		for i := 0; i < 10; i++ {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}
	})

	t.Run("suspicious path rejects and blocks the client", func(t *testing.T) {
		blocks := newFakeBlockStore()
		admission := newTestAdmission(testAdmissionConfig(), newFakeCounterStore(), blocks)
		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(apperrors.GetStatusCode(err)).SendString(err.Error())
			},
		})
		app.Use(admission.Handler("default"))
		app.Get("/*", func(c *fiber.Ctx) error { return c.SendString("ok") })

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/wp-admin/setup.php", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Contains(t, blocks.blocks["0.0.0.0"], "suspicious path")

		// The block now applies to legitimate paths too
		resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("burst threshold blocks the client", func(t *testing.T) {
		blocks := newFakeBlockStore()
		app := newTestApp(newTestAdmission(config.AdmissionConfig{
			Enabled:        true,
			MaxConcurrent:  100,
			MaxPayloadSize: 10 * 1024 * 1024,
		}, &fakeCounterStore{counts: make(map[string]int64)}, blocks))

		var last int
		for i := 0; i < 4; i++ {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
			require.NoError(t, err)
			last = resp.StatusCode
		}
		assert.Equal(t, fiber.StatusTooManyRequests, last)
		assert.Equal(t, "request burst", blocks.blocks["0.0.0.0"])
	})

	t.Run("window limit rejects with headers", func(t *testing.T) {
		// Burst threshold above the window limit so the window check fires first
		counters := newFakeCounterStore()
		blocks := newFakeBlockStore()
		limiter := NewRateLimiter(counters, config.RateLimitConfig{
			Default: config.RateLimitClass{MaxRequests: 2, Window: time.Minute},
		})
		guard := NewAbuseGuard(blocks, config.AbuseConfig{BurstThreshold: 100, BlockDuration: time.Hour})
		admission := NewAdmission(limiter, guard, testAdmissionConfig(), zap.NewNop())
		app := newTestApp(admission)

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	})

	t.Run("store failure denies instead of admitting", func(t *testing.T) {
		blocks := newFakeBlockStore()
		blocks.err = errors.New("connection refused")
		app := newTestApp(newTestAdmission(testAdmissionConfig(), newFakeCounterStore(), blocks))

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("counter store failure denies instead of admitting", func(t *testing.T) {
		counters := newFakeCounterStore()
		counters.err = errors.New("connection refused")
		app := newTestApp(newTestAdmission(testAdmissionConfig(), counters, newFakeBlockStore()))

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("oversized JSON payload", func(t *testing.T) {
		cfg := testAdmissionConfig()
		cfg.MaxPayloadSize = 64
		app := newTestApp(newTestAdmission(cfg, newFakeCounterStore(), newFakeBlockStore()))

		body := `{"data":"` + strings.Repeat("x", 128) + `"}`
		req := httptest.NewRequest(fiber.MethodPost, "/api/test", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		app := newTestApp(newTestAdmission(testAdmissionConfig(), newFakeCounterStore(), newFakeBlockStore()))

		req := httptest.NewRequest(fiber.MethodPost, "/api/test", strings.NewReader("{not json"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("sanitizes JSON string values in place", func(t *testing.T) {
		admission := newTestAdmission(testAdmissionConfig(), newFakeCounterStore(), newFakeBlockStore())
		app := newTestApp(admission, func(c *fiber.Ctx) error {
			return c.Send(c.Body())
		})

		req := httptest.NewRequest(fiber.MethodPost, "/api/test",
			strings.NewReader(`{"name":"<script>alert(1)</script>Acme"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		echoed, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var doc map[string]string
		require.NoError(t, json.Unmarshal(echoed, &doc))
		assert.Equal(t, "scriptalert(1)/scriptAcme", doc["name"])
	})

	t.Run("concurrency ceiling sheds the overflow request", func(t *testing.T) {
		cfg := testAdmissionConfig()
		cfg.MaxConcurrent = 1
		admission := newTestAdmission(cfg, newFakeCounterStore(), newFakeBlockStore())

		release := make(chan struct{})
		entered := make(chan struct{})
		app := newTestApp(admission, func(c *fiber.Ctx) error {
			close(entered)
			<-release
			return c.SendString("ok")
		})

		done := make(chan struct{})
		go func() {
			defer close(done)
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil), 5000)
			assert.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		}()

		<-entered
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/test", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

		close(release)
		<-done
		assert.Equal(t, int64(0), admission.InFlight())
	})
}

func TestSuspiciousPath(t *testing.T) {
	guard := NewAbuseGuard(newFakeBlockStore(), config.AbuseConfig{})

	for _, path := range []string{
		"/wp-admin/setup.php",
		"/index.php",
		"/.env",
		"/.git/config",
		"/vendor/phpunit/phpunit",
		"/cgi-bin/test",
	} {
		assert.True(t, guard.SuspiciousPath(path), path)
	}

	for _, path := range []string{
		"/api/organizations",
		"/api/projects/abc",
		"/health",
	} {
		assert.False(t, guard.SuspiciousPath(path), path)
	}
}
