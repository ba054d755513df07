package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atifjaved999/mini-coaching/internal/database"
	"github.com/atifjaved999/mini-coaching/internal/http/handler"
	"github.com/atifjaved999/mini-coaching/internal/http/middleware"
	"github.com/atifjaved999/mini-coaching/internal/http/router"
	"github.com/atifjaved999/mini-coaching/internal/repository"
	"github.com/atifjaved999/mini-coaching/internal/security"
	"github.com/atifjaved999/mini-coaching/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServerOptions struct {
	authRateLimit int
	apiRateLimit  int
}

// captureResetNotifier records the last reset token handed to it so
// tests can complete the forgot/reset round trip.
type captureResetNotifier struct {
	mu    sync.Mutex
	token string
}

func (c *captureResetNotifier) SendPasswordReset(ctx context.Context, userID uint, email, token string, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	return nil
}

func (c *captureResetNotifier) lastToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

type testServer struct {
	baseURL     string
	client      *http.Client
	resetTokens *captureResetNotifier
	queueKey    string
	redis       *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	return newTestServerWithOptions(t, testServerOptions{authRateLimit: 1000, apiRateLimit: 1000})
}

func newTestServerWithOptions(t *testing.T, opts testServerOptions) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.SeedSync(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	resetTokens := repository.NewPasswordResetTokenRepository(db)

	tokens := security.NewTokenManager("mini-coaching", "mini-coaching-api", "integration-secret")
	cache := service.NewRedisSessionCacheStore(redisClient, "session_cache")
	queueKey := "session_notifications"
	notifier := service.NewRedisQueueNotifier(redisClient, queueKey)
	resetNotifier := &captureResetNotifier{}

	authSvc := service.NewAuthService(users, resetTokens, tokens, resetNotifier, time.Hour, 30*time.Minute, "pepper", log)
	sessionSvc := service.NewSessionService(sessions, users, cache, notifier, time.Minute, log)
	bookingSvc := service.NewBookingService(sessions, cache, notifier, log)
	userSvc := service.NewUserService(users, service.NewNoopStorageService(), log)

	dep := router.Dependencies{
		Auth:             handler.NewAuthHandler(authSvc),
		Sessions:         handler.NewSessionHandler(sessionSvc, bookingSvc),
		Users:            handler.NewUserHandler(userSvc),
		Authenticator:    middleware.NewAuthenticator(tokens, users),
		CORSOrigins:      []string{"http://localhost:3000"},
		AuthRateLimitRPM: opts.authRateLimit,
		APIRateLimitRPM:  opts.apiRateLimit,
	}
	srv := httptest.NewServer(router.New(dep))
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL:     srv.URL,
		client:      srv.Client(),
		resetTokens: resetNotifier,
		queueKey:    queueKey,
		redis:       mr,
	}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, envelope) {
	t.Helper()
	resp, raw := doRawText(t, client, method, url, body, headers)
	var env envelope
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			t.Fatalf("decode envelope: %v body=%q", err, raw)
		}
	}
	return resp, env
}

func doRawText(t *testing.T, client *http.Client, method, url string, body any, headers map[string]string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = strings.NewReader(s)
		} else {
			payload, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal request body: %v", err)
			}
			reader = bytes.NewReader(payload)
		}
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, string(raw)
}

func signup(t *testing.T, ts *testServer, name, email, role string) string {
	t.Helper()
	resp, env := doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret-password",
		"role":     role,
	}, nil)
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("signup %s failed: status=%d error=%+v", email, resp.StatusCode, env.Error)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode signup data: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token in signup response")
	}
	return result.Token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func createSession(t *testing.T, ts *testServer, token, title, date, start, end string) uint {
	t.Helper()
	resp, env := doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/sessions", map[string]any{
		"title":        title,
		"description":  "integration session",
		"scheduled_on": date,
		"start_time":   start,
		"end_time":     end,
	}, bearer(token))
	if resp.StatusCode != http.StatusCreated || !env.Success {
		t.Fatalf("create session %q failed: status=%d error=%+v", title, resp.StatusCode, env.Error)
	}
	var view struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode session data: %v", err)
	}
	return view.ID
}

func sessionURL(ts *testServer, id uint, suffix string) string {
	return fmt.Sprintf("%s/api/v1/sessions/%d%s", ts.baseURL, id, suffix)
}
