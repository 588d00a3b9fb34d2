package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/astromusic/astromusic/internal/auth"
	"github.com/astromusic/astromusic/internal/cache"
	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/ephemeris"
	"github.com/astromusic/astromusic/internal/handler/dto"
	"github.com/astromusic/astromusic/internal/metrics"
	"github.com/astromusic/astromusic/internal/middleware"
	"github.com/astromusic/astromusic/internal/repository/repotest"
	"github.com/astromusic/astromusic/internal/service"
	"github.com/astromusic/astromusic/internal/zodiac"
)

const testPassword = "correct-horse"

type stubCalculator struct {
	mu     sync.Mutex
	result *ephemeris.Result
	err    error
}

func (s *stubCalculator) Calculate(context.Context, ephemeris.Request) (*ephemeris.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubCalculator) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func strRef(s string) *string     { return &s }
func floatRef(f float64) *float64 { return &f }

func leoChart() *ephemeris.Result {
	return &ephemeris.Result{
		Bodies: []ephemeris.Body{
			{Object: "Asc", Rasi: strRef("Leo"), Degree: floatRef(14.25)},
			{Object: "Sun", Rasi: strRef("Cancer")},
			{Object: "Moon", Rasi: strRef("Pisces")},
			{Object: "Saturn", Rasi: strRef("Cap")},
			{Object: "MC", Rasi: strRef("Taurus")},
		},
		Raw: `{"bodies":[]}`,
	}
}

// testEnv is the full router over in-memory stores and miniredis.
type testEnv struct {
	t        *testing.T
	store    *repotest.MemStore
	cache    *cache.Cache
	calc     *stubCalculator
	metrics  *metrics.InMemoryRecorder
	accounts *service.AccountService
	router   http.Handler
}

func newTestEnv(t *testing.T, mode chart.Mode) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cacheClient := cache.NewWithClient(client)

	env := &testEnv{
		t:       t,
		store:   repotest.NewMemStore(),
		cache:   cacheClient,
		calc:    &stubCalculator{result: leoChart()},
		metrics: metrics.NewInMemory(),
	}

	deriver := chart.NewDeriver(env.calc, zodiac.Default(), logger, chart.Options{Mode: mode, Recorder: env.metrics})
	tokens := auth.NewTokenIssuer("handler-test-secret-0123456789abcdef", 30*time.Minute, 7*24*time.Hour)

	env.accounts = service.NewAccountService(service.AccountDeps{
		Users:   env.store,
		Charts:  env.store,
		Cache:   cacheClient,
		Revoker: cacheClient,
		Hasher:  auth.NewPasswordHasher(auth.Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}),
		Tokens:  tokens,
		Metrics: env.metrics,
		Logger:  logger,
	})
	charts := service.NewChartService(env.store, cacheClient, deriver, nil, env.metrics, logger)
	astrology := service.NewAstrologyService(deriver, charts)

	env.router = NewRouter(RouterConfig{
		Logger:        logger,
		Authenticator: env.accounts,
		Limiter:       cacheClient,
		Root:          New(),
		Health:        NewHealthHandler(nil, cacheClient, nil),
		Metrics:       NewMetricsHandler(env.metrics),
		Auth:          NewAuthHandler(env.accounts, int64(tokens.AccessTTL().Seconds()), logger),
		Users:         NewUserHandler(env.accounts, logger),
		Charts:        NewChartHandler(charts, logger),
		Astrology:     NewAstrologyHandler(astrology, logger),
		CORS:          middleware.DefaultCORSConfig(),
		Security:      middleware.SecurityConfig{IsDevelopment: true},
	})

	return env
}

func (e *testEnv) request(method, path, token string, body any) *http.Request {
	e.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, e.request(method, path, token, body))
	return rec
}

// signup registers an account and returns its access token.
func (e *testEnv) signup(email string) string {
	e.t.Helper()

	rec := e.do(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{
		Email: email, Name: "Test User", Password: testPassword,
	})
	if rec.Code != http.StatusCreated {
		e.t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	return e.login(email).AccessToken
}

func (e *testEnv) login(email string) dto.TokenResponse {
	e.t.Helper()

	rec := e.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: testPassword})
	if rec.Code != http.StatusOK {
		e.t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var tokens dto.TokenResponse
	decode(e.t, rec, &tokens)
	return tokens
}

func (e *testEnv) superuserToken() string {
	e.t.Helper()

	_, err := e.accounts.Create(context.Background(), service.CreateAccountInput{
		Email: "root@example.com", Name: "Root", Password: testPassword, Superuser: true,
	})
	if err != nil {
		e.t.Fatalf("create superuser: %v", err)
	}
	return e.login("root@example.com").AccessToken
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body dto.ErrorResponse
	decode(t, rec, &body)
	return body.Code
}

func birthChartBody() dto.BirthChartRequest {
	return dto.BirthChartRequest{
		BirthDate:      "1990-07-15",
		BirthTime:      "06:30",
		BirthLatitude:  floatRef(19.076),
		BirthLongitude: floatRef(72.8777),
		BirthPlace:     "Mumbai",
		Timezone:       "Asia/Kolkata",
	}
}
