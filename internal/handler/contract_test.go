package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/go-chi/chi/v5"

	"github.com/astromusic/astromusic/internal/chart"
	"github.com/astromusic/astromusic/internal/handler/dto"
)

var openAPIPath = filepath.Join("..", "..", "docs", "api", "openapi.yaml")

func loadOpenAPI(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	doc, err := openapi3.NewLoader().LoadFromFile(openAPIPath)
	if err != nil {
		t.Fatalf("load %s: %v", openAPIPath, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI document is invalid: %v", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		t.Fatalf("build OpenAPI router: %v", err)
	}
	return doc, router
}

// validateResponse checks that rec is a documented response to req.
func validateResponse(t *testing.T, router routers.Router, req *http.Request, rec *httptest.ResponseRecorder) {
	t.Helper()

	route, pathParams, err := router.FindRoute(req)
	if err != nil {
		t.Errorf("%s %s: route not documented: %v", req.Method, req.URL.Path, err)
		return
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: rec.Code,
		Header: rec.Header(),
		Body:   io.NopCloser(strings.NewReader(rec.Body.String())),
	}
	if err := openapi3filter.ValidateResponse(context.Background(), input); err != nil {
		t.Errorf("%s %s -> %d does not match the OpenAPI document: %v", req.Method, req.URL.Path, rec.Code, err)
	}
}

func TestOpenAPI_EveryRouteDocumented(t *testing.T) {
	t.Parallel()
	doc, _ := loadOpenAPI(t)
	env := newTestEnv(t, chart.ModeTolerant)

	routes, ok := env.router.(chi.Routes)
	if !ok {
		t.Fatal("router does not expose its routes")
	}

	err := chi.Walk(routes, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		item := doc.Paths.Find(route)
		if item == nil {
			item = doc.Paths.Find(strings.TrimSuffix(route, "/"))
		}
		if item == nil || item.GetOperation(method) == nil {
			t.Errorf("%s %s is served but not documented", method, route)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk routes: %v", err)
	}
}

func TestOpenAPI_ResponsesMatch(t *testing.T) {
	t.Parallel()
	_, router := loadOpenAPI(t)
	env := newTestEnv(t, chart.ModeTolerant)

	call := func(method, path, token string, body any) *httptest.ResponseRecorder {
		t.Helper()
		req := env.request(method, path, token, body)
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		validateResponse(t, router, env.request(method, path, token, nil), rec)
		return rec
	}

	call(http.MethodGet, "/", "", nil)
	call(http.MethodGet, "/healthz", "", nil)
	call(http.MethodGet, "/readyz", "", nil)
	call(http.MethodGet, "/metrics", "", nil)

	call(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{Email: "user@example.com", Name: "User", Password: testPassword})
	call(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{Email: "user@example.com", Name: "User", Password: testPassword})
	call(http.MethodPost, "/api/v1/auth/register", "", dto.RegisterRequest{Email: "bad", Name: "User", Password: testPassword})
	call(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "user@example.com", Password: "nope"})

	tokens := env.login("user@example.com")
	token := tokens.AccessToken

	call(http.MethodGet, "/api/v1/users/me", "", nil)
	call(http.MethodGet, "/api/v1/users/me", token, nil)
	call(http.MethodPut, "/api/v1/users/me", token, map[string]string{"name": "Renamed"})

	call(http.MethodGet, "/api/v1/birth-charts/me", token, nil)
	call(http.MethodPost, "/api/v1/birth-charts", token, dto.BirthChartRequest{BirthDate: "nope"})
	call(http.MethodPost, "/api/v1/birth-charts", token, birthChartBody())
	call(http.MethodGet, "/api/v1/birth-charts/me", token, nil)
	call(http.MethodGet, "/api/v1/birth-charts/me/data", token, nil)

	call(http.MethodPost, "/api/v1/astrology/birth-chart", token, birthChartBody())
	call(http.MethodGet, "/api/v1/astrology/transits", token, nil)
	call(http.MethodPost, "/api/v1/astrology/cosmic-influence", token, nil)
	call(http.MethodPost, "/api/v1/astrology/cosmic-influence", token, dto.CosmicInfluenceRequest{
		BirthChart: &dto.ChartSigns{Ascendant: "Libra"},
	})
	call(http.MethodGet, "/api/v1/astrology/zodiac/Aquarius", token, nil)
	call(http.MethodGet, "/api/v1/astrology/zodiac/Pluto", token, nil)

	call(http.MethodPatch, "/api/v1/admin/users/someone", token, map[string]bool{"is_active": false})
	admin := env.superuserToken()
	call(http.MethodPatch, "/api/v1/admin/users/someone", admin, map[string]bool{"is_active": false})

	call(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshRequest{RefreshToken: tokens.RefreshToken})
	call(http.MethodPost, "/api/v1/auth/refresh", "", dto.RefreshRequest{RefreshToken: tokens.RefreshToken})
	call(http.MethodPost, "/api/v1/auth/logout", "", dto.RefreshRequest{RefreshToken: tokens.RefreshToken})

	call(http.MethodDelete, "/api/v1/birth-charts/me", token, nil)
	call(http.MethodDelete, "/api/v1/users/me", token, nil)
}

func TestOpenAPI_DegradedAndStrictResponsesMatch(t *testing.T) {
	t.Parallel()
	_, router := loadOpenAPI(t)

	for _, mode := range []chart.Mode{chart.ModeTolerant, chart.ModeStrict} {
		env := newTestEnv(t, mode)
		env.calc.fail(io.ErrUnexpectedEOF)
		token := env.signup("user@example.com")

		for _, path := range []string{"/api/v1/birth-charts", "/api/v1/astrology/birth-chart"} {
			req := env.request(http.MethodPost, path, token, birthChartBody())
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, req)
			validateResponse(t, router, env.request(http.MethodPost, path, token, nil), rec)
		}
	}
}
