package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vl4ks/filmorate/config"
	"github.com/vl4ks/filmorate/internal/application/command"
	"github.com/vl4ks/filmorate/internal/application/query"
	"github.com/vl4ks/filmorate/internal/infrastructure/metrics"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence"
	"github.com/vl4ks/filmorate/internal/infrastructure/persistence/memory"
	"github.com/vl4ks/filmorate/internal/interface/http/handlers"
	"github.com/vl4ks/filmorate/pkg/logger"
	"github.com/vl4ks/filmorate/pkg/timeutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	health  *handlers.CompositeHealthChecker
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, config.HTTPConfig{Host: "127.0.0.1", Port: 0, CORSOrigins: []string{"*"}})
}

func newTestServerWith(t *testing.T, cfg config.HTTPConfig) *testServer {
	t.Helper()
	ctx := context.Background()

	store := memory.New()
	catalog, err := config.DefaultCatalog()
	require.NoError(t, err)
	_, err = persistence.Seed(ctx, store, catalog, logger.Nop())
	require.NoError(t, err)

	cmds := command.NewHandlers(command.Repositories{
		Films:   store.Films(),
		Genres:  store.Genres(),
		Ratings: store.Ratings(),
		Users:   store.Users(),
		Likes:   store.Likes(),
		Friends: store.Friends(),
	}, command.Deps{Clock: timeutil.NewFixedClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))})
	queries := query.NewHandlers(query.Repositories{
		Films:   store.Films(),
		Genres:  store.Genres(),
		Ratings: store.Ratings(),
		Users:   store.Users(),
		Likes:   store.Likes(),
		Friends: store.Friends(),
	})

	health := handlers.NewCompositeHealthChecker("test")
	health.AddCheck("store", handlers.NewPingCheck(store))

	srv := NewServer(cfg, Dependencies{
		Commands: cmds,
		Queries:  queries,
		Health:   health,
		Metrics:  metrics.NewRegistry(),
		Logger:   logger.Nop(),
		Version:  "test",
	})
	return &testServer{t: t, handler: srv.Handler(), health: health}
}

func (ts *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, category string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode[handlers.ErrorBody](t, w)
	assert.Equal(t, category, body.Error)
	assert.NotEmpty(t, body.Message)
}

const matrixJSON = `{"name":"Матрица","description":"Нео выбирает таблетку","releaseDate":"1999-03-31",
	"duration":136,"mpa":{"id":4},"genres":[{"id":6},{"id":6},{"id":4}]}`

// ══════════════════════════════════════════════════════════════════════════════
// FILMS
// ══════════════════════════════════════════════════════════════════════════════

func TestFilmLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/films", matrixJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[FilmResponse](t, w)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, RefDTO{ID: 4, Name: "R"}, created.Mpa)
	assert.Equal(t, []RefDTO{{ID: 4, Name: "Триллер"}, {ID: 6, Name: "Боевик"}}, created.Genres)
	assert.Equal(t, "1999-03-31", created.ReleaseDate.String())
	assert.Zero(t, created.LikesCount)

	w = ts.do(http.MethodPut, "/films", `{"id":1,"duration":150}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[FilmResponse](t, w)
	assert.Equal(t, 150, updated.Duration)
	assert.Equal(t, "Матрица", updated.Name)
	assert.Len(t, updated.Genres, 2)

	w = ts.do(http.MethodGet, "/films/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, updated, decode[FilmResponse](t, w))

	w = ts.do(http.MethodGet, "/films", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]FilmResponse](t, w), 1)

	w = ts.do(http.MethodDelete, "/films/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assertError(t, ts.do(http.MethodGet, "/films/1", ""), http.StatusNotFound, handlers.CategoryNotFound)
	assertError(t, ts.do(http.MethodDelete, "/films/1", ""), http.StatusNotFound, handlers.CategoryNotFound)
}

func TestFilmValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"blank name", `{"name":" ","releaseDate":"2000-01-01","duration":90,"mpa":{"id":1}}`},
		{"long description", `{"name":"A","description":"` + strings.Repeat("x", 201) + `","releaseDate":"2000-01-01","duration":90,"mpa":{"id":1}}`},
		{"before cinema", `{"name":"A","releaseDate":"1895-12-27","duration":90,"mpa":{"id":1}}`},
		{"future release", `{"name":"A","releaseDate":"2024-06-02","duration":90,"mpa":{"id":1}}`},
		{"bad date format", `{"name":"A","releaseDate":"31.03.1999","duration":90,"mpa":{"id":1}}`},
		{"zero duration", `{"name":"A","releaseDate":"2000-01-01","duration":0,"mpa":{"id":1}}`},
		{"missing mpa", `{"name":"A","releaseDate":"2000-01-01","duration":90}`},
		{"unknown mpa", `{"name":"A","releaseDate":"2000-01-01","duration":90,"mpa":{"id":99}}`},
		{"unknown genre", `{"name":"A","releaseDate":"2000-01-01","duration":90,"mpa":{"id":1},"genres":[{"id":1},{"id":99}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertError(t, ts.do(http.MethodPost, "/films", tt.body), http.StatusBadRequest, handlers.CategoryValidation)
		})
	}

	w := ts.do(http.MethodGet, "/films", "")
	assert.JSONEq(t, `[]`, w.Body.String())

	assertError(t, ts.do(http.MethodPut, "/films", `{"name":"no id"}`), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodPut, "/films", `{"id":42,"name":"ghost"}`), http.StatusNotFound, handlers.CategoryNotFound)
	assertError(t, ts.do(http.MethodGet, "/films/abc", ""), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodGet, "/films/-1", ""), http.StatusBadRequest, handlers.CategoryValidation)
}

func TestFilmGenresAndRating(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/films", matrixJSON).Code)

	w := ts.do(http.MethodPut, "/films/1/genres", `[{"id":2},{"id":1}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []RefDTO{{ID: 1, Name: "Комедия"}, {ID: 2, Name: "Драма"}}, decode[FilmResponse](t, w).Genres)

	assertError(t, ts.do(http.MethodPut, "/films/1/genres", `[{"id":3},{"id":77}]`), http.StatusBadRequest, handlers.CategoryValidation)
	w = ts.do(http.MethodGet, "/films/1", "")
	assert.Len(t, decode[FilmResponse](t, w).Genres, 2)

	w = ts.do(http.MethodPut, "/films/1/mpa/1", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, RefDTO{ID: 1, Name: "G"}, decode[FilmResponse](t, w).Mpa)

	assertError(t, ts.do(http.MethodPut, "/films/1/mpa/77", ""), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodPut, "/films/9/mpa/1", ""), http.StatusNotFound, handlers.CategoryNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// USERS & SOCIAL GRAPH
// ══════════════════════════════════════════════════════════════════════════════

func (ts *testServer) createUser(login string) UserResponse {
	ts.t.Helper()
	w := ts.do(http.MethodPost, "/users", `{"email":"`+login+`@mail.ru","login":"`+login+`","birthday":"1990-05-05"}`)
	require.Equal(ts.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[UserResponse](ts.t, w)
}

func TestUserLifecycle(t *testing.T) {
	ts := newTestServer(t)

	u := ts.createUser("neo")
	assert.Equal(t, "neo", u.Name)
	assert.Equal(t, "1990-05-05", u.Birthday.String())

	w := ts.do(http.MethodPut, "/users", `{"id":1,"name":"Thomas Anderson"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[UserResponse](t, w)
	assert.Equal(t, "Thomas Anderson", updated.Name)
	assert.Equal(t, "neo@mail.ru", updated.Email)

	assertError(t, ts.do(http.MethodPost, "/users", `{"email":"bad","login":"x"}`), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodPost, "/users", `{"email":"a@b.c","login":"two words"}`), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodPost, "/users", `{"email":"a@b.c","login":"x","birthday":"2030-01-01"}`), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodPut, "/users", `{"id":1,"email":""}`), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodPut, "/users", `{"id":5,"name":"x"}`), http.StatusNotFound, handlers.CategoryNotFound)

	w = ts.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []UserResponse{updated}, decode[[]UserResponse](t, w))

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/users/1", "").Code)
	assertError(t, ts.do(http.MethodGet, "/users/1", ""), http.StatusNotFound, handlers.CategoryNotFound)
}

func TestLikesAndPopular(t *testing.T) {
	ts := newTestServer(t)
	for range 3 {
		require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/films", matrixJSON).Code)
	}
	ts.createUser("a")
	ts.createUser("b")

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/films/2/like/1", "").Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/films/2/like/2", "").Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/films/3/like/1", "").Code)
	assertError(t, ts.do(http.MethodPut, "/films/2/like/1", ""), http.StatusConflict, handlers.CategoryDuplicate)
	assertError(t, ts.do(http.MethodPut, "/films/2/like/9", ""), http.StatusNotFound, handlers.CategoryNotFound)

	w := ts.do(http.MethodGet, "/films/2/likes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"filmId":2,"likes":2}`, w.Body.String())

	ids := func(w *httptest.ResponseRecorder) []int64 {
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []int64
		for _, f := range decode[[]FilmResponse](t, w) {
			out = append(out, f.ID)
		}
		return out
	}
	assert.Equal(t, []int64{2, 3, 1}, ids(ts.do(http.MethodGet, "/films/popular", "")))
	assert.Equal(t, []int64{2}, ids(ts.do(http.MethodGet, "/films/popular?count=1", "")))
	assert.JSONEq(t, `[]`, ts.do(http.MethodGet, "/films/popular?count=0", "").Body.String())
	assert.JSONEq(t, `[]`, ts.do(http.MethodGet, "/films/popular?count=-3", "").Body.String())
	assertError(t, ts.do(http.MethodGet, "/films/popular?count=ten", ""), http.StatusBadRequest, handlers.CategoryValidation)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/films/2/like/2", "").Code)
	assertError(t, ts.do(http.MethodDelete, "/films/2/like/2", ""), http.StatusNotFound, handlers.CategoryNotFound)
	assert.Equal(t, []int64{2, 3, 1}, ids(ts.do(http.MethodGet, "/films/popular", "")))

	w = ts.do(http.MethodGet, "/films/2", "")
	assert.Equal(t, 1, decode[FilmResponse](t, w).LikesCount)
}

func TestFriends(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createUser("a")
	b := ts.createUser("b")
	c := ts.createUser("c")

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/users/1/friends/2", "").Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/users/1/friends/3", "").Code)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodPut, "/users/2/friends/3", "").Code)
	assertError(t, ts.do(http.MethodPut, "/users/2/friends/1", ""), http.StatusConflict, handlers.CategoryDuplicate)
	assertError(t, ts.do(http.MethodPut, "/users/1/friends/1", ""), http.StatusBadRequest, handlers.CategoryValidation)
	assertError(t, ts.do(http.MethodPut, "/users/1/friends/42", ""), http.StatusNotFound, handlers.CategoryNotFound)

	w := ts.do(http.MethodGet, "/users/2/friends", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []UserResponse{a, c}, decode[[]UserResponse](t, w))

	w = ts.do(http.MethodGet, "/users/1/friends/common/2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []UserResponse{c}, decode[[]UserResponse](t, w))

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/users/3/friends/1", "").Code)
	assertError(t, ts.do(http.MethodDelete, "/users/1/friends/3", ""), http.StatusNotFound, handlers.CategoryNotFound)

	w = ts.do(http.MethodGet, "/users/1/friends", "")
	assert.Equal(t, []UserResponse{b}, decode[[]UserResponse](t, w))
}

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE CATALOG
// ══════════════════════════════════════════════════════════════════════════════

func TestReferences(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/genres", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]RefDTO](t, w), 6)

	w = ts.do(http.MethodGet, "/mpa/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":3,"name":"PG-13"}`, w.Body.String())
	assertError(t, ts.do(http.MethodGet, "/mpa/99", ""), http.StatusNotFound, handlers.CategoryNotFound)

	w = ts.do(http.MethodPost, "/genres", `{"name":"Фантастика"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, RefDTO{ID: 7, Name: "Фантастика"}, decode[RefDTO](t, w))
	assertError(t, ts.do(http.MethodPost, "/genres", `{"name":"Фантастика"}`), http.StatusConflict, handlers.CategoryDuplicate)
	assertError(t, ts.do(http.MethodPost, "/mpa", `{"name":""}`), http.StatusBadRequest, handlers.CategoryValidation)

	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/films", matrixJSON).Code)
	assertError(t, ts.do(http.MethodDelete, "/mpa/4", ""), http.StatusConflict, handlers.CategoryConflict)
	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/mpa/5", "").Code)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/genres/6", "").Code)
	w = ts.do(http.MethodGet, "/films/1", "")
	assert.Equal(t, []RefDTO{{ID: 4, Name: "Триллер"}}, decode[FilmResponse](t, w).Genres)
}

// ══════════════════════════════════════════════════════════════════════════════
// AMBIENT ENDPOINTS
// ══════════════════════════════════════════════════════════════════════════════

func TestHealthReadyAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get(handlers.RequestIDHeader))

	w = ts.do(http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	status := decode[handlers.HealthStatus](t, w)
	assert.True(t, status.Ready)
	assert.True(t, status.Checks["store"].Healthy)

	ts.health.AddCheck("broken", func(context.Context) error { return errors.New("down") })
	w = ts.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Some checks failed: broken", decode[handlers.HealthStatus](t, w).Message)

	ts.do(http.MethodGet, "/films/popular", "")
	w = ts.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `filmorate_http_requests_total{method="GET",route="/films/popular",status="200"} 1`)
}

func TestRequestIDAndUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/genres", nil)
	req.Header.Set(handlers.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(handlers.RequestIDHeader))

	assertError(t, ts.do(http.MethodGet, "/nope", ""), http.StatusNotFound, handlers.CategoryNotFound)
	assert.Equal(t, http.StatusMethodNotAllowed, ts.do(http.MethodPatch, "/films", "").Code)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServerWith(t, config.HTTPConfig{RateLimitPerMinute: 2})

	for range 2 {
		w := ts.do(http.MethodGet, "/genres", "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := ts.do(http.MethodGet, "/genres", "")
	assertError(t, w, http.StatusTooManyRequests, handlers.CategoryRateLimited)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}
