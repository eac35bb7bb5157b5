package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"yamdb/internal/auth"
	"yamdb/internal/dbtest"
	"yamdb/internal/domain"
	"yamdb/internal/metrics"
	"yamdb/internal/store"
	"yamdb/internal/utils"
)

const testSecret = "api-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type codeRecorder struct {
	codes map[string]string
}

func (r *codeRecorder) SendConfirmationCode(_ context.Context, email, code string) error {
	r.codes[email] = code
	return nil
}

type server struct {
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
	codes  *codeRecorder
}

func newServer(t *testing.T) *server {
	t.Helper()
	gdb := dbtest.New(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := store.NewUserStore(gdb)
	codes := &codeRecorder{codes: map[string]string{}}
	m := metrics.NewMetrics(prometheus.NewRegistry())

	r := gin.New()
	RegisterRoutes(r, Deps{
		Catalog:   store.NewCatalogStore(gdb),
		Reviews:   store.NewReviewStore(gdb),
		Users:     users,
		Auth:      auth.NewService(users, codes, utils.JWTIssuer{Secret: testSecret, TTL: time.Hour}, auth.WithBcryptCost(bcrypt.MinCost)),
		Cache:     Cache{Redis: rdb, TTL: time.Minute, Metrics: m},
		Metrics:   m,
		JWTSecret: testSecret,
		PageSize:  10,
	})
	return &server{router: r, db: gdb, redis: mr, codes: codes}
}

// user creates an account and returns its bearer header
func (s *server) user(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	u := domain.User{Username: username, Email: username + "@example.com", Role: role}
	require.NoError(t, s.db.Create(&u).Error)
	token, err := utils.GenerateJWT(u, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func (s *server) do(t *testing.T, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "", nil).Code)

	s.do(t, http.MethodGet, "/api/v1/genres", "", nil)
	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `yamdb_http_requests_total{method="GET",route="/api/v1/genres",status="200"} 1`)
}

func TestSignupAndTokenFlow(t *testing.T) {
	s := newServer(t)
	signup := map[string]string{"username": "critic", "email": "critic@example.com"}

	w := s.do(t, http.MethodPost, "/api/v1/auth/signup", "", signup)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"username":"critic","email":"critic@example.com"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", signup)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"username": "critic", "email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "critic", "confirmation_code": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "confirmation_code", decode[map[string]string](t, w)["field"])

	w = s.do(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "ghost", "confirmation_code": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	code := s.codes.codes["critic@example.com"]
	w = s.do(t, http.MethodPost, "/api/v1/auth/token", "", map[string]string{"username": "critic", "confirmation_code": code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[map[string]string](t, w), "access_token")
	token := decode[TokenResponse](t, w).Token

	w = s.do(t, http.MethodGet, "/api/v1/users/me", "Bearer "+token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "critic", decode[map[string]any](t, w)["username"])
}

func TestCategoryPermissionsAndCache(t *testing.T) {
	s := newServer(t)
	admin := s.user(t, "admin", domain.RoleAdmin)
	reader := s.user(t, "reader", domain.RoleUser)
	body := map[string]string{"name": "Film", "slug": "film"}

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/v1/categories", "", body).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/v1/categories", reader, body).Code)

	w := s.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[PageResponse[domain.Category]](t, w).Count)
	assert.NotEmpty(t, s.redis.Keys())

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/categories", admin, body).Code)
	assert.Empty(t, s.redis.Keys())

	w = s.do(t, http.MethodPost, "/api/v1/categories", admin, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "slug", decode[map[string]string](t, w)["field"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"name": "Bad", "slug": "no spaces"}).Code)

	w = s.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	page := decode[PageResponse[domain.Category]](t, w)
	assert.EqualValues(t, 1, page.Count)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, "film", page.Results[0].Slug)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/v1/categories/film", reader, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/categories/film", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/v1/categories/film", admin, nil).Code)
}

func TestTitleEndpoints(t *testing.T) {
	s := newServer(t)
	admin := s.user(t, "admin", domain.RoleAdmin)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"name": "Film", "slug": "film"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/genres", admin, map[string]string{"name": "Drama", "slug": "drama"}).Code)

	w := s.do(t, http.MethodPost, "/api/v1/titles", admin, map[string]any{
		"name": "Stalker", "year": 1979, "category": "film", "genre": []string{"drama"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"Stalker","year":1979,"description":null,
		"category":{"name":"Film","slug":"film"},"genre":[{"name":"Drama","slug":"drama"}],"rating":null}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/titles", admin, map[string]any{"name": "Nope", "year": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "year", decode[map[string]string](t, w)["field"])

	w = s.do(t, http.MethodPost, "/api/v1/titles", admin, map[string]any{"name": "Nope", "year": 2000, "genre": []string{"ghost"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "genre", decode[map[string]string](t, w)["field"])

	w = s.do(t, http.MethodGet, "/api/v1/titles?genre=drama&year=1979", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[PageResponse[domain.Title]](t, w).Count)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/titles?year=abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/titles/abc", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/titles/42", "", nil).Code)

	w = s.do(t, http.MethodPatch, "/api/v1/titles/1", admin, map[string]any{"name": "Сталкер"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Сталкер", decode[domain.Title](t, w).Name)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/titles/1", admin, nil).Code)
}

func TestReviewAndCommentEndpoints(t *testing.T) {
	s := newServer(t)
	admin := s.user(t, "admin", domain.RoleAdmin)
	author := s.user(t, "author", domain.RoleUser)
	stranger := s.user(t, "stranger", domain.RoleUser)
	moderator := s.user(t, "moderator", domain.RoleModerator)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/titles", admin, map[string]any{"name": "One", "year": 2001}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/titles", admin, map[string]any{"name": "Two", "year": 2002}).Code)

	review := map[string]any{"text": "solid", "score": 8}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/v1/titles/1/reviews", "", review).Code)

	w := s.do(t, http.MethodPost, "/api/v1/titles/1/reviews", author, review)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[ReviewResponse](t, w)
	assert.Equal(t, "author", created.Author)
	assert.Equal(t, 8, created.Score)

	w = s.do(t, http.MethodPost, "/api/v1/titles/1/reviews", author, review)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "title", decode[map[string]string](t, w)["field"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/titles/1/reviews", stranger, map[string]any{"text": "x", "score": 11}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/v1/titles/9/reviews", stranger, review).Code)

	w = s.do(t, http.MethodPost, "/api/v1/titles/1/reviews", stranger, map[string]any{"text": "meh", "score": 4})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/titles/1/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[PageResponse[ReviewResponse]](t, w)
	assert.EqualValues(t, 2, reviews.Count)
	assert.Equal(t, "stranger", reviews.Results[0].Author)

	w = s.do(t, http.MethodGet, "/api/v1/titles/1", "", nil)
	require.NotNil(t, decode[domain.Title](t, w).Rating)
	assert.InDelta(t, 6.0, *decode[domain.Title](t, w).Rating, 1e-9)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, "/api/v1/titles/1/reviews/1", stranger, map[string]any{"score": 1}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/api/v1/titles/1/reviews/1", moderator, map[string]any{"score": 9}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/titles/2/reviews/1", "", nil).Code)

	w = s.do(t, http.MethodPost, "/api/v1/titles/1/reviews/1/comments", stranger, map[string]string{"text": "disagree"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode[CommentResponse](t, w)
	assert.Equal(t, "stranger", comment.Author)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/v1/titles/2/reviews/1/comments", stranger, map[string]string{"text": "x"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, "/api/v1/titles/1/reviews/1/comments/1", author, map[string]string{"text": "edited"}).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPatch, "/api/v1/titles/1/reviews/1/comments/1", stranger, map[string]string{"text": "edited"}).Code)

	w = s.do(t, http.MethodGet, "/api/v1/titles/1/reviews/1/comments", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edited", decode[PageResponse[CommentResponse]](t, w).Results[0].Text)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/titles/1/reviews/1/comments/1", moderator, nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/titles/1/reviews/1", author, nil).Code)
}

func TestUserEndpoints(t *testing.T) {
	s := newServer(t)
	admin := s.user(t, "admin", domain.RoleAdmin)
	reader := s.user(t, "reader", domain.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/users", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/users", reader, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/users/reader", reader, nil).Code)

	w := s.do(t, http.MethodGet, "/api/v1/users?search=READ", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[PageResponse[domain.User]](t, w).Count)

	w = s.do(t, http.MethodPost, "/api/v1/users", admin, map[string]string{"username": "mod", "email": "mod@example.com", "role": "moderator"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, domain.RoleModerator, decode[domain.User](t, w).Role)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/users", admin, map[string]string{"username": "me", "email": "me@example.com"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/users", admin, map[string]string{"username": "x", "email": "x@example.com", "role": "god"}).Code)

	w = s.do(t, http.MethodPatch, "/api/v1/users/me", reader, map[string]string{"role": "admin", "bio": "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[domain.User](t, w)
	assert.Equal(t, domain.RoleUser, me.Role)
	assert.Equal(t, "hi", me.Bio)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/users/me", "", nil).Code)

	w = s.do(t, http.MethodPatch, "/api/v1/users/reader", admin, map[string]string{"role": "moderator"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.RoleModerator, decode[domain.User](t, w).Role)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/users/reader", admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/users/me", reader, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/users/reader", admin, nil).Code)
}
