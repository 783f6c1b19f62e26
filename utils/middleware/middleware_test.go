package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilchouksey/course-catalog/model"
	"github.com/sahilchouksey/course-catalog/utils/apperr"
	"github.com/sahilchouksey/course-catalog/utils/auth"
	"github.com/sahilchouksey/course-catalog/utils/cache"
	"github.com/sahilchouksey/course-catalog/utils/response"
)

type stubUsers map[uint]*model.User

func (s stubUsers) GetUserByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user", id)
}

type stubRevocations map[string]bool

func (s stubRevocations) RevokeToken(_ context.Context, jti string, _ uint, _ time.Time, _ string) error {
	s[jti] = true
	return nil
}
func (s stubRevocations) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	return s[jti], nil
}
func (s stubRevocations) CleanupExpiredTokens(context.Context) (int64, error) { return 0, nil }

func decode(t *testing.T, body io.Reader) response.Message {
	t.Helper()
	var msg response.Message
	require.NoError(t, json.NewDecoder(body).Decode(&msg))
	return msg
}

func TestErrorHandlerMapping(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	cases := map[string]error{
		"/page":      &apperr.InvalidPageError{Page: 9, MaxPage: 2},
		"/missing":   apperr.NotFound("term", 3),
		"/dup":       errors.Wrap(apperr.Duplicate("Term 1 already exists"), "add term"),
		"/ref":       apperr.Referential("Term 1 is referenced"),
		"/invalid":   apperr.NewValidationError("term_id", "must be positive"),
		"/malformed": apperr.Malformed("Data must contain complete term information", nil),
		"/storage":   &apperr.StorageUnavailableError{Attempts: 3},
		"/unknown":   errors.New("boom"),
		"/forbidden": fiber.NewError(fiber.StatusForbidden, "Insufficient permissions"),
	}
	for path, err := range cases {
		err := err
		app.Get(path, func(c *fiber.Ctx) error { return err })
	}

	expect := []struct {
		path   string
		status int
		id     string
		desc   string
	}{
		{"/page", 404, response.IDInvalidPage, "Page number must be from 1, up to a maximum of 2"},
		{"/missing", 404, response.IDNotFound, "Specified term id does not exist"},
		{"/dup", 400, response.IDDataError, "add term: Term 1 already exists"},
		{"/ref", 400, response.IDDataError, "Term 1 is referenced"},
		{"/invalid", 400, response.IDDataError, "must be positive"},
		{"/malformed", 400, response.IDDataError, "Data must contain complete term information"},
		{"/storage", 500, response.IDDatabaseError, response.DatabaseErrorDescription},
		{"/unknown", 500, response.IDDatabaseError, response.DatabaseErrorDescription},
		{"/forbidden", 403, response.IDForbidden, "Insufficient permissions"},
	}
	for _, tc := range expect {
		t.Run(tc.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			msg := decode(t, resp.Body)
			assert.Equal(t, tc.id, msg.ID)
			assert.Equal(t, tc.desc, msg.Description)
		})
	}
}

func newAuthApp(t *testing.T, users stubUsers, revoked stubRevocations) (*fiber.App, *auth.JWTManager) {
	t.Helper()
	jwtManager := auth.NewJWTManager(auth.JWTConfig{Secret: "s", Expiry: time.Minute})
	m := NewAuthMiddleware(jwtManager, auth.NewBlacklistService(revoked), users)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	ok := func(c *fiber.Ctx) error {
		user, found := GetUser(c)
		require.True(t, found)
		return c.SendString(user.Email)
	}
	app.Get("/member", m.Require(model.GroupMember), ok)
	app.Get("/admin", m.Require(model.GroupAdmin), ok)
	return app, jwtManager
}

func call(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireGroups(t *testing.T) {
	member := &model.User{ID: 1, Email: "m@example.com", AccessGroup: model.GroupMember}
	admin := &model.User{ID: 2, Email: "a@example.com", AccessGroup: model.GroupAdmin}
	app, jwtManager := newAuthApp(t, stubUsers{1: member, 2: admin}, stubRevocations{})

	memberToken, _, err := jwtManager.GenerateAccessToken(member)
	require.NoError(t, err)
	adminToken, _, err := jwtManager.GenerateAccessToken(admin)
	require.NoError(t, err)

	assert.Equal(t, 401, call(t, app, "/member", ""))
	assert.Equal(t, 401, call(t, app, "/member", "garbage"))
	assert.Equal(t, 200, call(t, app, "/member", memberToken))
	assert.Equal(t, 403, call(t, app, "/admin", memberToken))
	assert.Equal(t, 200, call(t, app, "/admin", adminToken))
	assert.Equal(t, 200, call(t, app, "/member", adminToken))
}

func TestRequireRejectsBlockedRevokedAndStaleTokens(t *testing.T) {
	user := &model.User{ID: 1, Email: "m@example.com", AccessGroup: model.GroupAdmin}
	revoked := stubRevocations{}
	app, jwtManager := newAuthApp(t, stubUsers{1: user}, revoked)

	token, _, err := jwtManager.GenerateAccessToken(user)
	require.NoError(t, err)
	refresh, _, err := jwtManager.GenerateRefreshToken(user)
	require.NoError(t, err)

	assert.Equal(t, 401, call(t, app, "/member", refresh), "refresh tokens are not access tokens")

	user.Blocked = true
	assert.Equal(t, 403, call(t, app, "/member", token))
	user.Blocked = false

	user.TokenVersion++
	assert.Equal(t, 401, call(t, app, "/member", token))
	user.TokenVersion--

	claims, err := jwtManager.ValidateToken(token)
	require.NoError(t, err)
	revoked[claims.ID] = true
	assert.Equal(t, 401, call(t, app, "/member", token))
}

var _ AttemptStore = (*cache.RedisCache)(nil)

type memoryAttempts struct {
	counts map[string]int64
	locks  map[string]time.Duration
}

func newMemoryAttempts() *memoryAttempts {
	return &memoryAttempts{counts: map[string]int64{}, locks: map[string]time.Duration{}}
}

func (m *memoryAttempts) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.locks[key]
	return ok, nil
}
func (m *memoryAttempts) TTL(_ context.Context, key string) (time.Duration, error) {
	return m.locks[key], nil
}
func (m *memoryAttempts) Increment(_ context.Context, key string) (int64, error) {
	m.counts[key]++
	return m.counts[key], nil
}
func (m *memoryAttempts) Expire(context.Context, string, time.Duration) error { return nil }
func (m *memoryAttempts) Set(_ context.Context, key string, _ interface{}, d time.Duration) error {
	m.locks[key] = d
	return nil
}
func (m *memoryAttempts) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.counts, k)
		delete(m.locks, k)
	}
	return nil
}

func TestBruteForceLockout(t *testing.T) {
	store := newMemoryAttempts()
	guard := NewBruteForceProtection(store, nil)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Post("/login", guard.Guard(), func(c *fiber.Ctx) error { return c.SendStatus(200) })

	// fiber test requests come from 0.0.0.0
	const ip = "0.0.0.0"
	for i := 0; i < 4; i++ {
		guard.RecordFailure(context.Background(), ip)
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	guard.RecordFailure(context.Background(), ip)
	assert.Equal(t, 2*time.Minute, store.locks[lockKey(ip)])
	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, "120", resp.Header.Get("Retry-After"))

	guard.RecordSuccess(context.Background(), ip)
	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestNilBruteForceProtectionAllows(t *testing.T) {
	var guard *BruteForceProtection
	app := fiber.New()
	app.Post("/login", guard.Guard(), func(c *fiber.Ctx) error { return c.SendStatus(200) })
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	guard.RecordFailure(context.Background(), "1.2.3.4")
}

func TestLockDurations(t *testing.T) {
	assert.Zero(t, lockDuration(4))
	assert.Equal(t, 2*time.Minute, lockDuration(5))
	assert.Equal(t, time.Hour, lockDuration(10))
	assert.Equal(t, 24*time.Hour, lockDuration(25))
}
