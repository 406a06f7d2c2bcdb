package admin_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/camly/storefront/internal/domain"
	"github.com/camly/storefront/internal/handler/admin"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testSecret = []byte("test-secret")

func newAuth(t *testing.T) *admin.AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return admin.NewAuthHandler("chu-tiem", string(hash), "", testSecret, time.Hour, zerolog.Nop())
}

func login(t *testing.T, h *admin.AuthHandler, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h.Login(e.NewContext(req, rec))
}

func TestLogin_Success(t *testing.T) {
	h := newAuth(t)

	rec, err := login(t, h, `{"username":"chu-tiem","password":"s3cret"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token)
	assert.True(t, body.ExpiresAt.After(time.Now()))
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newAuth(t)

	_, err := login(t, h, `{"username":"chu-tiem","password":"wrong"}`)
	require.Error(t, err)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}

func TestLogin_PlaintextFallback(t *testing.T) {
	h := admin.NewAuthHandler("chu-tiem", "", "dev-pass", testSecret, time.Hour, zerolog.Nop())

	rec, err := login(t, h, `{"username":"chu-tiem","password":"dev-pass"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_RoundTrip(t *testing.T) {
	h := newAuth(t)

	rec, err := login(t, h, `{"username":"chu-tiem","password":"s3cret"}`)
	require.NoError(t, err)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/sync", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	rec2 := httptest.NewRecorder()
	c := e.NewContext(req, rec2)

	called := false
	next := func(c echo.Context) error {
		called = true
		assert.Equal(t, "chu-tiem", c.Get("admin_user"))
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, h.Middleware()(next)(c))
	assert.True(t, called)
}

func TestMiddleware_RejectsMissingAndBogusTokens(t *testing.T) {
	h := newAuth(t)
	e := echo.New()
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	err := h.Middleware()(next)(c)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	c = e.NewContext(req, httptest.NewRecorder())
	err = h.Middleware()(next)(c)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}
