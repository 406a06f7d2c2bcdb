// Package admin holds the authenticated operator endpoints.
package admin

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/camly/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler issues and verifies admin session tokens.
type AuthHandler struct {
	username     string
	passwordHash string // bcrypt, preferred
	password     string // plaintext fallback for local development
	secret       []byte
	ttl          time.Duration
	log          zerolog.Logger
}

// NewAuthHandler builds an AuthHandler. passwordHash wins over password
// when both are configured.
func NewAuthHandler(username, passwordHash, password string, secret []byte, ttl time.Duration, log zerolog.Logger) *AuthHandler {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthHandler{
		username:     username,
		passwordHash: passwordHash,
		password:     password,
		secret:       secret,
		ttl:          ttl,
		log:          log.With().Str("handler", "auth").Logger(),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login serves POST /api/admin/login and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("admin.Login", "malformed login request")
	}
	if !h.credentialsOK(req.Username, req.Password) {
		h.log.Warn().Str("username", req.Username).Str("remote_ip", c.RealIP()).Msg("failed admin login")
		return domain.Unauthorized("admin.Login", "invalid credentials")
	}

	expires := time.Now().Add(h.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString(h.secret)
	if err != nil {
		return domain.Internal(err, "admin.Login", "token signing failed")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: signed, ExpiresAt: expires})
}

func (h *AuthHandler) credentialsOK(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.username)) == 1
	var passOK bool
	if h.passwordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(password)) == nil
	} else {
		passOK = h.password != "" &&
			subtle.ConstantTimeCompare([]byte(password), []byte(h.password)) == 1
	}
	return userOK && passOK
}

// Middleware guards admin routes with the bearer token issued by Login.
func (h *AuthHandler) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				return domain.Unauthorized("admin.Middleware", "missing bearer token")
			}
			token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return h.secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return domain.Unauthorized("admin.Middleware", "invalid or expired token")
			}
			if sub, err := token.Claims.GetSubject(); err == nil {
				c.Set("admin_user", sub)
			}
			return next(c)
		}
	}
}
