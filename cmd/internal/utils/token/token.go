package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const sessionTTL = 12 * time.Hour

var ErrBadToken = errors.New("invalid session token")

// Session identifies the authenticated caller of one request. It is passed
// explicitly into every service call; there is no process-global current
// user, so concurrent sessions never see each other.
type Session struct {
	Username string
	Role     string
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func Make(username, role, secret string) (string, error) {
	c := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func Parse(raw, secret string) (*Session, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	return &Session{Username: c.Subject, Role: c.Role}, nil
}

// FromHeader reads the bearer token of the current request.
func FromHeader(c echo.Context, secret string) (*Session, error) {
	raw := c.Request().Header.Get(echo.HeaderAuthorization)
	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return nil, ErrBadToken
	}
	return Parse(raw, secret)
}
