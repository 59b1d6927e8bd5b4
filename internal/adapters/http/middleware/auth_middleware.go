package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Mode string

const (
	// ModeNone disables session verification; local development only.
	ModeNone   Mode = "none"
	ModeSecret Mode = "secret"
	ModeJWKS   Mode = "jwks"
)

func ParseAuthMode(value string) (Mode, error) {
	switch mode := Mode(value); mode {
	case "":
		return ModeSecret, nil
	case ModeSecret, ModeJWKS, ModeNone:
		return mode, nil
	default:
		return "", errors.New("invalid auth mode")
	}
}

// AuthMiddleware selects the session verification middleware for the
// configured mode. Fail-closed: a verifying mode without a session
// middleware is a wiring error, not an open door.
func AuthMiddleware(mode Mode, session echo.MiddlewareFunc) (echo.MiddlewareFunc, error) {
	if mode != ModeNone && session == nil {
		return nil, errors.New("session middleware is required for auth mode " + string(mode))
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch mode {
			case ModeNone:
				return next(c)
			case ModeSecret, ModeJWKS:
				return session(next)(c)
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "invalid auth mode")
			}
		}
	}, nil
}
