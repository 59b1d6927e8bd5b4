// Package auth verifies identity-provider session tokens. The
// provider issues bearer JWTs; depending on deployment these are
// HS256 tokens signed with a shared secret or RS256 tokens verified
// against the provider's JWKS endpoint.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextKeyUserID is the echo context key holding the verified
// caller identity.
const ContextKeyUserID = "user_id"

// Verifier checks a session token and returns the subject identity.
type Verifier interface {
	Verify(tokenString string) (string, error)
}

// SecretVerifier validates HS256 access tokens signed with the
// identity provider's shared JWT secret.
type SecretVerifier struct {
	secret []byte
}

func NewSecretVerifier(secret string) (*SecretVerifier, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret is not configured")
	}
	return &SecretVerifier{secret: []byte(secret)}, nil
}

func (v *SecretVerifier) Verify(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// JWKSVerifier validates RS256 access tokens against the provider's
// published key set.
type JWKSVerifier struct {
	cache *jwkCache
}

func NewJWKSVerifier(jwksURL string) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("auth: jwks url is not configured")
	}
	return &JWKSVerifier{cache: newJWKCache(jwksURL, 15*time.Minute)}, nil
}

func (v *JWKSVerifier) Verify(tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("missing kid")
		}
		return v.cache.keyForKid(kid)
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// SessionMiddleware extracts the bearer token, verifies it and stores
// the caller identity on the request context.
func SessionMiddleware(v Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing authorization token"})
			}
			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization token"})
			}
			sub, err := v.Verify(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			c.Set(ContextKeyUserID, sub)
			return next(c)
		}
	}
}
