// Package metabase mints signed embed URLs for the BI provider's
// static embedding endpoint. A token is a capability: anyone holding
// the URL before expiry can view the dashboard, so tokens stay
// short-lived and are never persisted or logged.
package metabase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sales-cockpit/internal/domain"
)

const (
	embedPath     = "/embed/dashboard/"
	displayParams = "#bordered=true&titled=true"
)

// EmbedResource names the single dashboard a token grants access to.
type EmbedResource struct {
	Dashboard int `json:"dashboard"`
}

// EmbedClaims is the exact payload shape the provider verifies:
// resource, params and exp, nothing else.
type EmbedClaims struct {
	Resource EmbedResource     `json:"resource"`
	Params   map[string]string `json:"params"`
	jwt.RegisteredClaims
}

// Issuer produces embed URLs signed with the shared secret known only
// to this backend and the provider.
type Issuer struct {
	siteURL  string
	secret   []byte
	validity time.Duration

	now func() time.Time
}

// NewIssuer constructs an Issuer. Both the site URL and the secret
// must come from configuration; empty values are refused here as a
// second line of defense behind the config loader.
func NewIssuer(siteURL, secret string, validity time.Duration) (*Issuer, error) {
	if strings.TrimSpace(siteURL) == "" {
		return nil, errors.New("metabase: site URL is not configured")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("metabase: signing secret is not configured")
	}
	if validity <= 0 {
		return nil, errors.New("metabase: token validity must be positive")
	}
	return &Issuer{
		siteURL:  strings.TrimRight(siteURL, "/"),
		secret:   []byte(secret),
		validity: validity,
		now:      time.Now,
	}, nil
}

// IssueEmbedURL mints a fresh token with the configured validity and
// assembles the embeddable URL. Each call produces an independent
// token; nothing is cached.
func (i *Issuer) IssueEmbedURL(dashboardID int) (string, error) {
	return i.IssueEmbedURLWithValidity(dashboardID, i.validity)
}

// IssueEmbedURLWithValidity is IssueEmbedURL with an explicit validity
// window, for callers that want shorter-lived tokens.
func (i *Issuer) IssueEmbedURLWithValidity(dashboardID int, validity time.Duration) (string, error) {
	if dashboardID <= 0 {
		return "", fmt.Errorf("%w: dashboard id must be positive", domain.ErrInvalidInput)
	}
	if validity <= 0 {
		return "", fmt.Errorf("%w: token validity must be positive", domain.ErrInvalidInput)
	}
	claims := EmbedClaims{
		Resource: EmbedResource{Dashboard: dashboardID},
		Params:   map[string]string{},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(i.now().Add(validity)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign embed token: %w", err)
	}
	return i.siteURL + embedPath + token + displayParams, nil
}
