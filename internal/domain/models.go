package domain

import (
	"strings"
	"time"
)

// Profile is one authenticated identity as stored by the identity
// provider, optionally bound to a single embeddable dashboard.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DashboardID int       `json:"dashboard_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HasDashboard reports whether the profile is bound to a dashboard.
// Dashboard ids are positive integers; zero means unbound.
func (p Profile) HasDashboard() bool {
	return p.DashboardID > 0
}

// Label is the display name shown in the profile picker: full name,
// falling back to the email address, falling back to a fixed literal.
func (p Profile) Label() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name != "" {
		return name
	}
	if p.Email != "" {
		return p.Email
	}
	return "unknown profile"
}

// DashboardProfile is one entry of the resolver result: an identity,
// its display label and its bound dashboard.
type DashboardProfile struct {
	ProfileID   string `json:"profile_id"`
	Label       string `json:"label"`
	DashboardID int    `json:"dashboard_id"`
}

// DashboardAccess is the full resolution result for one caller. Either
// all fields are populated consistently or the resolver returned an
// error; there is no partial form.
type DashboardAccess struct {
	Profiles           []DashboardProfile `json:"profiles"`
	InitialProfileID   string             `json:"initial_profile_id"`
	InitialDashboardID int                `json:"initial_dashboard_id,omitempty"`
	InitialEmbedURL    string             `json:"initial_embed_url,omitempty"`
	IsAdminView        bool               `json:"is_admin_view"`
}

// UserAccount combines a profile with its role assignments, as shown
// in the admin user list.
type UserAccount struct {
	Profile Profile `json:"profile"`
	Roles   []Role  `json:"roles"`
}

// ChatMessage is one turn of a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	ChatRoleSystem = "system"
	ChatRoleUser   = "user"
)

// CallSummary is a persisted, structured record of one recorded sales
// call.
type CallSummary struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Transcript  string    `json:"transcript"`
	Summary     string    `json:"summary"`
	Customer    string    `json:"customer"`
	ActionItems []string  `json:"action_items"`
	Sentiment   string    `json:"sentiment"`
	CreatedAt   time.Time `json:"created_at"`
}
