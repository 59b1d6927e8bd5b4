package ports

import (
	"context"
	"io"

	"sales-cockpit/internal/domain"
)

// ProfileRepository reads and mutates identity profiles, including the
// dashboard binding attribute.
type ProfileRepository interface {
	GetByID(ctx context.Context, profileID string) (domain.Profile, error)
	// ListWithDashboards returns every profile bound to a dashboard.
	ListWithDashboards(ctx context.Context) ([]domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Update(ctx context.Context, profile domain.Profile) error
}

// RoleRepository reads and replaces role assignments. An identity may
// carry zero or more role rows.
type RoleRepository interface {
	ListByIdentity(ctx context.Context, profileID string) ([]domain.Role, error)
	Replace(ctx context.Context, profileID string, roles []domain.Role) error
}

// SummaryRepository persists structured call summaries per owner.
type SummaryRepository interface {
	Put(ctx context.Context, summary domain.CallSummary) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.CallSummary, error)
}

// EmbedIssuer mints signed, time-limited embed URLs for one dashboard.
type EmbedIssuer interface {
	IssueEmbedURL(dashboardID int) (string, error)
}

// ChatClient runs one chat-completion round trip and returns the
// assistant message content.
type ChatClient interface {
	Complete(ctx context.Context, messages []domain.ChatMessage) (string, error)
}

// Transcriber converts an uploaded audio stream to text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Logger is the minimal structured logging surface consumed across the
// service.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}
