package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"sales-cockpit/internal/domain"
	"sales-cockpit/internal/ports"
)

// DashboardService resolves which dashboards a caller may view and
// mints embed URLs for them. It is stateless: every call re-reads the
// identity store and issues an independent token.
type DashboardService struct {
	profiles ports.ProfileRepository
	roles    ports.RoleRepository
	issuer   ports.EmbedIssuer
	logger   ports.Logger
}

func NewDashboardService(profiles ports.ProfileRepository, roles ports.RoleRepository, issuer ports.EmbedIssuer, logger ports.Logger) *DashboardService {
	return &DashboardService{profiles: profiles, roles: roles, issuer: issuer, logger: logger}
}

// ResolveAccess computes the caller's visible dashboard bindings,
// selects the initial one and mints its embed URL. Admins see every
// binding; everyone else sees at most their own.
func (s *DashboardService) ResolveAccess(ctx context.Context, callerID string) (domain.DashboardAccess, error) {
	entries, isAdmin, err := s.visibleProfiles(ctx, callerID)
	if err != nil {
		return domain.DashboardAccess{}, err
	}

	access := domain.DashboardAccess{
		Profiles:         entries,
		InitialProfileID: callerID,
		IsAdminView:      isAdmin,
	}

	initial := -1
	for idx, entry := range entries {
		if entry.ProfileID == callerID {
			initial = idx
			break
		}
	}
	if initial < 0 && len(entries) > 0 {
		initial = 0
	}
	if initial < 0 {
		// No binding anywhere: a valid, empty result rather than an
		// error. The UI distinguishes this from auth failures.
		s.logger.Debug(ctx, "caller has no visible dashboards", "caller_id", callerID)
		return access, nil
	}

	access.InitialProfileID = entries[initial].ProfileID
	access.InitialDashboardID = entries[initial].DashboardID
	url, err := s.issuer.IssueEmbedURL(entries[initial].DashboardID)
	if err != nil {
		return domain.DashboardAccess{}, err
	}
	access.InitialEmbedURL = url
	s.logger.Debug(ctx, "dashboard access resolved",
		"caller_id", callerID, "visible", len(entries), "admin_view", isAdmin)
	return access, nil
}

// RefreshEmbedURL mints a fresh embed URL for a dashboard the caller
// may view. Each call is independent; the client keeps only the
// latest URL.
func (s *DashboardService) RefreshEmbedURL(ctx context.Context, callerID string, dashboardID int) (string, error) {
	if dashboardID <= 0 {
		return "", fmt.Errorf("%w: dashboard id must be positive", domain.ErrInvalidInput)
	}
	entries, _, err := s.visibleProfiles(ctx, callerID)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.DashboardID == dashboardID {
			return s.issuer.IssueEmbedURL(dashboardID)
		}
	}
	s.logger.Warn(ctx, "embed refresh denied", "caller_id", callerID, "dashboard_id", dashboardID)
	return "", fmt.Errorf("%w: dashboard %d is not visible to caller", domain.ErrForbidden, dashboardID)
}

// visibleProfiles lists the dashboard bindings the caller may see,
// sorted by label ascending case-insensitively. The role-based filter
// is applied here even though the store also restricts rows: the
// store's access control is the second layer, not the only one.
func (s *DashboardService) visibleProfiles(ctx context.Context, callerID string) ([]domain.DashboardProfile, bool, error) {
	if callerID == "" {
		return nil, false, domain.ErrNotAuthenticated
	}
	assignments, err := s.roles.ListByIdentity(ctx, callerID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: list roles: %v", domain.ErrUpstreamQuery, err)
	}
	role := domain.EffectiveRole(assignments)
	isAdmin := role.IsAdmin()

	var candidates []domain.Profile
	if isAdmin {
		candidates, err = s.profiles.ListWithDashboards(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("%w: list dashboard profiles: %v", domain.ErrUpstreamQuery, err)
		}
	} else {
		own, err := s.profiles.GetByID(ctx, callerID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, false, fmt.Errorf("%w: get profile: %v", domain.ErrUpstreamQuery, err)
		}
		if err == nil {
			candidates = []domain.Profile{own}
		}
	}

	entries := make([]domain.DashboardProfile, 0, len(candidates))
	for _, profile := range candidates {
		if !profile.HasDashboard() {
			continue
		}
		if !isAdmin && profile.ID != callerID {
			continue
		}
		entries = append(entries, domain.DashboardProfile{
			ProfileID:   profile.ID,
			Label:       profile.Label(),
			DashboardID: profile.DashboardID,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Label) < strings.ToLower(entries[j].Label)
	})
	return entries, isAdmin, nil
}
