package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sales-cockpit/internal/domain"
	"sales-cockpit/internal/ports"
)

// UserPatch carries the admin-editable profile fields. Nil pointers
// mean "leave unchanged"; a zero DashboardID clears the binding.
type UserPatch struct {
	FirstName   *string
	LastName    *string
	DashboardID *int
	Roles       *[]domain.Role
}

// UserService serves the caller's own account and, for admins, the
// user management operations.
type UserService struct {
	profiles ports.ProfileRepository
	roles    ports.RoleRepository
	logger   ports.Logger

	now func() time.Time
}

func NewUserService(profiles ports.ProfileRepository, roles ports.RoleRepository, logger ports.Logger) *UserService {
	return &UserService{profiles: profiles, roles: roles, logger: logger, now: time.Now}
}

func (s *UserService) Me(ctx context.Context, callerID string) (domain.UserAccount, error) {
	if callerID == "" {
		return domain.UserAccount{}, domain.ErrNotAuthenticated
	}
	profile, err := s.profiles.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserAccount{}, domain.ErrNotFound
		}
		return domain.UserAccount{}, fmt.Errorf("%w: get profile: %v", domain.ErrUpstreamQuery, err)
	}
	assignments, err := s.roles.ListByIdentity(ctx, callerID)
	if err != nil {
		return domain.UserAccount{}, fmt.Errorf("%w: list roles: %v", domain.ErrUpstreamQuery, err)
	}
	return domain.UserAccount{Profile: profile, Roles: assignments}, nil
}

func (s *UserService) ListUsers(ctx context.Context, callerID string) ([]domain.UserAccount, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list profiles: %v", domain.ErrUpstreamQuery, err)
	}
	accounts := make([]domain.UserAccount, 0, len(profiles))
	for _, profile := range profiles {
		assignments, err := s.roles.ListByIdentity(ctx, profile.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list roles: %v", domain.ErrUpstreamQuery, err)
		}
		accounts = append(accounts, domain.UserAccount{Profile: profile, Roles: assignments})
	}
	return accounts, nil
}

func (s *UserService) UpdateUser(ctx context.Context, callerID, targetID string, patch UserPatch) (domain.UserAccount, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return domain.UserAccount{}, err
	}
	if targetID == "" {
		return domain.UserAccount{}, fmt.Errorf("%w: target id is required", domain.ErrInvalidInput)
	}
	if patch.DashboardID != nil && *patch.DashboardID < 0 {
		return domain.UserAccount{}, fmt.Errorf("%w: dashboard id must not be negative", domain.ErrInvalidInput)
	}
	if patch.Roles != nil {
		for _, role := range *patch.Roles {
			if !domain.ValidRole(role) {
				return domain.UserAccount{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
			}
		}
	}

	profile, err := s.profiles.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserAccount{}, domain.ErrNotFound
		}
		return domain.UserAccount{}, fmt.Errorf("%w: get profile: %v", domain.ErrUpstreamQuery, err)
	}
	if patch.FirstName != nil {
		profile.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		profile.LastName = *patch.LastName
	}
	if patch.DashboardID != nil {
		profile.DashboardID = *patch.DashboardID
	}
	profile.UpdatedAt = s.now().UTC()

	if err := s.profiles.Update(ctx, profile); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserAccount{}, domain.ErrNotFound
		}
		return domain.UserAccount{}, fmt.Errorf("%w: update profile: %v", domain.ErrUpstreamQuery, err)
	}
	if patch.Roles != nil {
		if err := s.roles.Replace(ctx, targetID, *patch.Roles); err != nil {
			return domain.UserAccount{}, fmt.Errorf("%w: replace roles: %v", domain.ErrUpstreamQuery, err)
		}
	}
	s.logger.Info(ctx, "user updated", "caller_id", callerID, "target_id", targetID)

	assignments, err := s.roles.ListByIdentity(ctx, targetID)
	if err != nil {
		return domain.UserAccount{}, fmt.Errorf("%w: list roles: %v", domain.ErrUpstreamQuery, err)
	}
	return domain.UserAccount{Profile: profile, Roles: assignments}, nil
}

func (s *UserService) requireAdmin(ctx context.Context, callerID string) error {
	if callerID == "" {
		return domain.ErrNotAuthenticated
	}
	assignments, err := s.roles.ListByIdentity(ctx, callerID)
	if err != nil {
		return fmt.Errorf("%w: list roles: %v", domain.ErrUpstreamQuery, err)
	}
	if !domain.EffectiveRole(assignments).IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}
