package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sales-cockpit/internal/domain"
)

func newUserFixture() (*profileRepoMock, *roleRepoMock, *UserService) {
	profiles := new(profileRepoMock)
	roles := new(roleRepoMock)
	svc := NewUserService(profiles, roles, nopLogger{})
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return profiles, roles, svc
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestMe_ReturnsProfileWithRoles(t *testing.T) {
	profiles, roles, svc := newUserFixture()

	profiles.On("GetByID", mock.Anything, "u1").
		Return(domain.Profile{ID: "u1", Email: "jane@example.com"}, nil)
	roles.On("ListByIdentity", mock.Anything, "u1").
		Return([]domain.Role{domain.RoleSales}, nil)

	account, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", account.Profile.Email)
	assert.Equal(t, []domain.Role{domain.RoleSales}, account.Roles)
}

func TestMe_RequiresSession(t *testing.T) {
	_, _, svc := newUserFixture()

	_, err := svc.Me(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestMe_UnknownProfile(t *testing.T) {
	profiles, _, svc := newUserFixture()

	profiles.On("GetByID", mock.Anything, "ghost").
		Return(domain.Profile{}, domain.ErrNotFound)

	_, err := svc.Me(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListUsers_AdminOnly(t *testing.T) {
	_, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "u1").
		Return([]domain.Role{domain.RoleSales}, nil)

	_, err := svc.ListUsers(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListUsers_ReturnsAccountsWithRoles(t *testing.T) {
	profiles, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "admin-1").
		Return([]domain.Role{domain.RoleAdmin}, nil)
	profiles.On("List", mock.Anything).Return([]domain.Profile{
		{ID: "u1"},
		{ID: "u2"},
	}, nil)
	roles.On("ListByIdentity", mock.Anything, "u1").
		Return([]domain.Role{domain.RoleSales}, nil)
	roles.On("ListByIdentity", mock.Anything, "u2").
		Return([]domain.Role{}, nil)

	accounts, err := svc.ListUsers(context.Background(), "admin-1")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, []domain.Role{domain.RoleSales}, accounts[0].Roles)
	assert.Empty(t, accounts[1].Roles)
}

func TestListUsers_RoleLookupFailureSurfaces(t *testing.T) {
	_, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "admin-1").
		Return([]domain.Role(nil), errors.New("throttled"))

	_, err := svc.ListUsers(context.Background(), "admin-1")
	assert.ErrorIs(t, err, domain.ErrUpstreamQuery)
}

func TestUpdateUser_AppliesPatch(t *testing.T) {
	profiles, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "admin-1").
		Return([]domain.Role{domain.RoleSuperAdmin}, nil)
	profiles.On("GetByID", mock.Anything, "u1").
		Return(domain.Profile{ID: "u1", FirstName: "Jane", LastName: "Doe", DashboardID: 7}, nil)
	profiles.On("Update", mock.Anything, mock.MatchedBy(func(p domain.Profile) bool {
		return p.ID == "u1" && p.FirstName == "Janet" && p.LastName == "Doe" &&
			p.DashboardID == 42 && !p.UpdatedAt.IsZero()
	})).Return(nil)
	roles.On("Replace", mock.Anything, "u1", []domain.Role{domain.RoleSalesSupport}).Return(nil)
	roles.On("ListByIdentity", mock.Anything, "u1").
		Return([]domain.Role{domain.RoleSalesSupport}, nil)

	account, err := svc.UpdateUser(context.Background(), "admin-1", "u1", UserPatch{
		FirstName:   strPtr("Janet"),
		DashboardID: intPtr(42),
		Roles:       &[]domain.Role{domain.RoleSalesSupport},
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", account.Profile.FirstName)
	assert.Equal(t, 42, account.Profile.DashboardID)
	assert.Equal(t, []domain.Role{domain.RoleSalesSupport}, account.Roles)
	profiles.AssertExpectations(t)
	roles.AssertExpectations(t)
}

func TestUpdateUser_ClearsDashboardBinding(t *testing.T) {
	profiles, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "admin-1").
		Return([]domain.Role{domain.RoleAdmin}, nil)
	profiles.On("GetByID", mock.Anything, "u1").
		Return(domain.Profile{ID: "u1", DashboardID: 7}, nil)
	profiles.On("Update", mock.Anything, mock.MatchedBy(func(p domain.Profile) bool {
		return p.DashboardID == 0
	})).Return(nil)
	roles.On("ListByIdentity", mock.Anything, "u1").
		Return([]domain.Role{domain.RoleSales}, nil)

	account, err := svc.UpdateUser(context.Background(), "admin-1", "u1", UserPatch{DashboardID: intPtr(0)})
	require.NoError(t, err)
	assert.False(t, account.Profile.HasDashboard())
	roles.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUser_RejectsUnknownRole(t *testing.T) {
	profiles, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "admin-1").
		Return([]domain.Role{domain.RoleAdmin}, nil)

	_, err := svc.UpdateUser(context.Background(), "admin-1", "u1", UserPatch{
		Roles: &[]domain.Role{domain.Role("owner")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateUser_RejectsNegativeDashboard(t *testing.T) {
	_, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "admin-1").
		Return([]domain.Role{domain.RoleAdmin}, nil)

	_, err := svc.UpdateUser(context.Background(), "admin-1", "u1", UserPatch{DashboardID: intPtr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateUser_NonAdminForbidden(t *testing.T) {
	profiles, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "u1").
		Return([]domain.Role{domain.RoleSalesSupport}, nil)

	_, err := svc.UpdateUser(context.Background(), "u1", "u2", UserPatch{FirstName: strPtr("X")})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	profiles.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateUser_UnknownTarget(t *testing.T) {
	profiles, roles, svc := newUserFixture()

	roles.On("ListByIdentity", mock.Anything, "admin-1").
		Return([]domain.Role{domain.RoleAdmin}, nil)
	profiles.On("GetByID", mock.Anything, "ghost").
		Return(domain.Profile{}, domain.ErrNotFound)

	_, err := svc.UpdateUser(context.Background(), "admin-1", "ghost", UserPatch{FirstName: strPtr("X")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
