package service

import (
	"context"
	"testing"
	"time"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/notify"
	"go-blindbox-store/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	users    *fakeUsers
	roles    *fakeRoles
	recorder *notify.Recorder
	auth     AuthService
	admin    UserService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.roles = newFakeRoles()
	s.users = newFakeUsers(s.roles)
	s.recorder = &notify.Recorder{}
	tokens := jwt.NewManager("test-secret", time.Hour, "blindbox-test")
	s.auth = NewAuthService(s.users, s.roles, tokens, s.recorder, 30*time.Minute, zap.NewNop())
	s.admin = NewUserService(s.users, fakePrivileges{}, s.roles, zap.NewNop())
}

func (s *AuthServiceTestSuite) register(email string) *LoginResponse {
	resp, err := s.auth.Register(s.ctx, &RegisterRequest{
		Email:    email,
		Password: "secret123",
		FullName: "Mai Tran",
	})
	s.Require().NoError(err)
	return resp
}

func (s *AuthServiceTestSuite) TestRegisterSignsInAsShopper() {
	resp := s.register("  Mai@Example.com ")

	s.NotEmpty(resp.Token)
	s.Equal("mai@example.com", resp.User.Email)
	s.Require().NotNil(resp.Role)
	s.Equal(model.RoleUser, resp.Role.Code)
	s.Empty(resp.Privileges)

	user, err := s.auth.Authenticate(s.ctx, resp.Token)
	s.Require().NoError(err)
	s.Equal(resp.User.ID, user.ID)
	s.True(user.HasRole(model.RoleUser))
}

func (s *AuthServiceTestSuite) TestRegisterDuplicateEmail() {
	s.register("mai@example.com")

	_, err := s.auth.Register(s.ctx, &RegisterRequest{Email: "MAI@example.com", Password: "another1", FullName: "Mai"})
	s.ErrorIs(err, ErrEmailExists)
	s.ErrorIs(err, ErrConflict)
}

func (s *AuthServiceTestSuite) TestRegisterValidation() {
	_, err := s.auth.Register(s.ctx, &RegisterRequest{Email: "not-an-email", Password: "secret123", FullName: "Mai"})
	s.ErrorIs(err, ErrValidation)

	_, err = s.auth.Register(s.ctx, &RegisterRequest{Email: "mai@example.com", Password: "123", FullName: "Mai"})
	s.ErrorIs(err, ErrValidation)
}

func (s *AuthServiceTestSuite) TestLoginRejectsBadCredentials() {
	s.register("mai@example.com")

	_, err := s.auth.Login(s.ctx, "mai@example.com", "wrong-password")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.auth.Login(s.ctx, "nobody@example.com", "secret123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLoginRejectsInactiveUser() {
	resp := s.register("mai@example.com")
	s.Require().NoError(s.users.mutate(resp.User.ID, func(u *model.User) { u.IsActive = false }))

	_, err := s.auth.Login(s.ctx, "mai@example.com", "secret123")
	s.ErrorIs(err, ErrUserInactive)

	_, err = s.auth.Authenticate(s.ctx, resp.Token)
	s.ErrorIs(err, ErrUserInactive)
}

func (s *AuthServiceTestSuite) TestNewLoginReplacesOldSession() {
	first := s.register("mai@example.com")

	second, err := s.auth.Login(s.ctx, "mai@example.com", "secret123")
	s.Require().NoError(err)

	_, err = s.auth.Authenticate(s.ctx, first.Token)
	s.ErrorIs(err, ErrSessionReplaced)

	_, err = s.auth.Authenticate(s.ctx, second.Token)
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestIdleSessionTimesOut() {
	resp := s.register("mai@example.com")
	stale := time.Now().Add(-time.Hour)
	s.Require().NoError(s.users.mutate(resp.User.ID, func(u *model.User) { u.LastSeenAt = &stale }))

	_, err := s.auth.Authenticate(s.ctx, resp.Token)
	s.ErrorIs(err, ErrSessionTimeout)

	s.Require().NoError(s.auth.Heartbeat(s.ctx, resp.User.ID))
	_, err = s.auth.Authenticate(s.ctx, resp.Token)
	s.NoError(err)
	s.Equal([]string{"online"}, s.recorder.Actions())
}

func (s *AuthServiceTestSuite) TestAuthenticateRejectsGarbage() {
	_, err := s.auth.Authenticate(s.ctx, "")
	s.ErrorIs(err, jwt.ErrMissingToken)

	_, err = s.auth.Authenticate(s.ctx, "not.a.token")
	s.ErrorIs(err, jwt.ErrInvalidToken)
}

func (s *AuthServiceTestSuite) TestResetPasswordSignsOutEverywhere() {
	resp := s.register("mai@example.com")

	err := s.auth.ResetPassword(s.ctx, "mai@example.com", "wrong", "newsecret")
	s.ErrorIs(err, ErrWrongPassword)
	err = s.auth.ResetPassword(s.ctx, "mai@example.com", "secret123", "abc")
	s.ErrorIs(err, ErrValidation)

	s.Require().NoError(s.auth.ResetPassword(s.ctx, "mai@example.com", "secret123", "newsecret"))

	_, err = s.auth.Authenticate(s.ctx, resp.Token)
	s.ErrorIs(err, ErrSessionReplaced)
	_, err = s.auth.Login(s.ctx, "mai@example.com", "secret123")
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = s.auth.Login(s.ctx, "mai@example.com", "newsecret")
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestStaffAccountCarriesRolePrivileges() {
	adminRole, err := s.roles.FindByCode(s.ctx, model.RoleAdmin)
	s.Require().NoError(err)

	created, err := s.admin.CreateUser(s.ctx, &CreateUserRequest{
		Email:    "boss@example.com",
		Password: "secret123",
		FullName: "Boss",
		RoleID:   adminRole.ID,
	}, "system")
	s.Require().NoError(err)
	s.Equal(model.RoleAdmin, created.RoleCode())

	resp, err := s.auth.Login(s.ctx, "boss@example.com", "secret123")
	s.Require().NoError(err)
	s.Len(resp.Privileges, len(model.DefaultPrivileges))

	me, err := s.auth.Me(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Contains(me.Privileges, "stock:adjust")
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func TestUserServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	roles := newFakeRoles()
	users := newFakeUsers(roles)
	svc := NewUserService(users, fakePrivileges{}, roles, zap.NewNop())

	userRole, err := roles.FindByCode(ctx, model.RoleUser)
	require.NoError(t, err)
	editorRole, err := roles.FindByCode(ctx, model.RoleEditor)
	require.NoError(t, err)

	created, err := svc.CreateUser(ctx, &CreateUserRequest{
		Email:    "staff@example.com",
		Password: "secret123",
		FullName: "Staff",
		RoleID:   userRole.ID,
	}, "admin")
	require.NoError(t, err)
	assert.Empty(t, created.Privileges)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{
		Email: "staff@example.com", Password: "secret123", FullName: "Dup", RoleID: userRole.ID,
	}, "admin")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.CreateUser(ctx, &CreateUserRequest{
		Email: "x@example.com", Password: "secret123", FullName: "X", RoleID: 99,
	}, "admin")
	assert.ErrorIs(t, err, ErrValidation)

	bad := "31/12/1990"
	_, err = svc.CreateUser(ctx, &CreateUserRequest{
		Email: "y@example.com", Password: "secret123", FullName: "Y", RoleID: userRole.ID, BirthDate: &bad,
	}, "admin")
	assert.ErrorIs(t, err, ErrValidation)

	// promotion picks up the editor grant
	updated, err := svc.UpdateUser(ctx, created.ID, &UpdateUserRequest{
		Email:    "staff@example.com",
		FullName: "Staff Member",
		RoleID:   editorRole.ID,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, updated.RoleCode())
	assert.True(t, updated.HasPrivilege("stock:adjust"))
	assert.False(t, updated.HasPrivilege("user:delete"))

	withCodes, err := svc.UpdateUserPrivileges(ctx, created.ID, []string{"code:resolve"}, "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"code:resolve"}, withCodes.PrivilegeCodes())

	_, err = svc.UpdateUserPrivileges(ctx, created.ID, []string{"code:resolve", "bogus"}, "admin")
	assert.ErrorIs(t, err, ErrValidation)

	all, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	assert.ErrorIs(t, svc.DeleteUser(ctx, created.ID, created.ID.String()), ErrValidation)
	require.NoError(t, svc.DeleteUser(ctx, created.ID, "admin"))
	assert.ErrorIs(t, svc.DeleteUser(ctx, created.ID, "admin"), ErrNotFound)

	_, err = svc.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
