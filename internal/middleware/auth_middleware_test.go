package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/service"
	"go-blindbox-store/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	service.AuthService
	users map[string]*model.User
	err   error
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	user, ok := s.users[token]
	if !ok {
		return nil, jwt.ErrInvalidToken
	}
	return user, nil
}

func editor() *model.User {
	return &model.User{
		BaseModel:  model.BaseModel{ID: uuid.New()},
		Email:      "editor@example.com",
		FullName:   "Eddie",
		Role:       &model.Role{Code: model.RoleEditor},
		IsActive:   true,
		Privileges: []model.Privilege{{Code: "stock:adjust"}, {Code: "code:resolve"}},
	}
}

func newApp(auth service.AuthService, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{RequireAuth(auth)}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"id":   c.Locals("user_id"),
			"role": c.Locals("user_role"),
		})
	})
	app.Get("/", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	auth := &stubAuth{users: map[string]*model.User{"good": editor()}}
	app := newApp(auth)

	assert.Equal(t, 401, get(t, app, ""))
	assert.Equal(t, 401, get(t, app, "Token good"))
	assert.Equal(t, 401, get(t, app, "Bearer bad"))
	assert.Equal(t, 200, get(t, app, "Bearer good"))

	auth.err = service.ErrSessionReplaced
	assert.Equal(t, 401, get(t, app, "Bearer good"))
}

func TestAuthMessage(t *testing.T) {
	assert.Equal(t, "Invalid or expired token", authMessage(jwt.ErrInvalidToken))
	assert.Equal(t, service.ErrSessionTimeout.Error(), authMessage(service.ErrSessionTimeout))
	assert.Equal(t, "User not found", authMessage(service.ErrUserNotFound))
}

func TestRequireRoleAndPrivilege(t *testing.T) {
	auth := &stubAuth{users: map[string]*model.User{"good": editor()}}

	assert.Equal(t, 200, get(t, newApp(auth, RequireRole(model.StaffRoles...)), "Bearer good"))
	assert.Equal(t, 403, get(t, newApp(auth, RequireRole(model.RoleAdmin)), "Bearer good"))

	assert.Equal(t, 200, get(t, newApp(auth, RequirePrivilege("stock:adjust")), "Bearer good"))
	assert.Equal(t, 403, get(t, newApp(auth, RequirePrivilege("user:delete")), "Bearer good"))

	assert.Equal(t, 200, get(t, newApp(auth, RequireAnyPrivilege("user:delete", "code:resolve")), "Bearer good"))
	assert.Equal(t, 403, get(t, newApp(auth, RequireAnyPrivilege("user:delete", "order:update")), "Bearer good"))
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	app := fiber.New()
	app.Get("/", RequestTimeout(time.Second), func(c *fiber.Ctx) error {
		_, ok := c.UserContext().Deadline()
		return c.JSON(fiber.Map{"deadline": ok})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body struct {
		Deadline bool `json:"deadline"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Deadline)
}
