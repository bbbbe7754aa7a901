package service

import (
	"context"
	"sync"
	"time"

	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
	roles *fakeRoles
}

func newFakeUsers(roles *fakeRoles) *fakeUsers {
	return &fakeUsers{users: map[uuid.UUID]model.User{}, roles: roles}
}

func (f *fakeUsers) hydrate(u model.User) *model.User {
	if u.RoleID != nil {
		if r, err := f.roles.FindByID(context.Background(), *u.RoleID); err == nil {
			u.Role = r
		}
	}
	return &u
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return f.hydrate(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return f.hydrate(u), nil
}

func (f *fakeUsers) FindAll(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *f.hydrate(u))
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stored := *user
	stored.Role = nil
	f.users[user.ID] = stored
	return nil
}

func (f *fakeUsers) Update(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored := *user
	stored.Role = nil
	stored.Privileges = existing.Privileges
	f.users[user.ID] = stored
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) UpdatePrivileges(_ context.Context, userID uuid.UUID, privileges []model.Privilege) error {
	return f.mutate(userID, func(u *model.User) { u.Privileges = privileges })
}

func (f *fakeUsers) UpdateTokenVersion(_ context.Context, userID uuid.UUID, version string) error {
	return f.mutate(userID, func(u *model.User) {
		now := time.Now()
		u.TokenVersion = version
		u.LastSeenAt = &now
	})
}

func (f *fakeUsers) UpdateLastSeen(_ context.Context, userID uuid.UUID) error {
	return f.mutate(userID, func(u *model.User) {
		now := time.Now()
		u.LastSeenAt = &now
	})
}

func (f *fakeUsers) mutate(id uuid.UUID, fn func(u *model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	f.users[id] = u
	return nil
}

type fakeRoles struct {
	roles []model.Role
}

// newFakeRoles seeds the default roles with their default privileges.
func newFakeRoles() *fakeRoles {
	all := make([]model.Privilege, len(model.DefaultPrivileges))
	for i, p := range model.DefaultPrivileges {
		p.ID = uint(i + 1)
		all[i] = p
	}
	roles := make([]model.Role, len(model.DefaultRoles))
	for i, r := range model.DefaultRoles {
		r.ID = uint(i + 1)
		r.Privileges = model.PrivilegesForRole(r.Code, all)
		roles[i] = r
	}
	return &fakeRoles{roles: roles}
}

func (f *fakeRoles) FindAll(context.Context) ([]model.Role, error) {
	return f.roles, nil
}

func (f *fakeRoles) FindByID(_ context.Context, id uint) (*model.Role, error) {
	for _, r := range f.roles {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRoles) FindByCode(_ context.Context, code string) (*model.Role, error) {
	for _, r := range f.roles {
		if r.Code == code {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRoles) AssignPrivileges(_ context.Context, role *model.Role, privileges []model.Privilege) error {
	role.Privileges = privileges
	return nil
}

func (f *fakeRoles) SeedDefaults(context.Context) error {
	return nil
}

type fakePrivileges struct{}

func (fakePrivileges) FindByCodes(_ context.Context, codes []string) ([]model.Privilege, error) {
	var out []model.Privilege
	for _, p := range model.DefaultPrivileges {
		for _, c := range codes {
			if p.Code == c {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (fakePrivileges) FindAll(context.Context) ([]model.Privilege, error) {
	return model.DefaultPrivileges, nil
}

func (fakePrivileges) SeedDefaults(context.Context) error {
	return nil
}
