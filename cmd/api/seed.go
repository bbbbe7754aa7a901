package main

import (
	"context"
	"errors"

	"go-blindbox-store/internal/config"
	"go-blindbox-store/internal/model"
	"go-blindbox-store/internal/repository"

	"go.uber.org/zap"
)

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and admin user if they don't exist
func seedPrivilegesRolesAndAdmin(
	ctx context.Context,
	cfg config.SeedConfig,
	privilegeRepo repository.PrivilegeRepository,
	roleRepo repository.RoleRepository,
	userRepo repository.UserRepository,
	log *zap.Logger,
) {
	log = log.Named("seed")

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		log.Warn("failed to seed privileges", zap.Error(err))
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.Warn("failed to seed roles", zap.Error(err))
	}

	// 3. Assign default privileges to roles that have none
	allPrivileges, err := privilegeRepo.FindAll(ctx)
	if err != nil {
		log.Warn("failed to load privileges", zap.Error(err))
		return
	}
	for _, code := range []string{model.RoleAdmin, model.RoleEditor} {
		role, err := roleRepo.FindByCode(ctx, code)
		if err != nil || len(role.Privileges) > 0 {
			continue
		}
		grant := model.PrivilegesForRole(code, allPrivileges)
		if err := roleRepo.AssignPrivileges(ctx, role, grant); err != nil {
			log.Warn("failed to assign role privileges", zap.String("role", code), zap.Error(err))
			continue
		}
		log.Info("role privileges assigned", zap.String("role", code), zap.Int("privileges", len(grant)))
	}

	// 4. Create default admin user
	if cfg.AdminEmail == "" {
		return
	}
	_, err = userRepo.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrNotFound) {
		log.Warn("failed to look up admin user", zap.Error(err))
		return
	}

	adminRole, err := roleRepo.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		log.Warn("admin role missing", zap.Error(err))
		return
	}
	admin := &model.User{
		Email:      cfg.AdminEmail,
		FullName:   "Store Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.Stamp("system")
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Warn("failed to hash admin password", zap.Error(err))
		return
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Warn("failed to create admin user", zap.Error(err))
		return
	}
	log.Info("admin user created", zap.String("email", cfg.AdminEmail))
}
