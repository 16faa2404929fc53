// Package bootstrap seeds an empty database with its first administrator.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/security"
	"github.com/purbarunBC13/team-tracker/store"
)

// SeedAdmin creates an admin account when no users exist yet. It reports
// whether an account was created.
func SeedAdmin(ctx context.Context, users store.UserStore, email, password string, logger *log.Logger) (bool, error) {
	count, err := users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if !security.IsPasswordValid(password) {
		return false, fmt.Errorf("bootstrap admin password does not meet the password policy")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := models.NewUser("Administrator", strings.ToLower(strings.TrimSpace(email)), hash, models.RoleAdmin, "")
	if err := users.CreateUser(ctx, &admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	logger.Printf("Inserted initial admin %s", admin.Email)
	return true, nil
}
