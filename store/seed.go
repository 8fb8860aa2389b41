package store

import (
	"context"
	"fmt"

	"dserve-api/models"

	"golang.org/x/crypto/bcrypt"
)

var defaultUsers = []struct {
	username string
	display  string
	role     models.UserRole
}{
	{"cashier", "Cashier", models.RoleCashier},
	{"owner", "Owner", models.RoleOwner},
	{"admin", "Administrator", models.RoleAdmin},
}

// SeedUsers creates the cashier, owner and admin accounts when the users table
// is empty. It returns how many accounts were created.
func SeedUsers(ctx context.Context, s Users, password string) (int, error) {
	n, err := s.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	for _, u := range defaultUsers {
		user := &models.User{
			Username:     u.username,
			PasswordHash: string(hash),
			Role:         u.role,
			DisplayName:  u.display,
			IsActive:     true,
		}
		if err := s.CreateUser(ctx, user); err != nil {
			return 0, fmt.Errorf("create user %s: %w", u.username, err)
		}
	}
	return len(defaultUsers), nil
}
