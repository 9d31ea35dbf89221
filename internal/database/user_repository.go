package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordapi/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = "id, name, email, password, is_admin, active"

// GetByID returns a user by ID with roles loaded
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := DB.GetContext(ctx, &user, DB.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	if err := r.loadRoles(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns a user by email with roles loaded
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := DB.GetContext(ctx, &user, DB.Rebind("SELECT "+userColumns+" FROM users WHERE email = ?"), email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %v", err)
	}
	if err := r.loadRoles(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := DB.SelectContext(ctx, &users, "SELECT "+userColumns+" FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}
	return users, nil
}

// EmailTaken reports whether another user already uses the email.
// excludeID skips one user (for profile updates); pass 0 to check all.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM users WHERE email = ? AND id != ?")
	if err := DB.GetContext(ctx, &count, query, email, excludeID); err != nil {
		return false, fmt.Errorf("failed to check email: %v", err)
	}
	return count > 0, nil
}

// Create inserts a new user and links the given roles
func (r *UserRepository) Create(ctx context.Context, user *models.User, roleIDs []int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if DB.DriverName() == "postgres" {
		err = tx.QueryRowContext(ctx,
			"INSERT INTO users (name, email, password, is_admin, active) VALUES ($1, $2, $3, $4, $5) RETURNING id",
			user.Name, user.Email, user.Password, user.IsAdmin, true,
		).Scan(&user.ID)
		if err != nil {
			return fmt.Errorf("failed to create user: %v", err)
		}
	} else {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO users (name, email, password, is_admin, active) VALUES (?, ?, ?, ?, ?)",
			user.Name, user.Email, user.Password, user.IsAdmin, true,
		)
		if err != nil {
			return fmt.Errorf("failed to create user: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		user.ID = id
	}
	user.Active = true

	for _, roleID := range roleIDs {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO roles_users (user_id, role_id) VALUES (?, ?)"), user.ID, roleID); err != nil {
			return fmt.Errorf("failed to link role %d: %v", roleID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user: %v", err)
	}
	return nil
}

// UpdateProfile modifies a user's name and email
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, name, email string) error {
	query := DB.Rebind("UPDATE users SET name = ?, email = ? WHERE id = ?")
	if _, err := DB.ExecContext(ctx, query, name, email, id); err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// UpdatePassword replaces a user's password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := DB.Rebind("UPDATE users SET password = ? WHERE id = ?")
	if _, err := DB.ExecContext(ctx, query, passwordHash, id); err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	return nil
}

// UpdateRoles sets the admin flag and replaces the user's role links
func (r *UserRepository) UpdateRoles(ctx context.Context, id int64, isAdmin bool, roleIDs []int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE users SET is_admin = ? WHERE id = ?"), isAdmin, id); err != nil {
		return fmt.Errorf("failed to update admin flag: %v", err)
	}
	if roleIDs != nil {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM roles_users WHERE user_id = ?"), id); err != nil {
			return fmt.Errorf("failed to clear user roles: %v", err)
		}
		for _, roleID := range roleIDs {
			if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO roles_users (user_id, role_id) VALUES (?, ?)"), id, roleID); err != nil {
				return fmt.Errorf("failed to link role %d: %v", roleID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit role update: %v", err)
	}
	return nil
}

// Delete removes a user; role links and history rows cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	if _, err := DB.ExecContext(ctx, DB.Rebind("DELETE FROM users WHERE id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete user: %v", err)
	}
	return nil
}

// CountAdmins returns how many admin users exist besides excludeID
func (r *UserRepository) CountAdmins(ctx context.Context, excludeID int64) (int, error) {
	var count int
	query := DB.Rebind("SELECT COUNT(*) FROM users WHERE is_admin AND id != ?")
	if err := DB.GetContext(ctx, &count, query, excludeID); err != nil {
		return 0, fmt.Errorf("failed to count admins: %v", err)
	}
	return count, nil
}

func (r *UserRepository) loadRoles(ctx context.Context, user *models.User) error {
	query := DB.Rebind(`
		SELECT r.id, r.name, r.app_id FROM roles r
		JOIN roles_users ru ON ru.role_id = r.id
		WHERE ru.user_id = ?
		ORDER BY r.id
	`)
	var roles []models.Role
	if err := DB.SelectContext(ctx, &roles, query, user.ID); err != nil {
		return fmt.Errorf("failed to get roles for user: %v", err)
	}
	user.Roles = roles
	return nil
}
