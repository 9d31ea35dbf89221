package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordapi/pkg/models"
)

// RoleRepository handles database operations for apps and roles
type RoleRepository struct{}

// NewRoleRepository creates a new repository instance
func NewRoleRepository() *RoleRepository {
	return &RoleRepository{}
}

// GetAll returns all roles
func (r *RoleRepository) GetAll(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := DB.SelectContext(ctx, &roles, "SELECT id, name, app_id FROM roles ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get roles: %v", err)
	}
	return roles, nil
}

// AllIDs returns the set of existing role IDs
func (r *RoleRepository) AllIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	if err := DB.SelectContext(ctx, &ids, "SELECT id FROM roles"); err != nil {
		return nil, fmt.Errorf("failed to get role ids: %v", err)
	}
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return known, nil
}

// Seed creates the fixed apps and their CRUD roles if missing.
// Safe to run repeatedly.
func (r *RoleRepository) Seed(ctx context.Context) error {
	fixtures := map[string][]string{
		"words":     {"create_word", "delete_word", "update_word"},
		"set_words": {"create_set_words", "delete_set_words", "update_set_words"},
	}
	for appName, roleNames := range fixtures {
		appID, err := r.ensureApp(ctx, appName)
		if err != nil {
			return err
		}
		for _, roleName := range roleNames {
			if err := r.ensureRole(ctx, roleName, appID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *RoleRepository) ensureApp(ctx context.Context, name string) (int64, error) {
	var id int64
	err := DB.GetContext(ctx, &id, DB.Rebind("SELECT id FROM apps WHERE name = ?"), name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to get app: %v", err)
	}

	if DB.DriverName() == "postgres" {
		err = DB.QueryRowContext(ctx, "INSERT INTO apps (name) VALUES ($1) RETURNING id", name).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to create app: %v", err)
		}
		return id, nil
	}
	result, err := DB.ExecContext(ctx, "INSERT INTO apps (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("failed to create app: %v", err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %v", err)
	}
	return id, nil
}

func (r *RoleRepository) ensureRole(ctx context.Context, name string, appID int64) error {
	var count int
	if err := DB.GetContext(ctx, &count, DB.Rebind("SELECT COUNT(*) FROM roles WHERE name = ?"), name); err != nil {
		return fmt.Errorf("failed to check role: %v", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := DB.ExecContext(ctx, DB.Rebind("INSERT INTO roles (name, app_id) VALUES (?, ?)"), name, appID); err != nil {
		return fmt.Errorf("failed to create role: %v", err)
	}
	return nil
}
