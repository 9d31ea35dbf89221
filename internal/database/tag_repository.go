package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordapi/pkg/models"
)

// TagRepository handles database operations for tags
type TagRepository struct{}

// NewTagRepository creates a new repository instance
func NewTagRepository() *TagRepository {
	return &TagRepository{}
}

// GetAll returns all tags
func (r *TagRepository) GetAll(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := DB.SelectContext(ctx, &tags, "SELECT id, name FROM tags ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to get tags: %v", err)
	}
	return tags, nil
}

// GetByID returns a tag by ID
func (r *TagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	var tag models.Tag
	err := DB.GetContext(ctx, &tag, DB.Rebind("SELECT id, name FROM tags WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag by ID: %v", err)
	}
	return &tag, nil
}

// GetByName returns a tag by its name, or ErrNotFound
func (r *TagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := DB.GetContext(ctx, &tag, DB.Rebind("SELECT id, name FROM tags WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag by name: %v", err)
	}
	return &tag, nil
}

// AllIDs returns the set of existing tag IDs
func (r *TagRepository) AllIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	if err := DB.SelectContext(ctx, &ids, "SELECT id FROM tags"); err != nil {
		return nil, fmt.Errorf("failed to get tag ids: %v", err)
	}
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return known, nil
}

// Create inserts a new tag
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if DB.DriverName() == "postgres" {
		err := DB.QueryRowContext(ctx, "INSERT INTO tags (name) VALUES ($1) RETURNING id", tag.Name).Scan(&tag.ID)
		if err != nil {
			return fmt.Errorf("failed to create tag: %v", err)
		}
		return nil
	}
	result, err := DB.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", tag.Name)
	if err != nil {
		return fmt.Errorf("failed to create tag: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %v", err)
	}
	tag.ID = id
	return nil
}

// Delete removes a tag; word links cascade
func (r *TagRepository) Delete(ctx context.Context, id int64) error {
	if _, err := DB.ExecContext(ctx, DB.Rebind("DELETE FROM tags WHERE id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete tag: %v", err)
	}
	return nil
}
