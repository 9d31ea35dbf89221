package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordapi/pkg/models"
)

// SetRepository handles database operations for word sets
type SetRepository struct{}

// NewSetRepository creates a new repository instance
func NewSetRepository() *SetRepository {
	return &SetRepository{}
}

// GetAll returns all sets with their words
func (r *SetRepository) GetAll(ctx context.Context) ([]models.Set, error) {
	var sets []models.Set
	if err := DB.SelectContext(ctx, &sets, "SELECT id, name FROM sets ORDER BY name"); err != nil {
		return nil, fmt.Errorf("failed to get sets: %v", err)
	}
	for i := range sets {
		words, err := r.WordsBySetID(ctx, sets[i].ID)
		if err != nil {
			return nil, err
		}
		sets[i].Words = words
	}
	return sets, nil
}

// GetByID returns a set by ID with its words
func (r *SetRepository) GetByID(ctx context.Context, id int64) (*models.Set, error) {
	var set models.Set
	err := DB.GetContext(ctx, &set, DB.Rebind("SELECT id, name FROM sets WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get set by ID: %v", err)
	}
	words, err := r.WordsBySetID(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	set.Words = words
	return &set, nil
}

// GetByName returns a set by its name, or ErrNotFound
func (r *SetRepository) GetByName(ctx context.Context, name string) (*models.Set, error) {
	var set models.Set
	err := DB.GetContext(ctx, &set, DB.Rebind("SELECT id, name FROM sets WHERE name = ?"), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get set by name: %v", err)
	}
	return &set, nil
}

// WordsBySetID returns the words linked to a set
func (r *SetRepository) WordsBySetID(ctx context.Context, setID int64) ([]models.Word, error) {
	var words []models.Word
	query := DB.Rebind(`
		SELECT w.id, w.name, w.translation, COALESCE(w.annotation, '') AS annotation
		FROM words w
		JOIN sets_words sw ON sw.word_id = w.id
		WHERE sw.set_id = ?
		ORDER BY w.name
	`)
	if err := DB.SelectContext(ctx, &words, query, setID); err != nil {
		return nil, fmt.Errorf("failed to get words for set: %v", err)
	}
	return words, nil
}

// Create inserts a new set and links the given words
func (r *SetRepository) Create(ctx context.Context, set *models.Set, wordIDs []int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if DB.DriverName() == "postgres" {
		err = tx.QueryRowContext(ctx, "INSERT INTO sets (name) VALUES ($1) RETURNING id", set.Name).Scan(&set.ID)
		if err != nil {
			return fmt.Errorf("failed to create set: %v", err)
		}
	} else {
		result, err := tx.ExecContext(ctx, "INSERT INTO sets (name) VALUES (?)", set.Name)
		if err != nil {
			return fmt.Errorf("failed to create set: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		set.ID = id
	}

	if err := replaceSetWords(ctx, tx, set.ID, wordIDs, false); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set: %v", err)
	}
	return nil
}

// Update modifies a set's name; a non-nil wordIDs replaces its word links
func (r *SetRepository) Update(ctx context.Context, set *models.Set, wordIDs []int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE sets SET name = ? WHERE id = ?"), set.Name, set.ID); err != nil {
		return fmt.Errorf("failed to update set: %v", err)
	}
	if wordIDs != nil {
		if err := replaceSetWords(ctx, tx, set.ID, wordIDs, true); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit set update: %v", err)
	}
	return nil
}

// Delete removes a set; word links cascade
func (r *SetRepository) Delete(ctx context.Context, id int64) error {
	if _, err := DB.ExecContext(ctx, DB.Rebind("DELETE FROM sets WHERE id = ?"), id); err != nil {
		return fmt.Errorf("failed to delete set: %v", err)
	}
	return nil
}

func replaceSetWords(ctx context.Context, tx execer, setID int64, wordIDs []int64, clear bool) error {
	if clear {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM sets_words WHERE set_id = ?"), setID); err != nil {
			return fmt.Errorf("failed to clear set words: %v", err)
		}
	}
	for _, wordID := range wordIDs {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO sets_words (set_id, word_id) VALUES (?, ?)"), setID, wordID); err != nil {
			return fmt.Errorf("failed to link word %d: %v", wordID, err)
		}
	}
	return nil
}
