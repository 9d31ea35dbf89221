package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/wordapi/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetAll returns all words with their tags
func (r *WordRepository) GetAll(ctx context.Context) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, "SELECT id, name, translation, COALESCE(annotation, '') AS annotation FROM words ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get words: %v", err)
	}
	for i := range words {
		tags, err := r.tagsForWord(ctx, words[i].ID)
		if err != nil {
			return nil, err
		}
		words[i].Tags = tags
	}
	return words, nil
}

// GetByID returns a word by ID with its tags
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	query := DB.Rebind("SELECT id, name, translation, COALESCE(annotation, '') AS annotation FROM words WHERE id = ?")
	err := DB.GetContext(ctx, &word, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %v", err)
	}
	tags, err := r.tagsForWord(ctx, word.ID)
	if err != nil {
		return nil, err
	}
	word.Tags = tags
	return &word, nil
}

// AllIDs returns the set of existing word IDs, used for referential validation
func (r *WordRepository) AllIDs(ctx context.Context) (map[int64]bool, error) {
	var ids []int64
	if err := DB.SelectContext(ctx, &ids, "SELECT id FROM words"); err != nil {
		return nil, fmt.Errorf("failed to get word ids: %v", err)
	}
	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return known, nil
}

// Create inserts a new word and links the given tags
func (r *WordRepository) Create(ctx context.Context, word *models.Word, tagIDs []int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if DB.DriverName() == "postgres" {
		err = tx.QueryRowContext(ctx,
			"INSERT INTO words (name, translation, annotation) VALUES ($1, $2, $3) RETURNING id",
			word.Name, word.Translation, word.Annotation,
		).Scan(&word.ID)
		if err != nil {
			return fmt.Errorf("failed to create word: %v", err)
		}
	} else {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO words (name, translation, annotation) VALUES (?, ?, ?)",
			word.Name, word.Translation, word.Annotation,
		)
		if err != nil {
			return fmt.Errorf("failed to create word: %v", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID: %v", err)
		}
		word.ID = id
	}

	if err := replaceWordTags(ctx, tx, word.ID, tagIDs, false); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit word: %v", err)
	}
	return nil
}

// Update modifies an existing word; a non-nil tagIDs replaces its tag links
func (r *WordRepository) Update(ctx context.Context, word *models.Word, tagIDs []int64) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	query := tx.Rebind("UPDATE words SET name = ?, translation = ?, annotation = ? WHERE id = ?")
	if _, err := tx.ExecContext(ctx, query, word.Name, word.Translation, word.Annotation, word.ID); err != nil {
		return fmt.Errorf("failed to update word: %v", err)
	}

	if tagIDs != nil {
		if err := replaceWordTags(ctx, tx, word.ID, tagIDs, true); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit word update: %v", err)
	}
	return nil
}

// Delete removes a word; history rows cascade
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	_, err := DB.ExecContext(ctx, DB.Rebind("DELETE FROM words WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %v", err)
	}
	return nil
}

func (r *WordRepository) tagsForWord(ctx context.Context, wordID int64) ([]models.Tag, error) {
	var tags []models.Tag
	query := DB.Rebind(`
		SELECT t.id, t.name FROM tags t
		JOIN tags_words tw ON tw.tag_id = t.id
		WHERE tw.word_id = ?
		ORDER BY t.name
	`)
	if err := DB.SelectContext(ctx, &tags, query, wordID); err != nil {
		return nil, fmt.Errorf("failed to get tags for word: %v", err)
	}
	return tags, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Rebind(query string) string
}

func replaceWordTags(ctx context.Context, tx execer, wordID int64, tagIDs []int64, clear bool) error {
	if clear {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM tags_words WHERE word_id = ?"), wordID); err != nil {
			return fmt.Errorf("failed to clear word tags: %v", err)
		}
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO tags_words (word_id, tag_id) VALUES (?, ?)"), wordID, tagID); err != nil {
			return fmt.Errorf("failed to link tag %d: %v", tagID, err)
		}
	}
	return nil
}
