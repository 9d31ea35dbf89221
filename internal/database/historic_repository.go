package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/wordapi/pkg/models"
)

// ErrUnknownWord is returned when a historic row references a word id
// that does not exist at insertion time.
var ErrUnknownWord = errors.New("word does not exist")

// HistoricRepository handles database operations for review history.
// History rows are append-only: there is no update or delete here.
type HistoricRepository struct{}

// NewHistoricRepository creates a new repository instance
func NewHistoricRepository() *HistoricRepository {
	return &HistoricRepository{}
}

// CreateBatch inserts all events for one user in a single transaction.
// Either every row is committed or none. Each event's word id is checked
// against the words table inside the transaction even though the API
// validates it beforehand. Events without a date get the ingestion date.
func (r *HistoricRepository) CreateBatch(ctx context.Context, events []models.Historic, userID int64) ([]models.Historic, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	existsQuery := tx.Rebind("SELECT COUNT(*) FROM words WHERE id = ?")
	insertQuery := tx.Rebind("INSERT INTO history_hits (id_user, id_word, hit, date) VALUES (?, ?, ?, ?)")

	today := models.DateOnly(time.Now())
	created := make([]models.Historic, 0, len(events))

	for _, event := range events {
		var count int
		if err := tx.GetContext(ctx, &count, existsQuery, event.WordID); err != nil {
			return nil, fmt.Errorf("failed to check word %d: %v", event.WordID, err)
		}
		if count == 0 {
			return nil, fmt.Errorf("word ID %d: %w", event.WordID, ErrUnknownWord)
		}

		event.UserID = userID
		if event.Date.IsZero() {
			event.Date = today
		} else {
			event.Date = models.DateOnly(event.Date)
		}

		if DB.DriverName() == "postgres" {
			err = tx.QueryRowContext(ctx,
				"INSERT INTO history_hits (id_user, id_word, hit, date) VALUES ($1, $2, $3, $4) RETURNING id",
				event.UserID, event.WordID, event.Hit, event.Date,
			).Scan(&event.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to insert historic: %v", err)
			}
		} else {
			result, err := tx.ExecContext(ctx, insertQuery, event.UserID, event.WordID, event.Hit, event.Date)
			if err != nil {
				return nil, fmt.Errorf("failed to insert historic: %v", err)
			}
			id, err := result.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("failed to get last insert ID: %v", err)
			}
			event.ID = id
		}

		created = append(created, event)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit historic batch: %v", err)
	}
	return created, nil
}

// EventsByUserAndRange returns the user's events with date in [start, end]
// inclusive, in unspecified order. A zero start means no lower bound.
// Rows carry the word display name via a join with the words table.
func (r *HistoricRepository) EventsByUserAndRange(ctx context.Context, userID int64, start, end time.Time) ([]models.Historic, error) {
	query := `
		SELECT h.id, h.id_user, h.id_word, h.hit, h.date, w.name AS word_name
		FROM history_hits h
		JOIN words w ON w.id = h.id_word
		WHERE h.id_user = ? AND h.date <= ?
	`
	args := []interface{}{userID, models.DateOnly(end)}
	if !start.IsZero() {
		query += " AND h.date >= ?"
		args = append(args, models.DateOnly(start))
	}

	var events []models.Historic
	err := DB.SelectContext(ctx, &events, DB.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get historics: %v", err)
	}
	return events, nil
}

// CountByUser returns the total number of events stored for a user
func (r *HistoricRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, DB.Rebind("SELECT COUNT(*) FROM history_hits WHERE id_user = ?"), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count historics: %v", err)
	}
	return count, nil
}
