package models

import "time"

// Historic records one review outcome: a user hit or missed a word on a date.
// Rows are immutable once stored; the dashboard only inserts and aggregates.
type Historic struct {
	ID     int64     `json:"id" db:"id"`
	UserID int64     `json:"id_user" db:"id_user"`
	WordID int64     `json:"id_word" db:"id_word"`
	Hit    bool      `json:"hit" db:"hit"`
	Date   time.Time `json:"date" db:"date"`
	// WordName is filled by range queries that join the words table,
	// so aggregations can group by display name.
	WordName string `json:"-" db:"word_name"`
}

// DateOnly truncates a time to its calendar date in UTC
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
