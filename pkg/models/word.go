package models

// Word represents an English word to be learned
type Word struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Translation string `json:"translation" db:"translation"`
	Annotation  string `json:"annotation" db:"annotation"`
	Tags        []Tag  `json:"tags,omitempty" db:"-"`
}

// Tag labels words so they can be filtered by theme
type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Set is a named collection of words to study together
type Set struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Words []Word `json:"words,omitempty" db:"-"`
}
