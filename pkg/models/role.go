package models

// App groups roles that belong to one part of the API
type App struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Role grants a named permission scoped to an app
type Role struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	AppID int64  `json:"app_id" db:"app_id"`
}
