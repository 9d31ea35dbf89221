package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database.
// DATABASE_DRIVER selects "sqlite3" (default) or "postgres";
// DATABASE_URL overrides the data source name.
func Connect() error {
	driver := os.Getenv("DATABASE_DRIVER")
	if driver == "" {
		driver = "sqlite3"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		if driver == "postgres" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
		dataDir := "data"
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %v", err)
		}
		dsn = filepath.Join(dataDir, "wordapi.db")
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == "sqlite3" {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %v", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	DB = db

	return initializeSchema(db)
}

// ConnectTest opens an in-memory SQLite database with the full schema,
// replacing the global connection. Used by tests only.
func ConnectTest() error {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open test database: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	DB = db
	return initializeSchema(db)
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// serial returns the auto-increment primary key clause for the active driver
func serial(db *sqlx.DB) string {
	if db.DriverName() == "postgres" {
		return "SERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	id := serial(db)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + id + `,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT false,
			active BOOLEAN NOT NULL DEFAULT true
		)`,
		`CREATE TABLE IF NOT EXISTS apps (
			id ` + id + `,
			name TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS roles (
			id ` + id + `,
			name TEXT UNIQUE NOT NULL,
			app_id INTEGER NOT NULL,
			FOREIGN KEY (app_id) REFERENCES apps(id)
		)`,
		`CREATE TABLE IF NOT EXISTS roles_users (
			user_id INTEGER NOT NULL,
			role_id INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (role_id) REFERENCES roles(id) ON DELETE CASCADE,
			UNIQUE (user_id, role_id)
		)`,
		`CREATE TABLE IF NOT EXISTS words (
			id ` + id + `,
			name TEXT UNIQUE NOT NULL,
			translation TEXT NOT NULL,
			annotation TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			id ` + id + `,
			name TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tags_words (
			word_id INTEGER NOT NULL,
			tag_id INTEGER NOT NULL,
			FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE,
			FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS sets (
			id ` + id + `,
			name TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sets_words (
			set_id INTEGER NOT NULL,
			word_id INTEGER NOT NULL,
			FOREIGN KEY (set_id) REFERENCES sets(id) ON DELETE CASCADE,
			FOREIGN KEY (word_id) REFERENCES words(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS history_hits (
			id ` + id + `,
			id_user INTEGER NOT NULL,
			id_word INTEGER NOT NULL,
			hit BOOLEAN NOT NULL,
			date DATE NOT NULL,
			FOREIGN KEY (id_user) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (id_word) REFERENCES words(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_hits_user_date ON history_hits (id_user, date)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}
