package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/sirupsen/logrus"
)

type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations are applied in order, once each. Append only.
var migrations = []migration{
	{
		version: 1,
		name:    "create users and projects",
		stmts: []string{
			`CREATE TABLE users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE COLLATE NOCASE,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE TABLE projects (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				owner_id INTEGER NOT NULL REFERENCES users(id),
				name TEXT NOT NULL,
				tags TEXT NOT NULL DEFAULT '[]',
				members TEXT NOT NULL DEFAULT '[]',
				due_date TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_projects_owner ON projects(owner_id)`,
		},
	},
	{
		version: 2,
		name:    "create kanban columns and cards",
		stmts: []string{
			`CREATE TABLE kanban_columns (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				project_id INTEGER REFERENCES projects(id) ON DELETE CASCADE,
				user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
				slug TEXT NOT NULL,
				name TEXT NOT NULL,
				position INTEGER NOT NULL,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE UNIQUE INDEX idx_columns_scope_key
				ON kanban_columns(COALESCE(project_id, 0), COALESCE(user_id, 0), slug)`,
			`CREATE TABLE kanban_cards (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				project_id INTEGER REFERENCES projects(id) ON DELETE CASCADE,
				user_id INTEGER NOT NULL REFERENCES users(id),
				title TEXT NOT NULL,
				label TEXT NOT NULL DEFAULT '',
				tags TEXT NOT NULL DEFAULT '[]',
				priority TEXT NOT NULL DEFAULT '',
				due_date TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				checklist_groups TEXT NOT NULL DEFAULT '[]',
				assignees TEXT NOT NULL DEFAULT '[]',
				attachments TEXT NOT NULL DEFAULT '[]',
				status TEXT NOT NULL DEFAULT 'todo',
				position INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_cards_bucket ON kanban_cards(project_id, user_id, status, position)`,
		},
	},
	{
		version: 3,
		name:    "seed global default columns",
		stmts: []string{
			`INSERT INTO kanban_columns (project_id, user_id, slug, name, position) VALUES
				(NULL, NULL, 'todo', 'To Do', 1),
				(NULL, NULL, 'inprogress', 'In Progress', 2),
				(NULL, NULL, 'done', 'Done', 3)`,
		},
	},
}

// Migrate applies every migration newer than the recorded schema version
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
		logging.Logger.WithFields(logrus.Fields{
			"version": m.version,
			"name":    m.name,
		}).Info("Applied migration")
	}

	return nil
}

// SchemaVersion returns the highest applied migration version
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.version, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
	}
	return nil
}
