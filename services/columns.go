package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CrowderSoup/rosy-workroom/database"
	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/sirupsen/logrus"
)

type ColumnStore interface {
	ListColumns(ctx context.Context, scope database.Scope) ([]database.Column, error)
	InsertColumns(ctx context.Context, scope database.Scope, columns []database.Column) ([]database.Column, error)
	UpdateColumn(ctx context.Context, col *database.Column) error
	DeleteColumn(ctx context.Context, scope database.Scope, key string) (int64, error)
}

// ColumnRegistry manages the ordered workflow columns of each scope
type ColumnRegistry struct {
	store ColumnStore
}

func NewColumnRegistry(store ColumnStore) *ColumnRegistry {
	return &ColumnRegistry{store: store}
}

// DefaultColumns is the fallback board used when even the global template
// rows are missing.
func DefaultColumns() []database.Column {
	return []database.Column{
		{Key: database.StatusTodo, Name: "To Do", Position: 1},
		{Key: database.StatusInProgress, Name: "In Progress", Position: 2},
		{Key: database.StatusDone, Name: "Done", Position: 3},
	}
}

// ListColumns returns the scope's columns in board order. A user or project
// scope without columns of its own is seeded from the global defaults.
func (r *ColumnRegistry) ListColumns(ctx context.Context, scope database.Scope) ([]database.Column, error) {
	columns, err := r.store.ListColumns(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 || scope.IsGlobal() {
		return columns, nil
	}
	return r.seed(ctx, scope)
}

func (r *ColumnRegistry) seed(ctx context.Context, scope database.Scope) ([]database.Column, error) {
	template, err := r.store.ListColumns(ctx, database.GlobalScope())
	if err != nil {
		return nil, err
	}
	if len(template) == 0 {
		template = DefaultColumns()
	}

	seeded := make([]database.Column, len(template))
	for i, col := range template {
		seeded[i] = database.Column{Key: col.Key, Name: col.Name, Position: col.Position}
	}

	inserted, err := r.store.InsertColumns(ctx, scope, seeded)
	if errors.Is(err, ErrConflict) {
		// Another request seeded the scope first.
		return r.store.ListColumns(ctx, scope)
	}
	if err != nil {
		return nil, err
	}

	logging.Logger.WithField("scope", scope.String()).Debug("Seeded default columns")
	return inserted, nil
}

// CreateColumn appends a new column named name to the scope
func (r *ColumnRegistry) CreateColumn(ctx context.Context, scope database.Scope, name string) (*database.Column, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("column name is required")
	}

	existing, err := r.ListColumns(ctx, scope)
	if err != nil {
		return nil, err
	}

	col := database.Column{
		Key:      UniqueColumnKey(Slugify(name), existing),
		Name:     name,
		Position: maxColumnPosition(existing) + 1,
	}
	inserted, err := r.store.InsertColumns(ctx, scope, []database.Column{col})
	if err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"scope": scope.String(),
		"key":   col.Key,
	}).Info("Column created")
	return &inserted[0], nil
}

// UpdateColumn renames and/or repositions a column. Nil arguments are left
// unchanged.
func (r *ColumnRegistry) UpdateColumn(ctx context.Context, scope database.Scope, key string, name *string, position *int) (*database.Column, error) {
	col, err := r.find(ctx, scope, key)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, invalid("column name cannot be blank")
		}
		col.Name = trimmed
	}
	if position != nil {
		col.Position = *position
	}

	if err := r.store.UpdateColumn(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// DeleteColumn removes a column after moving its cards back to "todo"
func (r *ColumnRegistry) DeleteColumn(ctx context.Context, scope database.Scope, key string) error {
	if _, err := r.find(ctx, scope, key); err != nil {
		return err
	}

	moved, err := r.store.DeleteColumn(ctx, scope, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("column %q: %w", key, ErrNotFound)
		}
		return err
	}

	logging.Logger.WithFields(logrus.Fields{
		"scope":      scope.String(),
		"key":        key,
		"reassigned": moved,
	}).Info("Column deleted")
	return nil
}

func (r *ColumnRegistry) find(ctx context.Context, scope database.Scope, key string) (*database.Column, error) {
	columns, err := r.ListColumns(ctx, scope)
	if err != nil {
		return nil, err
	}
	for i := range columns {
		if columns[i].Key == key {
			return &columns[i], nil
		}
	}
	return nil, fmt.Errorf("column %q in %s: %w", key, scope, ErrNotFound)
}

// Slugify lowercases name and collapses every run of characters outside
// [a-z0-9] into a single dash.
func Slugify(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return "column"
	}
	return b.String()
}

// UniqueColumnKey returns slug, or slug-N when slug is taken in the scope.
// N starts at one more than the number of keys sharing the slug prefix.
func UniqueColumnKey(slug string, existing []database.Column) string {
	taken := make(map[string]bool, len(existing))
	prefixed := 0
	for _, col := range existing {
		taken[col.Key] = true
		if strings.HasPrefix(col.Key, slug) {
			prefixed++
		}
	}
	if !taken[slug] {
		return slug
	}

	for n := prefixed + 1; ; n++ {
		candidate := fmt.Sprintf("%s-%d", slug, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

func maxColumnPosition(columns []database.Column) int {
	highest := 0
	for _, col := range columns {
		if col.Position > highest {
			highest = col.Position
		}
	}
	return highest
}
