package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// columnScopeClause selects the column rows that belong to exactly one scope
func columnScopeClause(s Scope) (string, []any) {
	switch s.Kind {
	case ScopeUser:
		return "project_id IS NULL AND user_id = ?", []any{s.ID}
	case ScopeProject:
		return "project_id = ? AND user_id IS NULL", []any{s.ID}
	default:
		return "project_id IS NULL AND user_id IS NULL", nil
	}
}

// cardScopeClause selects the cards that live on a scope's board
func cardScopeClause(s Scope) (string, []any) {
	switch s.Kind {
	case ScopeUser:
		return "project_id IS NULL AND user_id = ?", []any{s.ID}
	case ScopeProject:
		return "project_id = ?", []any{s.ID}
	default:
		// The global template has no cards of its own.
		return "0", nil
	}
}

func scopeIDs(s Scope) (projectID, userID sql.NullInt64) {
	switch s.Kind {
	case ScopeUser:
		userID = sql.NullInt64{Int64: s.ID, Valid: true}
	case ScopeProject:
		projectID = sql.NullInt64{Int64: s.ID, Valid: true}
	}
	return projectID, userID
}

// ListColumns returns the columns registered in one scope, ordered by
// position with ties broken by creation order.
func (s *Store) ListColumns(ctx context.Context, scope Scope) ([]Column, error) {
	where, args := columnScopeClause(scope)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, slug, name, position, project_id, user_id
		FROM kanban_columns WHERE `+where+`
		ORDER BY position, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	columns := []Column{}
	for rows.Next() {
		col, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, *col)
	}
	return columns, rows.Err()
}

func (s *Store) GetColumn(ctx context.Context, scope Scope, key string) (*Column, error) {
	where, args := columnScopeClause(scope)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, slug, name, position, project_id, user_id
		FROM kanban_columns WHERE `+where+` AND slug = ?`, append(args, key)...)
	return scanColumn(row)
}

// InsertColumns adds columns to a scope in a single transaction
func (s *Store) InsertColumns(ctx context.Context, scope Scope, columns []Column) ([]Column, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	projectID, userID := scopeIDs(scope)
	inserted := make([]Column, 0, len(columns))
	for _, col := range columns {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO kanban_columns (project_id, user_id, slug, name, position)
			VALUES (?, ?, ?, ?, ?)`,
			projectID, userID, col.Key, col.Name, col.Position)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("column %q in %s: %w", col.Key, scope, ErrDuplicate)
			}
			return nil, fmt.Errorf("failed to insert column: %w", err)
		}
		if col.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("failed to read column id: %w", err)
		}
		col.ProjectID = idPtr(projectID)
		col.UserID = idPtr(userID)
		inserted = append(inserted, col)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

func (s *Store) UpdateColumn(ctx context.Context, col *Column) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE kanban_columns SET name = ?, position = ? WHERE id = ?", col.Name, col.Position, col.ID)
	if err != nil {
		return fmt.Errorf("failed to update column: %w", err)
	}
	return requireAffected(res)
}

// DeleteColumn moves every card of the scope sitting in the column back to
// "todo" and then removes the column row. It returns the number of cards
// that were reassigned.
func (s *Store) DeleteColumn(ctx context.Context, scope Scope, key string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cardWhere, cardArgs := cardScopeClause(scope)
	res, err := tx.ExecContext(ctx, `
		UPDATE kanban_cards SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE `+cardWhere+` AND status = ?`,
		append(append([]any{StatusTodo}, cardArgs...), key)...)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign cards: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	colWhere, colArgs := columnScopeClause(scope)
	res, err = tx.ExecContext(ctx,
		"DELETE FROM kanban_columns WHERE "+colWhere+" AND slug = ?", append(colArgs, key)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete column: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return moved, nil
}

func scanColumn(row rowScanner) (*Column, error) {
	var (
		col       Column
		projectID sql.NullInt64
		userID    sql.NullInt64
	)
	err := row.Scan(&col.ID, &col.Key, &col.Name, &col.Position, &projectID, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan column: %w", err)
	}
	col.ProjectID = idPtr(projectID)
	col.UserID = idPtr(userID)
	return &col, nil
}
