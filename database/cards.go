package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const cardColumns = `id, project_id, user_id, title, label, tags, priority, due_date, description,
	checklist_groups, assignees, attachments, status, position, created_at, updated_at`

// encodedCard holds the JSON text of a card's list-valued fields
type encodedCard struct {
	tags, checklists, assignees, attachments string
}

func encodeCard(c *Card) (*encodedCard, error) {
	var (
		e   encodedCard
		err error
	)
	if e.tags, err = encodeList(c.Tags); err != nil {
		return nil, err
	}
	if e.checklists, err = encodeList(c.ChecklistGroups); err != nil {
		return nil, err
	}
	if e.assignees, err = encodeList(c.Assignees); err != nil {
		return nil, err
	}
	if e.attachments, err = encodeList(c.Attachments); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListCards returns every card on a scope's board ordered by status,
// then position, then id.
func (s *Store) ListCards(ctx context.Context, scope Scope) ([]Card, error) {
	where, args := cardScopeClause(scope)
	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+`
		FROM kanban_cards WHERE `+where+`
		ORDER BY status, position, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	cards := []Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, rows.Err()
}

func (s *Store) GetCard(ctx context.Context, id int64) (*Card, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM kanban_cards WHERE id = ?`, id)
	return scanCard(row)
}

// MaxCardPosition returns the highest position in a bucket, 0 when empty
func (s *Store) MaxCardPosition(ctx context.Context, scope Scope, status string) (int, error) {
	where, args := cardScopeClause(scope)
	var maxPos int
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) FROM kanban_cards WHERE "+where+" AND status = ?",
		append(args, status)...).Scan(&maxPos)
	if err != nil {
		return 0, fmt.Errorf("failed to read max position: %w", err)
	}
	return maxPos, nil
}

func (s *Store) InsertCard(ctx context.Context, c *Card) error {
	e, err := encodeCard(c)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO kanban_cards (project_id, user_id, title, label, tags, priority, due_date,
			description, checklist_groups, assignees, attachments, status, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableID(c.ProjectID), c.UserID, c.Title, c.Label, e.tags, c.Priority, c.DueDate,
		c.Description, e.checklists, e.assignees, e.attachments, c.Status, c.Position)
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read card id: %w", err)
	}

	created, err := s.GetCard(ctx, id)
	if err != nil {
		return err
	}
	*c = *created
	return nil
}

// UpdateCard writes every mutable field of the card
func (s *Store) UpdateCard(ctx context.Context, c *Card) error {
	e, err := encodeCard(c)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE kanban_cards SET title = ?, label = ?, tags = ?, priority = ?, due_date = ?,
			description = ?, checklist_groups = ?, assignees = ?, attachments = ?,
			status = ?, position = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Title, c.Label, e.tags, c.Priority, c.DueDate, c.Description, e.checklists,
		e.assignees, e.attachments, c.Status, c.Position, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return requireAffected(res)
}

// UpdateCardPlacement writes only a card's status and position. Each call
// is its own statement; a card deleted in the meantime is ignored.
func (s *Store) UpdateCardPlacement(ctx context.Context, id int64, status string, position int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE kanban_cards SET status = ?, position = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, position, id)
	if err != nil {
		return fmt.Errorf("failed to update card %d placement: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM kanban_cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return requireAffected(res)
}

func scanCard(row rowScanner) (*Card, error) {
	var (
		c         Card
		projectID sql.NullInt64
		raw       encodedCard
	)
	err := row.Scan(&c.ID, &projectID, &c.UserID, &c.Title, &c.Label, &raw.tags, &c.Priority,
		&c.DueDate, &c.Description, &raw.checklists, &raw.assignees, &raw.attachments,
		&c.Status, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan card: %w", err)
	}
	c.ProjectID = idPtr(projectID)

	if c.Tags, err = decodeList[string](raw.tags); err != nil {
		return nil, err
	}
	if c.ChecklistGroups, err = decodeList[ChecklistGroup](raw.checklists); err != nil {
		return nil, err
	}
	if c.Assignees, err = decodeList[string](raw.assignees); err != nil {
		return nil, err
	}
	if c.Attachments, err = decodeList[string](raw.attachments); err != nil {
		return nil, err
	}
	return &c, nil
}
