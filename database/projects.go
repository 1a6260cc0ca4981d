package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const projectColumns = `p.id, p.owner_id, u.username, p.name, p.tags, p.members, p.due_date, p.description,
	(SELECT COUNT(*) FROM kanban_cards c WHERE c.project_id = p.id), p.created_at`

func (s *Store) CreateProject(ctx context.Context, p *Project) error {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return err
	}
	members, err := encodeList(p.Members)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (owner_id, name, tags, members, due_date, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.Name, tags, members, p.DueDate, p.Description)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}

	created, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.owner_id
		WHERE p.id = ?`, id)
	return scanProject(row)
}

// ListProjectsForUser returns projects the user owns or is a member of
func (s *Store) ListProjectsForUser(ctx context.Context, userID int64, username string) ([]Project, error) {
	// Membership lives in a JSON array, so it is filtered here rather than in SQL.
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+`
		FROM projects p JOIN users u ON u.id = p.owner_id
		ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		if p.OwnerID == userID || containsFold(p.Members, username) {
			projects = append(projects, *p)
		}
	}
	return projects, rows.Err()
}

func (s *Store) UpdateProject(ctx context.Context, p *Project) error {
	tags, err := encodeList(p.Tags)
	if err != nil {
		return err
	}
	members, err := encodeList(p.Members)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, tags = ?, members = ?, due_date = ?, description = ?
		WHERE id = ?`,
		p.Name, tags, members, p.DueDate, p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireAffected(res)
}

// DeleteProject removes a project. Its cards and columns cascade.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(res)
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		p       Project
		tags    string
		members string
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.OwnerUsername, &p.Name, &tags, &members,
		&p.DueDate, &p.Description, &p.TaskCount, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}

	if p.Tags, err = decodeList[string](tags); err != nil {
		return nil, err
	}
	if p.Members, err = decodeList[string](members); err != nil {
		return nil, err
	}
	return &p, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func containsFold(list []string, name string) bool {
	for _, v := range list {
		if strings.EqualFold(v, name) {
			return true
		}
	}
	return false
}
