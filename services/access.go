package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CrowderSoup/rosy-workroom/database"
)

// Caller is the authenticated user behind a request
type Caller struct {
	ID       int64
	Username string
}

type ProjectGetter interface {
	GetProject(ctx context.Context, id int64) (*database.Project, error)
}

// AccessGate decides who may read and operate on a project's board
type AccessGate struct {
	projects ProjectGetter
}

func NewAccessGate(projects ProjectGetter) *AccessGate {
	return &AccessGate{projects: projects}
}

// IsCollaborator reports whether the caller owns the project or is listed
// among its members.
func IsCollaborator(p *database.Project, caller Caller) bool {
	if p.OwnerID == caller.ID {
		return true
	}
	for _, m := range p.Members {
		if strings.EqualFold(m, caller.Username) {
			return true
		}
	}
	return false
}

// CanAccess reports whether the caller may use the project's board. A
// missing project is simply inaccessible; store failures are returned.
func (g *AccessGate) CanAccess(ctx context.Context, projectID int64, caller Caller) (bool, error) {
	_, err := g.Authorize(ctx, projectID, caller)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}

// Authorize loads the project and checks the caller is a collaborator
func (g *AccessGate) Authorize(ctx context.Context, projectID int64, caller Caller) (*database.Project, error) {
	p, err := g.projects.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("project %d: %w", projectID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load project %d: %w", projectID, err)
	}
	if !IsCollaborator(p, caller) {
		return nil, fmt.Errorf("project %d: %w", projectID, ErrForbidden)
	}
	return p, nil
}

// AuthorizeOwner is Authorize restricted to the project owner. Members get
// ErrForbidden.
func (g *AccessGate) AuthorizeOwner(ctx context.Context, projectID int64, caller Caller) (*database.Project, error) {
	p, err := g.Authorize(ctx, projectID, caller)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != caller.ID {
		return nil, fmt.Errorf("only the owner may change project %d: %w", projectID, ErrForbidden)
	}
	return p, nil
}

// BoardScope resolves a projectId parameter into a board scope. Zero means
// the caller's personal board.
func (g *AccessGate) BoardScope(ctx context.Context, projectID int64, caller Caller) (database.Scope, *database.Project, error) {
	if projectID == 0 {
		return database.UserScope(caller.ID), nil, nil
	}
	p, err := g.Authorize(ctx, projectID, caller)
	if err != nil {
		return database.Scope{}, nil, err
	}
	return database.ProjectScope(p.ID), p, nil
}
