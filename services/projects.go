package services

import (
	"context"
	"strings"

	"github.com/CrowderSoup/rosy-workroom/database"
	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/sirupsen/logrus"
)

type ProjectStore interface {
	ProjectGetter
	CreateProject(ctx context.Context, p *database.Project) error
	ListProjectsForUser(ctx context.Context, userID int64, username string) ([]database.Project, error)
	UpdateProject(ctx context.Context, p *database.Project) error
	DeleteProject(ctx context.Context, id int64) error
}

type ProjectInput struct {
	Name        *string   `json:"name"`
	Tags        *[]string `json:"tags"`
	Members     *[]string `json:"members"`
	DueDate     *string   `json:"dueDate"`
	Description *string   `json:"description"`
}

// ProjectService manages project settings. Members can read a project;
// only the owner may change or delete it.
type ProjectService struct {
	projects ProjectStore
	gate     *AccessGate
	users    *AssigneeValidator
}

func NewProjectService(projects ProjectStore, gate *AccessGate, users *AssigneeValidator) *ProjectService {
	return &ProjectService{projects: projects, gate: gate, users: users}
}

func (s *ProjectService) ListProjects(ctx context.Context, caller Caller) ([]database.Project, error) {
	return s.projects.ListProjectsForUser(ctx, caller.ID, caller.Username)
}

func (s *ProjectService) GetProject(ctx context.Context, caller Caller, id int64) (*database.Project, error) {
	return s.gate.Authorize(ctx, id, caller)
}

func (s *ProjectService) CreateProject(ctx context.Context, caller Caller, in ProjectInput) (*database.Project, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("project name is required")
	}

	p := &database.Project{OwnerID: caller.ID, OwnerUsername: caller.Username}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.projects.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"project": p.ID,
		"owner":   caller.Username,
	}).Info("Project created")
	return p, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, caller Caller, id int64, in ProjectInput) (*database.Project, error) {
	p, err := s.gate.AuthorizeOwner(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.projects.UpdateProject(ctx, p); err != nil {
		return nil, err
	}
	return s.projects.GetProject(ctx, id)
}

func (s *ProjectService) DeleteProject(ctx context.Context, caller Caller, id int64) error {
	if _, err := s.gate.AuthorizeOwner(ctx, id, caller); err != nil {
		return err
	}
	if err := s.projects.DeleteProject(ctx, id); err != nil {
		return err
	}
	logging.Logger.WithField("project", id).Info("Project deleted")
	return nil
}

func (s *ProjectService) apply(ctx context.Context, p *database.Project, in ProjectInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return invalid("project name cannot be blank")
		}
		p.Name = name
	}
	if in.Members != nil {
		requested := make([]string, 0, len(*in.Members))
		for _, m := range *in.Members {
			if !strings.EqualFold(strings.TrimSpace(m), p.OwnerUsername) {
				requested = append(requested, m)
			}
		}
		members, err := s.users.ValidateMembers(ctx, requested)
		if err != nil {
			return err
		}
		p.Members = members
	}
	if in.Tags != nil {
		p.Tags = cleanList(*in.Tags)
	}
	if in.DueDate != nil {
		p.DueDate = strings.TrimSpace(*in.DueDate)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	return nil
}
