package services

import (
	"context"
	"strings"

	"github.com/CrowderSoup/rosy-workroom/database"
)

type UserDirectory interface {
	ExistingUsernames(ctx context.Context, names []string) (map[string]string, error)
}

// AssigneeValidator restricts card assignees to real accounts that
// collaborate on the card's project.
type AssigneeValidator struct {
	users UserDirectory
}

func NewAssigneeValidator(users UserDirectory) *AssigneeValidator {
	return &AssigneeValidator{users: users}
}

// DedupeUsernames trims names, drops blanks and removes case-insensitive
// duplicates. The first spelling seen wins.
func DedupeUsernames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Validate returns the deduplicated assignee list or a *UserListError that
// names every rejected user. Nothing is partially accepted.
func (v *AssigneeValidator) Validate(ctx context.Context, requested []string, project *database.Project) ([]string, error) {
	names := DedupeUsernames(requested)
	if len(names) == 0 {
		return names, nil
	}

	if project == nil {
		return nil, &UserListError{
			Reason:           "personal cards cannot have assignees",
			InvalidAssignees: names,
		}
	}

	allowed := make(map[string]bool, len(project.Members)+1)
	allowed[strings.ToLower(project.OwnerUsername)] = true
	for _, m := range project.Members {
		allowed[strings.ToLower(m)] = true
	}

	existing, err := v.users.ExistingUsernames(ctx, names)
	if err != nil {
		return nil, err
	}

	listErr := &UserListError{Reason: "assignees rejected"}
	for _, name := range names {
		key := strings.ToLower(name)
		switch {
		case existing[key] == "":
			listErr.MissingUsers = append(listErr.MissingUsers, name)
		case !allowed[key]:
			listErr.InvalidAssignees = append(listErr.InvalidAssignees, name)
		}
	}
	if len(listErr.MissingUsers) > 0 || len(listErr.InvalidAssignees) > 0 {
		return nil, listErr
	}
	return names, nil
}

// ValidateMembers checks that every member name has an account and returns
// the names in their stored casing.
func (v *AssigneeValidator) ValidateMembers(ctx context.Context, requested []string) ([]string, error) {
	names := DedupeUsernames(requested)
	if len(names) == 0 {
		return names, nil
	}

	existing, err := v.users.ExistingUsernames(ctx, names)
	if err != nil {
		return nil, err
	}

	resolved := make([]string, 0, len(names))
	var missing []string
	for _, name := range names {
		stored, ok := existing[strings.ToLower(name)]
		if !ok {
			missing = append(missing, name)
			continue
		}
		resolved = append(resolved, stored)
	}
	if len(missing) > 0 {
		return nil, &UserListError{Reason: "unknown project members", MissingUsers: missing}
	}
	return resolved, nil
}
