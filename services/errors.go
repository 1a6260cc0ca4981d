package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CrowderSoup/rosy-workroom/database"
)

var (
	ErrNotFound           = database.ErrNotFound
	ErrConflict           = database.ErrDuplicate
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRateLimited        = errors.New("too many login attempts")
	ErrInvalidToken       = errors.New("invalid token")
)

// ValidationError describes a rejected request field
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UserListError rejects a whole assignee or member list. MissingUsers holds
// names with no account; InvalidAssignees holds names that exist but may not
// be assigned.
type UserListError struct {
	Reason           string
	MissingUsers     []string
	InvalidAssignees []string
}

func (e *UserListError) Error() string {
	var parts []string
	if len(e.MissingUsers) > 0 {
		parts = append(parts, "unknown users: "+strings.Join(e.MissingUsers, ", "))
	}
	if len(e.InvalidAssignees) > 0 {
		parts = append(parts, "not collaborators: "+strings.Join(e.InvalidAssignees, ", "))
	}
	if len(parts) == 0 {
		return e.Reason
	}
	return e.Reason + " (" + strings.Join(parts, "; ") + ")"
}

func (e *UserListError) Unwrap() error { return ErrValidation }
