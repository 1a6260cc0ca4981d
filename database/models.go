package database

import (
	"fmt"
	"time"
)

// Default column keys every board starts with
const (
	StatusTodo       = "todo"
	StatusInProgress = "inprogress"
	StatusDone       = "done"
)

// DefaultStatuses lists the seeded column keys in board order
var DefaultStatuses = []string{StatusTodo, StatusInProgress, StatusDone}

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Project struct {
	ID            int64     `json:"id"`
	OwnerID       int64     `json:"ownerId"`
	OwnerUsername string    `json:"owner"`
	Name          string    `json:"name"`
	Tags          []string  `json:"tags"`
	Members       []string  `json:"members"`
	DueDate       string    `json:"dueDate"`
	Description   string    `json:"description"`
	TaskCount     int       `json:"taskCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ChecklistItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type ChecklistGroup struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Items []ChecklistItem `json:"items"`
}

type Card struct {
	ID              int64            `json:"id"`
	ProjectID       *int64           `json:"projectId"`
	UserID          int64            `json:"userId"`
	Title           string           `json:"title"`
	Label           string           `json:"label"`
	Tags            []string         `json:"tags"`
	Priority        string           `json:"priority"`
	DueDate         string           `json:"dueDate"`
	Description     string           `json:"description"`
	ChecklistGroups []ChecklistGroup `json:"checklistGroups"`
	Assignees       []string         `json:"assignees"`
	Attachments     []string         `json:"attachments"`
	Status          string           `json:"status"`
	Position        int              `json:"position"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type Column struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	Position  int    `json:"position"`
	ProjectID *int64 `json:"projectId"`
	UserID    *int64 `json:"userId"`
}

type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeUser
	ScopeProject
)

// Scope is the namespace a board lives in: the global default template,
// one user's personal board or one project's board.
type Scope struct {
	Kind ScopeKind
	ID   int64
}

func GlobalScope() Scope { return Scope{Kind: ScopeGlobal} }

func UserScope(userID int64) Scope { return Scope{Kind: ScopeUser, ID: userID} }

func ProjectScope(projectID int64) Scope { return Scope{Kind: ScopeProject, ID: projectID} }

// IsGlobal reports whether s is the shared default template
func (s Scope) IsGlobal() bool { return s.Kind == ScopeGlobal }

func (s Scope) String() string {
	switch s.Kind {
	case ScopeUser:
		return fmt.Sprintf("user:%d", s.ID)
	case ScopeProject:
		return fmt.Sprintf("project:%d", s.ID)
	default:
		return "global-default"
	}
}

// ScopeOf returns the board scope a card belongs to
func ScopeOf(c *Card) Scope {
	if c.ProjectID != nil {
		return ProjectScope(*c.ProjectID)
	}
	return UserScope(c.UserID)
}
