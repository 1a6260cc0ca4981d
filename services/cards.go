package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CrowderSoup/rosy-workroom/database"
	"github.com/CrowderSoup/rosy-workroom/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CardStore interface {
	ListCards(ctx context.Context, scope database.Scope) ([]database.Card, error)
	GetCard(ctx context.Context, id int64) (*database.Card, error)
	MaxCardPosition(ctx context.Context, scope database.Scope, status string) (int, error)
	InsertCard(ctx context.Context, c *database.Card) error
	UpdateCard(ctx context.Context, c *database.Card) error
	UpdateCardPlacement(ctx context.Context, id int64, status string, position int) error
	DeleteCard(ctx context.Context, id int64) error
}

// CardInput carries the fields of a create or partial update. Nil fields
// are left untouched on update.
type CardInput struct {
	ProjectID       *int64                     `json:"project_id"`
	Title           *string                    `json:"title"`
	Label           *string                    `json:"label"`
	Tags            *[]string                  `json:"tags"`
	Priority        *string                    `json:"priority"`
	DueDate         *string                    `json:"dueDate"`
	Description     *string                    `json:"description"`
	ChecklistGroups *[]database.ChecklistGroup `json:"checklistGroups"`
	Assignees       *[]string                  `json:"assignees"`
	Attachments     *[]string                  `json:"attachments"`
	Status          *string                    `json:"status"`
	Position        *int                       `json:"position"`
}

// CardService creates, edits, moves and deletes cards on project and
// personal boards.
type CardService struct {
	cards     CardStore
	gate      *AccessGate
	assignees *AssigneeValidator
}

func NewCardService(cards CardStore, gate *AccessGate, assignees *AssigneeValidator) *CardService {
	return &CardService{cards: cards, gate: gate, assignees: assignees}
}

// ListCards returns the cards of a project board, or of the caller's
// personal board when projectID is 0.
func (s *CardService) ListCards(ctx context.Context, caller Caller, projectID int64) ([]database.Card, error) {
	scope, _, err := s.gate.BoardScope(ctx, projectID, caller)
	if err != nil {
		return nil, err
	}
	return s.cards.ListCards(ctx, scope)
}

func (s *CardService) CreateCard(ctx context.Context, caller Caller, in CardInput) (*database.Card, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, invalid("title is required")
	}

	var projectID int64
	if in.ProjectID != nil {
		projectID = *in.ProjectID
	}
	scope, project, err := s.gate.BoardScope(ctx, projectID, caller)
	if err != nil {
		return nil, err
	}

	card := &database.Card{UserID: caller.ID, Status: database.StatusTodo}
	if project != nil {
		card.ProjectID = &project.ID
	}
	if err := s.apply(ctx, card, in, project); err != nil {
		return nil, err
	}

	if in.Position == nil || *in.Position <= 0 {
		maxPos, err := s.cards.MaxCardPosition(ctx, scope, card.Status)
		if err != nil {
			return nil, err
		}
		card.Position = maxPos + 1
	}

	if err := s.cards.InsertCard(ctx, card); err != nil {
		return nil, err
	}

	logging.Logger.WithFields(logrus.Fields{
		"card":   card.ID,
		"scope":  scope.String(),
		"status": card.Status,
	}).Info("Card created")
	return card, nil
}

// UpdateCard applies a partial update. Changing the status without giving
// a position appends the card to the end of its new bucket.
func (s *CardService) UpdateCard(ctx context.Context, caller Caller, id int64, in CardInput) (*database.Card, error) {
	card, project, err := s.authorizeCard(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	previousStatus := card.Status
	if err := s.apply(ctx, card, in, project); err != nil {
		return nil, err
	}

	if card.Status != previousStatus && (in.Position == nil || *in.Position <= 0) {
		maxPos, err := s.cards.MaxCardPosition(ctx, database.ScopeOf(card), card.Status)
		if err != nil {
			return nil, err
		}
		card.Position = maxPos + 1
	}

	if err := s.cards.UpdateCard(ctx, card); err != nil {
		return nil, err
	}
	return s.cards.GetCard(ctx, id)
}

// MoveCard reorders the card's board with the drag-and-drop ordering and
// returns the board's cards afterwards. A card deleted concurrently is a
// no-op rather than an error.
func (s *CardService) MoveCard(ctx context.Context, caller Caller, id int64, req MoveRequest) ([]database.Card, error) {
	req.Status = strings.TrimSpace(req.Status)

	card, _, err := s.authorizeCard(ctx, caller, id)
	if errors.Is(err, ErrNotFound) {
		logging.Logger.WithField("card", id).Debug("Move of missing card ignored")
		return []database.Card{}, nil
	}
	if err != nil {
		return nil, err
	}

	scope := database.ScopeOf(card)
	cards, err := s.cards.ListCards(ctx, scope)
	if err != nil {
		return nil, err
	}

	placements := MoveCard(cards, id, req)
	for _, p := range placements {
		// Rows are written independently; a failure leaves a partial
		// ordering that the next move renormalizes.
		if err := s.cards.UpdateCardPlacement(ctx, p.CardID, p.Status, p.Position); err != nil {
			return nil, err
		}
	}

	logging.Logger.WithFields(logrus.Fields{
		"card":    id,
		"scope":   scope.String(),
		"status":  req.Status,
		"changed": len(placements),
	}).Info("Card moved")
	return ApplyPlacements(cards, placements), nil
}

func (s *CardService) DeleteCard(ctx context.Context, caller Caller, id int64) error {
	if _, _, err := s.authorizeCard(ctx, caller, id); err != nil {
		return err
	}
	if err := s.cards.DeleteCard(ctx, id); err != nil {
		return err
	}
	logging.Logger.WithField("card", id).Info("Card deleted")
	return nil
}

// authorizeCard loads a card and checks the caller may change it: any
// collaborator for project cards, only the creator for personal cards.
func (s *CardService) authorizeCard(ctx context.Context, caller Caller, id int64) (*database.Card, *database.Project, error) {
	card, err := s.cards.GetCard(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, fmt.Errorf("card %d: %w", id, ErrNotFound)
		}
		return nil, nil, err
	}

	if card.ProjectID == nil {
		if card.UserID != caller.ID {
			return nil, nil, fmt.Errorf("card %d: %w", id, ErrForbidden)
		}
		return card, nil, nil
	}

	project, err := s.gate.Authorize(ctx, *card.ProjectID, caller)
	if err != nil {
		return nil, nil, err
	}
	return card, project, nil
}

// apply validates the input and copies it onto card. Assignees are checked
// before anything is written so a rejected list leaves the card untouched.
func (s *CardService) apply(ctx context.Context, card *database.Card, in CardInput, project *database.Project) error {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return invalid("title cannot be blank")
		}
		card.Title = title
	}
	if in.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*in.Priority))
		if PriorityRank(priority) == 3 && priority != "" {
			return invalid("priority must be high, medium or low")
		}
		card.Priority = priority
	}
	if in.Status != nil {
		status := strings.TrimSpace(*in.Status)
		if status == "" {
			return invalid("status cannot be blank")
		}
		card.Status = status
	}
	if in.Position != nil && *in.Position > 0 {
		card.Position = *in.Position
	}
	if in.Assignees != nil {
		resolved, err := s.assignees.Validate(ctx, *in.Assignees, project)
		if err != nil {
			return err
		}
		card.Assignees = resolved
	}

	if in.Label != nil {
		card.Label = strings.TrimSpace(*in.Label)
	}
	if in.Tags != nil {
		card.Tags = cleanList(*in.Tags)
	}
	if in.DueDate != nil {
		card.DueDate = strings.TrimSpace(*in.DueDate)
	}
	if in.Description != nil {
		card.Description = *in.Description
	}
	if in.ChecklistGroups != nil {
		card.ChecklistGroups = normalizeChecklists(*in.ChecklistGroups)
	}
	if in.Attachments != nil {
		card.Attachments = cleanList(*in.Attachments)
	}
	return nil
}

// normalizeChecklists gives every group and item an id
func normalizeChecklists(groups []database.ChecklistGroup) []database.ChecklistGroup {
	out := make([]database.ChecklistGroup, 0, len(groups))
	for _, g := range groups {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		items := make([]database.ChecklistItem, 0, len(g.Items))
		for _, item := range g.Items {
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			items = append(items, item)
		}
		g.Items = items
		out = append(out, g)
	}
	return out
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
