package services

import (
	"sort"

	"github.com/CrowderSoup/rosy-workroom/database"
)

// Placement is the (status, position) a card must be written with
type Placement struct {
	CardID   int64  `json:"cardId"`
	Status   string `json:"status"`
	Position int    `json:"position"`
}

// MoveRequest describes a drag-and-drop move. With a TargetCardID the card
// lands before that card, or after it when InsertAfter is set; otherwise it
// goes to the end of the Status bucket.
type MoveRequest struct {
	Status       string `json:"status"`
	TargetCardID *int64 `json:"targetCardId"`
	InsertAfter  bool   `json:"insertAfter"`
}

// buckets partitions cards by status. Each bucket is in storage order:
// position, then id.
func buckets(cards []database.Card) map[string][]*database.Card {
	out := make(map[string][]*database.Card, len(database.DefaultStatuses))
	for _, status := range database.DefaultStatuses {
		out[status] = nil
	}
	for i := range cards {
		c := &cards[i]
		out[c.Status] = append(out[c.Status], c)
	}
	for _, bucket := range out {
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].Position != bucket[j].Position {
				return bucket[i].Position < bucket[j].Position
			}
			return bucket[i].ID < bucket[j].ID
		})
	}
	return out
}

// MoveCard computes the placements that move cardID within the scope's
// card set. Only the source and target buckets are renumbered to 1..N, and
// only cards whose status or position changed are returned. A card that is
// not in the set, or dropped onto itself within its own column, yields no
// placements.
func MoveCard(cards []database.Card, cardID int64, req MoveRequest) []Placement {
	before := make(map[int64]Placement, len(cards))
	for _, c := range cards {
		before[c.ID] = Placement{CardID: c.ID, Status: c.Status, Position: c.Position}
	}
	if _, ok := before[cardID]; !ok {
		return nil
	}
	source := before[cardID].Status
	target := req.Status
	if target == "" {
		target = source
	}
	// Dropping a card onto itself only means something across columns.
	if req.TargetCardID != nil && *req.TargetCardID == cardID && target == source {
		return nil
	}

	working := make([]database.Card, len(cards))
	copy(working, cards)
	byStatus := buckets(working)

	var moved *database.Card
	for i, c := range byStatus[source] {
		if c.ID == cardID {
			moved = c
			byStatus[source] = append(byStatus[source][:i:i], byStatus[source][i+1:]...)
			break
		}
	}
	if moved == nil {
		return nil
	}

	byStatus[target] = insertCard(byStatus[target], moved, req)

	touched := []string{source}
	if target != source {
		touched = append(touched, target)
	}

	var placements []Placement
	for _, status := range touched {
		for i, c := range byStatus[status] {
			next := Placement{CardID: c.ID, Status: status, Position: i + 1}
			if before[c.ID] != next {
				placements = append(placements, next)
			}
		}
	}
	return placements
}

func insertCard(bucket []*database.Card, card *database.Card, req MoveRequest) []*database.Card {
	if req.TargetCardID == nil {
		return append(bucket, card)
	}

	idx := -1
	for i, c := range bucket {
		if c.ID == *req.TargetCardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return append(bucket, card)
	}
	if req.InsertAfter {
		idx++
	}

	bucket = append(bucket, nil)
	copy(bucket[idx+1:], bucket[idx:])
	bucket[idx] = card
	return bucket
}

// ApplyPlacements returns a copy of cards with the placements applied
func ApplyPlacements(cards []database.Card, placements []Placement) []database.Card {
	byID := make(map[int64]Placement, len(placements))
	for _, p := range placements {
		byID[p.CardID] = p
	}
	out := make([]database.Card, len(cards))
	for i, c := range cards {
		if p, ok := byID[c.ID]; ok {
			c.Status = p.Status
			c.Position = p.Position
		}
		out[i] = c
	}
	return out
}
