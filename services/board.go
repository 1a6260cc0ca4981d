package services

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CrowderSoup/rosy-workroom/database"
)

// BoardColumn is a column together with its cards in display order.
// Synthetic columns stand in for card statuses with no registered column.
type BoardColumn struct {
	database.Column
	Synthetic bool            `json:"synthetic"`
	Cards     []database.Card `json:"cards"`
}

// PriorityRank orders priorities for display: high first, unset last
func PriorityRank(priority string) int {
	switch strings.ToLower(priority) {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

// SortForDisplay orders cards by priority, then stored position, then id.
// Stored positions keep drag order, so it only breaks ties within a
// priority group.
func SortForDisplay(cards []database.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if ra, rb := PriorityRank(a.Priority), PriorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.ID < b.ID
	})
}

// TitleFromKey builds a display name for a column key
func TitleFromKey(key string) string {
	if key == database.StatusInProgress {
		return "In Progress"
	}
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// BuildBoard groups cards under the registered columns. Statuses without a
// column get a synthesized one after the real columns so no card is hidden.
func BuildBoard(columns []database.Column, cards []database.Card) []BoardColumn {
	byStatus := make(map[string][]database.Card)
	for _, c := range cards {
		byStatus[c.Status] = append(byStatus[c.Status], c)
	}

	board := make([]BoardColumn, 0, len(columns))
	registered := make(map[string]bool, len(columns))
	lastPosition := 0
	for _, col := range columns {
		registered[col.Key] = true
		if col.Position > lastPosition {
			lastPosition = col.Position
		}
		board = append(board, BoardColumn{Column: col, Cards: byStatus[col.Key]})
	}

	var orphans []string
	for status := range byStatus {
		if !registered[status] {
			orphans = append(orphans, status)
		}
	}
	sort.Strings(orphans)

	for i, status := range orphans {
		board = append(board, BoardColumn{
			Column: database.Column{
				Key:      status,
				Name:     TitleFromKey(status),
				Position: lastPosition + i + 1,
			},
			Synthetic: true,
			Cards:     byStatus[status],
		})
	}

	for i := range board {
		if board[i].Cards == nil {
			board[i].Cards = []database.Card{}
		}
		SortForDisplay(board[i].Cards)
	}
	return board
}
