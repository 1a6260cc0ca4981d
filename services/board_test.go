package services

import (
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/CrowderSoup/rosy-workroom/database"
)

func TestTitleFromKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"inprogress", "In Progress"},
		{"todo", "Todo"},
		{"in-review", "In Review"},
		{"needs_design", "Needs Design"},
		{"über", "Über"},
		{"éclair-zone", "Éclair Zone"},
	}
	for _, tc := range tests {
		got := TitleFromKey(tc.key)
		if got != tc.want {
			t.Errorf("TitleFromKey(%q) = %q, want %q", tc.key, got, tc.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("TitleFromKey(%q) produced invalid UTF-8", tc.key)
		}
	}
}

func TestSortForDisplay(t *testing.T) {
	cards := []database.Card{
		{ID: 1, Priority: "", Position: 1},
		{ID: 2, Priority: "low", Position: 2},
		{ID: 3, Priority: "high", Position: 5},
		{ID: 4, Priority: "medium", Position: 1},
		{ID: 5, Priority: "high", Position: 3},
		{ID: 6, Priority: "high", Position: 3},
	}

	SortForDisplay(cards)
	if got := cardIDs(cards); !reflect.DeepEqual(got, []int64{5, 6, 3, 4, 2, 1}) {
		t.Errorf("display order %v", got)
	}
}

func TestBuildBoard_SynthesizesOrphanColumns(t *testing.T) {
	columns := []database.Column{
		{Key: "todo", Name: "To Do", Position: 1},
		{Key: "inprogress", Name: "In Progress", Position: 2},
		{Key: "done", Name: "Done", Position: 3},
	}
	cards := []database.Card{
		{ID: 1, Status: "todo", Position: 1},
		{ID: 2, Status: "qa-review", Position: 1},
		{ID: 3, Status: "archived", Position: 1},
		{ID: 4, Status: "archived", Position: 2},
	}

	board := BuildBoard(columns, cards)
	if len(board) != 5 {
		t.Fatalf("expected 5 columns, got %d", len(board))
	}

	var keys []string
	for _, col := range board {
		keys = append(keys, col.Key)
	}
	if !reflect.DeepEqual(keys, []string{"todo", "inprogress", "done", "archived", "qa-review"}) {
		t.Errorf("column order %v", keys)
	}

	archived := board[3]
	if !archived.Synthetic || archived.Name != "Archived" || archived.Position != 4 {
		t.Errorf("unexpected synthesized column %+v", archived.Column)
	}
	if got := cardIDs(archived.Cards); !reflect.DeepEqual(got, []int64{3, 4}) {
		t.Errorf("archived cards %v", got)
	}
	if board[4].Name != "Qa Review" || board[4].Position != 5 {
		t.Errorf("unexpected synthesized column %+v", board[4].Column)
	}

	if board[1].Synthetic || board[1].Cards == nil || len(board[1].Cards) != 0 {
		t.Errorf("empty registered column should have an empty card list, got %+v", board[1])
	}

	total := 0
	for _, col := range board {
		total += len(col.Cards)
	}
	if total != len(cards) {
		t.Errorf("board shows %d cards, want %d", total, len(cards))
	}
}

func TestBuildBoard_NonASCIIOrphanName(t *testing.T) {
	board := BuildBoard(nil, []database.Card{{ID: 1, Status: "éclair", Position: 1}})
	if len(board) != 1 || !board[0].Synthetic {
		t.Fatalf("expected one synthesized column, got %+v", board)
	}
	if board[0].Name != "Éclair" {
		t.Errorf("name %q", board[0].Name)
	}
}
