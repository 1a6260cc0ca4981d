package services

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/CrowderSoup/rosy-workroom/database"
)

func card(id int64, status string, position int) database.Card {
	return database.Card{ID: id, Status: status, Position: position}
}

// bucketOrder returns the ids in a status bucket in storage order
func bucketOrder(cards []database.Card, status string) ([]int64, []int) {
	var bucket []database.Card
	for _, c := range cards {
		if c.Status == status {
			bucket = append(bucket, c)
		}
	}
	sort.Slice(bucket, func(i, j int) bool {
		if bucket[i].Position != bucket[j].Position {
			return bucket[i].Position < bucket[j].Position
		}
		return bucket[i].ID < bucket[j].ID
	})
	ids := make([]int64, len(bucket))
	positions := make([]int, len(bucket))
	for i, c := range bucket {
		ids[i] = c.ID
		positions[i] = c.Position
	}
	return ids, positions
}

func dense(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestMoveCard_BeforeTargetInSameColumn(t *testing.T) {
	cards := []database.Card{
		card(1, "todo", 1), // Draft brief
		card(2, "todo", 2), // Collect assets
	}

	got := MoveCard(cards, 2, MoveRequest{Status: "todo", TargetCardID: int64Ptr(1)})
	want := []Placement{
		{CardID: 2, Status: "todo", Position: 1},
		{CardID: 1, Status: "todo", Position: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("placements mismatch: got %v want %v", got, want)
	}
}

func TestMoveCard_InsertAfterTarget(t *testing.T) {
	cards := []database.Card{
		card(1, "todo", 1),
		card(2, "todo", 2),
		card(3, "todo", 3),
	}

	moved := ApplyPlacements(cards, MoveCard(cards, 1, MoveRequest{Status: "todo", TargetCardID: int64Ptr(2), InsertAfter: true}))
	ids, positions := bucketOrder(moved, "todo")
	if !reflect.DeepEqual(ids, []int64{2, 1, 3}) {
		t.Errorf("order mismatch: got %v", ids)
	}
	if !reflect.DeepEqual(positions, dense(3)) {
		t.Errorf("positions not dense: %v", positions)
	}
}

func TestMoveCard_AcrossColumnsAtIndex(t *testing.T) {
	cards := []database.Card{
		card(1, "todo", 1),
		card(2, "todo", 2),
		card(3, "todo", 3),
		card(10, "done", 1),
		card(11, "done", 2),
	}

	moved := ApplyPlacements(cards, MoveCard(cards, 2, MoveRequest{Status: "done", TargetCardID: int64Ptr(11)}))

	todoIDs, todoPos := bucketOrder(moved, "todo")
	if !reflect.DeepEqual(todoIDs, []int64{1, 3}) || !reflect.DeepEqual(todoPos, dense(2)) {
		t.Errorf("source bucket: ids %v positions %v", todoIDs, todoPos)
	}
	doneIDs, donePos := bucketOrder(moved, "done")
	if !reflect.DeepEqual(doneIDs, []int64{10, 2, 11}) || !reflect.DeepEqual(donePos, dense(3)) {
		t.Errorf("target bucket: ids %v positions %v", doneIDs, donePos)
	}
}

func TestMoveCard_AppendsWhenTargetMissingOrAbsent(t *testing.T) {
	cards := []database.Card{
		card(1, "todo", 1),
		card(2, "inprogress", 1),
		card(3, "inprogress", 2),
	}

	tests := []struct {
		name string
		req  MoveRequest
	}{
		{"no target", MoveRequest{Status: "inprogress"}},
		{"target in other column", MoveRequest{Status: "inprogress", TargetCardID: int64Ptr(1)}},
		{"unknown target", MoveRequest{Status: "inprogress", TargetCardID: int64Ptr(99)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			moved := ApplyPlacements(cards, MoveCard(cards, 1, tc.req))
			ids, positions := bucketOrder(moved, "inprogress")
			if !reflect.DeepEqual(ids, []int64{2, 3, 1}) || !reflect.DeepEqual(positions, dense(3)) {
				t.Errorf("got ids %v positions %v", ids, positions)
			}
		})
	}
}

func TestMoveCard_MissingCardIsNoop(t *testing.T) {
	cards := []database.Card{card(1, "todo", 1), card(2, "done", 1)}
	snapshot := append([]database.Card(nil), cards...)

	if got := MoveCard(cards, 42, MoveRequest{Status: "done"}); got != nil {
		t.Errorf("expected no placements, got %v", got)
	}
	if !reflect.DeepEqual(cards, snapshot) {
		t.Error("input cards were modified")
	}
}

func TestMoveCard_SelfTarget(t *testing.T) {
	cards := []database.Card{
		card(1, "todo", 1),
		card(2, "todo", 2),
		card(3, "inprogress", 1),
	}

	if got := MoveCard(cards, 1, MoveRequest{Status: "todo", TargetCardID: int64Ptr(1)}); got != nil {
		t.Errorf("same column: expected no placements, got %v", got)
	}

	got := MoveCard(cards, 1, MoveRequest{Status: "inprogress", TargetCardID: int64Ptr(1)})
	want := []Placement{
		{CardID: 2, Status: "todo", Position: 1},
		{CardID: 1, Status: "inprogress", Position: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("other column: got %v want %v", got, want)
	}
}

func TestMoveCard_OnlyChangedCardsReturned(t *testing.T) {
	cards := []database.Card{
		card(1, "todo", 1),
		card(2, "todo", 2),
		card(3, "todo", 3),
		card(4, "done", 1),
	}

	got := MoveCard(cards, 3, MoveRequest{Status: "done"})
	want := []Placement{{CardID: 3, Status: "done", Position: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestMoveCard_RenormalizesGapsAndDuplicates(t *testing.T) {
	// Positions left behind by an interrupted recompute.
	cards := []database.Card{
		card(1, "todo", 4),
		card(2, "todo", 4),
		card(3, "todo", 9),
	}

	moved := ApplyPlacements(cards, MoveCard(cards, 3, MoveRequest{Status: "todo", TargetCardID: int64Ptr(1)}))
	ids, positions := bucketOrder(moved, "todo")
	if !reflect.DeepEqual(ids, []int64{3, 1, 2}) || !reflect.DeepEqual(positions, dense(3)) {
		t.Errorf("got ids %v positions %v", ids, positions)
	}
}

func TestMoveCard_OrphanStatusBucket(t *testing.T) {
	cards := []database.Card{card(1, "todo", 1), card(2, "archived", 5)}

	got := MoveCard(cards, 1, MoveRequest{Status: "archived"})
	want := []Placement{
		{CardID: 2, Status: "archived", Position: 1},
		{CardID: 1, Status: "archived", Position: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestMoveCard_RandomMovesKeepBucketsDense(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	statuses := []string{"todo", "inprogress", "done"}

	var cards []database.Card
	for i := int64(1); i <= 12; i++ {
		cards = append(cards, card(i, statuses[i%3], int(i)))
	}
	cards = ApplyPlacements(cards, MoveCard(cards, 1, MoveRequest{Status: "todo"}))
	cards = ApplyPlacements(cards, MoveCard(cards, 2, MoveRequest{Status: "inprogress"}))
	cards = ApplyPlacements(cards, MoveCard(cards, 3, MoveRequest{Status: "done"}))

	for step := 0; step < 200; step++ {
		id := int64(rng.Intn(12) + 1)
		req := MoveRequest{Status: statuses[rng.Intn(3)], InsertAfter: rng.Intn(2) == 0}
		if rng.Intn(3) > 0 {
			req.TargetCardID = int64Ptr(int64(rng.Intn(12) + 1))
		}

		before := len(cards)
		cards = ApplyPlacements(cards, MoveCard(cards, id, req))
		if len(cards) != before {
			t.Fatalf("step %d: card count changed", step)
		}

		moved := cards[id-1]
		if moved.Status != req.Status {
			t.Fatalf("step %d: card %d in %q, want %q", step, id, moved.Status, req.Status)
		}
		for _, status := range statuses {
			if _, positions := bucketOrder(cards, status); !reflect.DeepEqual(positions, dense(len(positions))) {
				t.Fatalf("step %d: bucket %s positions %v", step, status, positions)
			}
		}
	}
}
