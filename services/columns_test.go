package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/CrowderSoup/rosy-workroom/database"
)

func columnKeys(cols []database.Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"In Review", "in-review"},
		{"  QA / Testing!! ", "qa-testing"},
		{"Done", "done"},
		{"2nd pass", "2nd-pass"},
		{"***", "column"},
		{"", "column"},
		{"Café au lait", "caf-au-lait"},
	}

	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUniqueColumnKey(t *testing.T) {
	existing := []database.Column{{Key: "todo"}, {Key: "review"}, {Key: "review-2"}}

	if got := UniqueColumnKey("blocked", existing); got != "blocked" {
		t.Errorf("free slug: got %q", got)
	}
	if got := UniqueColumnKey("todo", existing); got != "todo-2" {
		t.Errorf("taken slug: got %q, want todo-2", got)
	}
	if got := UniqueColumnKey("review", existing); got != "review-3" {
		t.Errorf("slug with suffix taken: got %q, want review-3", got)
	}
}

func TestColumnRegistry_SeedsScopeOnFirstUse(t *testing.T) {
	store := newTestStore(t)
	registry := NewColumnRegistry(store)
	ctx := context.Background()
	alice := mustUser(t, store, "alice")
	project := mustProject(t, store, alice)

	cols, err := registry.ListColumns(ctx, database.ProjectScope(project.ID))
	if err != nil {
		t.Fatalf("ListColumns failed: %v", err)
	}
	if !reflect.DeepEqual(columnKeys(cols), []string{"todo", "inprogress", "done"}) {
		t.Fatalf("unexpected seeded keys %v", columnKeys(cols))
	}
	for i, c := range cols {
		if c.Position != i+1 {
			t.Errorf("column %s: position %d, want %d", c.Key, c.Position, i+1)
		}
		if c.ProjectID == nil || *c.ProjectID != project.ID {
			t.Errorf("column %s not scoped to project", c.Key)
		}
	}

	again, err := registry.ListColumns(ctx, database.ProjectScope(project.ID))
	if err != nil {
		t.Fatalf("ListColumns failed: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("second list re-seeded: %d columns", len(again))
	}

	// Other scopes are unaffected.
	personal, err := store.ListColumns(ctx, database.UserScope(alice.ID))
	if err != nil {
		t.Fatalf("ListColumns failed: %v", err)
	}
	if len(personal) != 0 {
		t.Errorf("personal scope should still be empty, got %v", columnKeys(personal))
	}
}

func TestColumnRegistry_CreateRenameDelete(t *testing.T) {
	store := newTestStore(t)
	registry := NewColumnRegistry(store)
	ctx := context.Background()
	alice := mustUser(t, store, "alice")
	scope := database.UserScope(alice.ID)

	if _, err := registry.CreateColumn(ctx, scope, "   "); !errors.Is(err, ErrValidation) {
		t.Errorf("blank name: expected ErrValidation, got %v", err)
	}

	review, err := registry.CreateColumn(ctx, scope, "In Review")
	if err != nil {
		t.Fatalf("CreateColumn failed: %v", err)
	}
	if review.Key != "in-review" || review.Position != 4 {
		t.Errorf("got key %q position %d", review.Key, review.Position)
	}

	dup, err := registry.CreateColumn(ctx, scope, "To-do")
	if err != nil {
		t.Fatalf("CreateColumn failed: %v", err)
	}
	if dup.Key != "to-do" {
		t.Errorf("expected to-do, got %q", dup.Key)
	}
	todo2, err := registry.CreateColumn(ctx, scope, "todo")
	if err != nil {
		t.Fatalf("CreateColumn failed: %v", err)
	}
	if todo2.Key != "todo-2" {
		t.Errorf("expected todo-2, got %q", todo2.Key)
	}

	renamed, err := registry.UpdateColumn(ctx, scope, "in-review", strPtr("Review"), nil)
	if err != nil {
		t.Fatalf("UpdateColumn failed: %v", err)
	}
	if renamed.Name != "Review" || renamed.Key != "in-review" {
		t.Errorf("rename changed key or missed name: %+v", renamed)
	}
	if _, err := registry.UpdateColumn(ctx, scope, "missing", strPtr("x"), nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := registry.DeleteColumn(ctx, scope, "in-review"); err != nil {
		t.Fatalf("DeleteColumn failed: %v", err)
	}
	if err := registry.DeleteColumn(ctx, scope, "in-review"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestColumnRegistry_DeleteKeepsEveryCard(t *testing.T) {
	store := newTestStore(t)
	registry := NewColumnRegistry(store)
	ctx := context.Background()
	alice := mustUser(t, store, "alice")
	project := mustProject(t, store, alice)
	scope := database.ProjectScope(project.ID)

	if _, err := registry.CreateColumn(ctx, scope, "Blocked"); err != nil {
		t.Fatalf("CreateColumn failed: %v", err)
	}
	for i, status := range []string{"blocked", "blocked", "done", "todo"} {
		c := &database.Card{ProjectID: &project.ID, UserID: alice.ID, Title: "c", Status: status, Position: i + 1}
		if err := store.InsertCard(ctx, c); err != nil {
			t.Fatalf("InsertCard failed: %v", err)
		}
	}
	// A personal card with the same status must not be touched.
	personal := &database.Card{UserID: alice.ID, Title: "mine", Status: "blocked", Position: 1}
	if err := store.InsertCard(ctx, personal); err != nil {
		t.Fatalf("InsertCard failed: %v", err)
	}

	before, _ := store.ListCards(ctx, scope)
	if err := registry.DeleteColumn(ctx, scope, "blocked"); err != nil {
		t.Fatalf("DeleteColumn failed: %v", err)
	}
	after, err := store.ListCards(ctx, scope)
	if err != nil {
		t.Fatalf("ListCards failed: %v", err)
	}

	if len(after) != len(before) {
		t.Fatalf("card count changed: %d -> %d", len(before), len(after))
	}
	counts := map[string]int{}
	for _, c := range after {
		counts[c.Status]++
	}
	if counts["blocked"] != 0 || counts["todo"] != 3 || counts["done"] != 1 {
		t.Errorf("unexpected status counts %v", counts)
	}

	mine, err := store.GetCard(ctx, personal.ID)
	if err != nil {
		t.Fatalf("GetCard failed: %v", err)
	}
	if mine.Status != "blocked" {
		t.Errorf("personal card reassigned to %q", mine.Status)
	}

	cols, _ := registry.ListColumns(ctx, scope)
	if !reflect.DeepEqual(columnKeys(cols), []string{"todo", "inprogress", "done"}) {
		t.Errorf("unexpected columns after delete: %v", columnKeys(cols))
	}
}
