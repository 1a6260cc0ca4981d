package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/CrowderSoup/rosy-workroom/database"
)

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := database.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return database.NewStore(db)
}

func mustUser(t *testing.T, s *database.Store, name string) Caller {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", name, err)
	}
	return Caller{ID: u.ID, Username: u.Username}
}

func mustProject(t *testing.T, s *database.Store, owner Caller, members ...string) *database.Project {
	t.Helper()
	p := &database.Project{OwnerID: owner.ID, Name: "Launch", Members: members}
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return p
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func cardIDs(cards []database.Card) []int64 {
	ids := make([]int64, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}
