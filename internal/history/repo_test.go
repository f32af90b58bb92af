package history

import (
	"context"
	"fmt"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestListRecentDesc_NewestFirstWithLimit(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		err := repo.Insert(ctx, &Entry{
			Identity: "1.2.3.4",
			Prompt:   fmt.Sprintf("p%d", i),
			Response: fmt.Sprintf("r%d", i),
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	// another identity must not leak into the listing
	if err := repo.Insert(ctx, &Entry{Identity: "5.6.7.8", Prompt: "x", Response: "y"}); err != nil {
		t.Fatalf("insert other identity: %v", err)
	}

	entries, err := repo.ListRecentDesc(ctx, "1.2.3.4", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, want := range []string{"p7", "p6", "p5", "p4", "p3"} {
		if entries[i].Prompt != want {
			t.Errorf("entry %d: prompt = %q, want %q", i, entries[i].Prompt, want)
		}
	}
}

func TestListRecentDesc_EmptyIdentity(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepo(db)

	entries, err := repo.ListRecentDesc(context.Background(), "9.9.9.9", 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
