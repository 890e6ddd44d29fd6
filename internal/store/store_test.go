package store

import (
	"testing"
	"time"

	"github.com/malawibank/analyzer/internal/domain"
)

func TestFileKVRoundTrip(t *testing.T) {
	dir := t.TempDir()

	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}

	if err := kv.Put("k", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// A fresh handle over the same directory must see the value.
	kv2, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV reopen: %v", err)
	}
	b, ok, err := kv2.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if string(b) != `{"a":1}` {
		t.Errorf("Get = %q", b)
	}

	if err := kv2.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv2.Get("k"); ok {
		t.Error("key still present after Delete")
	}
	// Deleting again must not error.
	if err := kv2.Delete("k"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestMemKVIsolatesValues(t *testing.T) {
	kv := NewMemKV()
	src := []byte("abc")
	if err := kv.Put("k", src); err != nil {
		t.Fatalf("Put: %v", err)
	}
	src[0] = 'X'

	got, ok, err := kv.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get = ok=%v err=%v", ok, err)
	}
	if string(got) != "abc" {
		t.Errorf("stored value mutated through caller slice: %q", got)
	}
}

func TestUserRepoFindByEmailCaseInsensitive(t *testing.T) {
	repo := NewUserRepo(NewMemKV())

	err := repo.SaveAll([]StoredUser{
		{User: domain.User{ID: "u1", Email: "Takondwa@Example.com", Name: "Takondwa", Plan: domain.PlanFree}, Secret: "hash"},
	})
	if err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	u, ok, err := repo.FindByEmail("takondwa@example.COM")
	if err != nil || !ok {
		t.Fatalf("FindByEmail = ok=%v err=%v", ok, err)
	}
	if u.ID != "u1" {
		t.Errorf("found user %q", u.ID)
	}

	if _, ok, _ := repo.FindByEmail("nobody@example.com"); ok {
		t.Error("FindByEmail(nobody) should miss")
	}
}

func historyItem(id string) domain.HistoryItem {
	return domain.HistoryItem{
		ID:        id,
		Timestamp: time.Now(),
		FileName:  id + ".pdf",
		Result: domain.AnalysisResult{
			MarkdownReport: "r",
			FinancialScore: 50,
			FinancialRank:  "Break-Even Battler",
			ScoreFeedback:  "f",
			FinancialWisdom: []domain.BookWisdom{
				{Book: "a", Quote: "q", Tactic: "t"},
				{Book: "b", Quote: "q", Tactic: "t"},
				{Book: "c", Quote: "q", Tactic: "t"},
			},
		},
	}
}

func TestHistoryOrderingAndRemoval(t *testing.T) {
	repo := NewHistoryRepo(NewMemKV())

	if err := repo.Prepend("u1", historyItem("A")); err != nil {
		t.Fatalf("Prepend A: %v", err)
	}
	if err := repo.Prepend("u1", historyItem("B")); err != nil {
		t.Fatalf("Prepend B: %v", err)
	}

	items, err := repo.List("u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 || items[0].ID != "B" || items[1].ID != "A" {
		t.Fatalf("List order = %v, want [B A]", ids(items))
	}

	if err := repo.Remove("u1", "A"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	items, _ = repo.List("u1")
	if len(items) != 1 || items[0].ID != "B" {
		t.Errorf("after Remove = %v, want [B]", ids(items))
	}

	// Other users' lists are untouched.
	other, _ := repo.List("u2")
	if len(other) != 0 {
		t.Errorf("u2 history = %v, want empty", ids(other))
	}
}

func TestHistoryFind(t *testing.T) {
	repo := NewHistoryRepo(NewMemKV())
	if err := repo.Prepend("u1", historyItem("A")); err != nil {
		t.Fatalf("Prepend: %v", err)
	}

	it, ok, err := repo.Find("u1", "A")
	if err != nil || !ok {
		t.Fatalf("Find = ok=%v err=%v", ok, err)
	}
	if it.FileName != "A.pdf" {
		t.Errorf("FileName = %q", it.FileName)
	}

	if _, ok, _ := repo.Find("u1", "Z"); ok {
		t.Error("Find(Z) should miss")
	}
}

func ids(items []domain.HistoryItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
