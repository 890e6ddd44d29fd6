package store

import (
	"encoding/json"
	"fmt"

	"github.com/malawibank/analyzer/internal/domain"
)

func historyKey(userID string) string {
	return "malawi_bank_history_" + userID
}

// HistoryRepo persists one most-recent-first history list per user. Every
// mutation rewrites the whole list; there is no incremental diffing.
type HistoryRepo struct {
	kv KV
}

// NewHistoryRepo wraps a KV.
func NewHistoryRepo(kv KV) *HistoryRepo {
	return &HistoryRepo{kv: kv}
}

// List returns the user's history, newest first.
func (r *HistoryRepo) List(userID string) ([]domain.HistoryItem, error) {
	b, ok, err := r.kv.Get(historyKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []domain.HistoryItem{}, nil
	}
	var items []domain.HistoryItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("store.HistoryRepo.List: %w", err)
	}
	return items, nil
}

// Prepend inserts the item at the front of the user's list.
func (r *HistoryRepo) Prepend(userID string, item domain.HistoryItem) error {
	items, err := r.List(userID)
	if err != nil {
		return err
	}
	items = append([]domain.HistoryItem{item}, items...)
	return r.save(userID, items)
}

// Remove deletes the item with the given id. Removing an unknown id is a
// no-op.
func (r *HistoryRepo) Remove(userID, itemID string) error {
	items, err := r.List(userID)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	return r.save(userID, kept)
}

// Find returns one history item by id.
func (r *HistoryRepo) Find(userID, itemID string) (*domain.HistoryItem, bool, error) {
	items, err := r.List(userID)
	if err != nil {
		return nil, false, err
	}
	for i := range items {
		if items[i].ID == itemID {
			return &items[i], true, nil
		}
	}
	return nil, false, nil
}

func (r *HistoryRepo) save(userID string, items []domain.HistoryItem) error {
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("store.HistoryRepo.save: %w", err)
	}
	return r.kv.Put(historyKey(userID), b)
}
