package moderation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
)

// ContentStore is the per-type capability the workflow needs from a content table.
type ContentStore interface {
	Fetch(ctx context.Context, tenantID, id uuid.UUID) (model.ContentRef, error)
	SetStatus(ctx context.Context, tenantID, id uuid.UUID, status enums.ModerationStatus) error
	// ListUnqueued returns pending rows that have no queue entry at all.
	ListUnqueued(ctx context.Context, limit int) ([]model.ContentRef, error)
}

type Registry struct {
	mu     sync.RWMutex
	stores map[enums.ItemType]ContentStore
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[enums.ItemType]ContentStore)}
}

func (r *Registry) Register(itemType enums.ItemType, store ContentStore) error {
	if !itemType.Valid() {
		return fmt.Errorf("register %q: %w", itemType, ErrUnsupportedItemType)
	}
	if store == nil {
		return fmt.Errorf("register %q: store is nil", itemType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[itemType] = store
	return nil
}

func (r *Registry) Lookup(itemType enums.ItemType) (ContentStore, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[itemType]
	if !ok {
		return nil, fmt.Errorf("%q: %w", itemType, ErrUnsupportedItemType)
	}
	return store, nil
}

// Types lists registered item types in their canonical order.
func (r *Registry) Types() []enums.ItemType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]enums.ItemType, 0, len(r.stores))
	for _, itemType := range enums.AllItemTypes() {
		if _, ok := r.stores[itemType]; ok {
			types = append(types, itemType)
		}
	}
	return types
}
