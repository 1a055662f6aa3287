package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/store"
)

// MockCardStore implements store.CardStore for testing
type MockCardStore struct {
	// Function fields for customizable behavior
	CreateFn             func(ctx context.Context, card *domain.Card) error
	GetByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetByIDForUpdateFn   func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	FindByLookupHashFn   func(ctx context.Context, lookupHash string) ([]*domain.Card, error)
	ListByOwnerFn        func(ctx context.Context, ownerID uuid.UUID, page store.PageRequest) (*store.Page[*domain.Card], error)
	ListFn               func(ctx context.Context, page store.PageRequest) (*store.Page[*domain.Card], error)
	CountByOwnerFn       func(ctx context.Context, ownerID uuid.UUID) (int64, error)
	ExistsByIDAndOwnerFn func(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	UpdateFn             func(ctx context.Context, card *domain.Card) error
	DeleteFn             func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation, keyed by card ID
	Cards map[uuid.UUID]*domain.Card
}

// NewMockCardStore creates a new mock store with initialized defaults
func NewMockCardStore() *MockCardStore {
	return &MockCardStore{
		Cards: make(map[uuid.UUID]*domain.Card),
	}
}

// Ensure MockCardStore implements store.CardStore
var _ store.CardStore = (*MockCardStore)(nil)

// Create implements the CardStore interface
func (m *MockCardStore) Create(ctx context.Context, card *domain.Card) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, card)
	}

	for _, existing := range m.Cards {
		if existing.NumberHash == card.NumberHash {
			return store.ErrCardNumberExists
		}
	}
	m.Cards[card.ID] = card
	return nil
}

// GetByID implements the CardStore interface
func (m *MockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	card, exists := m.Cards[id]
	if !exists {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}

// GetByIDForUpdate implements the CardStore interface. The mock has no row
// locks; it behaves like GetByID unless overridden.
func (m *MockCardStore) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Card, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return m.GetByID(ctx, id)
}

// FindByLookupHash implements the CardStore interface
func (m *MockCardStore) FindByLookupHash(
	ctx context.Context,
	lookupHash string,
) ([]*domain.Card, error) {
	if m.FindByLookupHashFn != nil {
		return m.FindByLookupHashFn(ctx, lookupHash)
	}

	var matches []*domain.Card
	for _, card := range m.Cards {
		if card.LookupHash == lookupHash {
			matches = append(matches, card)
		}
	}
	return matches, nil
}

// ListByOwner implements the CardStore interface
func (m *MockCardStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	page store.PageRequest,
) (*store.Page[*domain.Card], error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ctx, ownerID, page)
	}

	page = page.Normalize()
	var cards []*domain.Card
	for _, card := range m.Cards {
		if card.OwnerID == ownerID {
			cards = append(cards, card)
		}
	}
	return &store.Page[*domain.Card]{
		Items:      cards,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalCount: int64(len(cards)),
	}, nil
}

// List implements the CardStore interface
func (m *MockCardStore) List(
	ctx context.Context,
	page store.PageRequest,
) (*store.Page[*domain.Card], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}

	page = page.Normalize()
	cards := make([]*domain.Card, 0, len(m.Cards))
	for _, card := range m.Cards {
		cards = append(cards, card)
	}
	return &store.Page[*domain.Card]{
		Items:      cards,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalCount: int64(len(cards)),
	}, nil
}

// CountByOwner implements the CardStore interface
func (m *MockCardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if m.CountByOwnerFn != nil {
		return m.CountByOwnerFn(ctx, ownerID)
	}

	var count int64
	for _, card := range m.Cards {
		if card.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

// ExistsByIDAndOwner implements the CardStore interface
func (m *MockCardStore) ExistsByIDAndOwner(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (bool, error) {
	if m.ExistsByIDAndOwnerFn != nil {
		return m.ExistsByIDAndOwnerFn(ctx, id, ownerID)
	}

	card, exists := m.Cards[id]
	return exists && card.OwnerID == ownerID, nil
}

// Update implements the CardStore interface
func (m *MockCardStore) Update(ctx context.Context, card *domain.Card) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, card)
	}

	if _, exists := m.Cards[card.ID]; !exists {
		return store.ErrCardNotFound
	}
	m.Cards[card.ID] = card
	return nil
}

// Delete implements the CardStore interface
func (m *MockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Cards[id]; !exists {
		return store.ErrCardNotFound
	}
	delete(m.Cards, id)
	return nil
}

// WithTx implements the CardStore interface. The mock has no transaction
// state, so it returns itself.
func (m *MockCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return m
}
