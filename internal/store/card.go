package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/avelkov/cardvault/internal/domain"
)

// CardStore defines the interface for card data persistence. Only derived
// forms of the card number (credential hash, lookup hash, masked number)
// are ever stored or returned.
type CardStore interface {
	// Create saves a new card to the store.
	// Returns ErrCardNumberExists if a card with the same credential hash
	// already exists, and ErrUserNotFound if the owner does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetByIDForUpdate retrieves a card and acquires a row lock on it.
	// Only meaningful on a store bound to a transaction via WithTx; the
	// lock is held until the transaction ends.
	// Returns ErrCardNotFound if the card does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// FindByLookupHash retrieves all cards sharing the given fast lookup
	// hash. Used to shortlist candidates for the uniqueness check; the
	// caller must still verify each candidate against its credential hash.
	FindByLookupHash(ctx context.Context, lookupHash string) ([]*domain.Card, error)

	// ListByOwner retrieves a page of the owner's cards ordered by creation time.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, page PageRequest) (*Page[*domain.Card], error)

	// List retrieves a page of all cards ordered by creation time.
	List(ctx context.Context, page PageRequest) (*Page[*domain.Card], error)

	// CountByOwner returns the number of cards owned by the given user.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// ExistsByIDAndOwner reports whether the card exists and is owned by
	// the given user. Used by authorization predicates.
	ExistsByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (bool, error)

	// Update persists the card's mutable fields (expiry, status, balance).
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided transaction.
	// Operations touching more than one row (the transfer debit/credit pair)
	// must run on a transactional store obtained here, inside
	// store.RunInTransaction.
	WithTx(tx *sql.Tx) CardStore
}
