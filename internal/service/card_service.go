package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/platform/logger"
	"github.com/avelkov/cardvault/internal/store"
)

// CreateCardParams carries the inputs for issuing a new card. Number is the
// raw PAN; it is masked and hashed before anything is stored.
type CreateCardParams struct {
	OwnerID        uuid.UUID
	Number         string
	Expiry         domain.YearMonth
	InitialBalance decimal.Decimal
}

// UpdateCardParams carries the mutable card fields for an admin update.
type UpdateCardParams struct {
	Expiry  domain.YearMonth
	Balance decimal.Decimal
}

// CardService provides card management operations. Every method takes the
// calling principal and enforces the admin/owner access rules itself.
type CardService interface {
	// GetCard retrieves a card by ID for an admin or the card's owner.
	GetCard(ctx context.Context, p Principal, cardID uuid.UUID) (*domain.Card, error)

	// GetBalance retrieves a card's balance for an admin or the card's owner.
	GetBalance(ctx context.Context, p Principal, cardID uuid.UUID) (decimal.Decimal, error)

	// ListByOwner lists a user's cards, paged. Admins may list anyone's;
	// users only their own.
	ListByOwner(
		ctx context.Context,
		p Principal,
		ownerID uuid.UUID,
		page store.PageRequest,
	) (*store.Page[*domain.Card], error)

	// ListAll lists all cards, paged. Admin only.
	ListAll(ctx context.Context, p Principal, page store.PageRequest) (*store.Page[*domain.Card], error)

	// CreateCard issues a new card for an existing user. Admin only.
	CreateCard(ctx context.Context, p Principal, params CreateCardParams) (*domain.Card, error)

	// UpdateCard changes a card's expiry and balance. Admin only; expired
	// and blocked cards are rejected.
	UpdateCard(
		ctx context.Context,
		p Principal,
		cardID uuid.UUID,
		params UpdateCardParams,
	) (*domain.Card, error)

	// BlockCard blocks a card. Admins may block any card; owners their own.
	// Expired cards are rejected.
	BlockCard(ctx context.Context, p Principal, cardID uuid.UUID) (*domain.Card, error)

	// UnlockCard returns a blocked card to active. Admin only; expired
	// cards are rejected.
	UnlockCard(ctx context.Context, p Principal, cardID uuid.UUID) (*domain.Card, error)

	// DeleteCard removes a card. Admin only; cards holding a positive
	// balance are rejected.
	DeleteCard(ctx context.Context, p Principal, cardID uuid.UUID) error
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cardStore store.CardStore
	userStore store.UserStore
	identity  *CardIdentity
	logger    *slog.Logger
	timeFunc  func() time.Time // Injectable for testing
}

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cardStore store.CardStore,
	userStore store.UserStore,
	identity *CardIdentity,
	logger *slog.Logger,
) (CardService, error) {
	if cardStore == nil {
		return nil, domain.NewValidationError("cardStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if identity == nil {
		return nil, domain.NewValidationError("identity", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cardStore: cardStore,
		userStore: userStore,
		identity:  identity,
		logger:    logger.With(slog.String("component", "card_service")),
		timeFunc:  time.Now,
	}, nil
}

// getAuthorized loads a card and checks the principal may view it.
func (s *cardServiceImpl) getAuthorized(
	ctx context.Context,
	p Principal,
	cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccessCard(card) {
		return nil, ErrNotOwned
	}
	s.refreshStatus(card)
	return card, nil
}

// refreshStatus applies expiry to the card's status in place. Stored rows
// are never rewritten on read; expiry is a property of time, not state.
func (s *cardServiceImpl) refreshStatus(card *domain.Card) {
	card.Status = domain.DeriveStatus(card.Expiry, card.Status, s.timeFunc())
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(
	ctx context.Context,
	p Principal,
	cardID uuid.UUID,
) (*domain.Card, error) {
	return s.getAuthorized(ctx, p, cardID)
}

// GetBalance implements CardService.GetBalance
func (s *cardServiceImpl) GetBalance(
	ctx context.Context,
	p Principal,
	cardID uuid.UUID,
) (decimal.Decimal, error) {
	card, err := s.getAuthorized(ctx, p, cardID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return card.Balance, nil
}

// ListByOwner implements CardService.ListByOwner
func (s *cardServiceImpl) ListByOwner(
	ctx context.Context,
	p Principal,
	ownerID uuid.UUID,
	page store.PageRequest,
) (*store.Page[*domain.Card], error) {
	if !p.CanAccessUser(ownerID) {
		return nil, ErrNotOwned
	}

	result, err := s.cardStore.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}
	for _, card := range result.Items {
		s.refreshStatus(card)
	}
	return result, nil
}

// ListAll implements CardService.ListAll
func (s *cardServiceImpl) ListAll(
	ctx context.Context,
	p Principal,
	page store.PageRequest,
) (*store.Page[*domain.Card], error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	result, err := s.cardStore.List(ctx, page)
	if err != nil {
		return nil, err
	}
	for _, card := range result.Items {
		s.refreshStatus(card)
	}
	return result, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(
	ctx context.Context,
	p Principal,
	params CreateCardParams,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	// Owner must exist before anything else is computed.
	owner, err := s.userStore.GetByID(ctx, params.OwnerID)
	if err != nil {
		return nil, err
	}

	unique, err := s.identity.IsUnique(ctx, params.Number)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, store.ErrCardNumberExists
	}

	numberHash, err := s.identity.Hash(params.Number)
	if err != nil {
		log.Error("failed to hash card number", slog.String("error", err.Error()))
		return nil, NewCardServiceError("create_card", "failed to hash card number", err)
	}

	card, err := domain.NewCard(
		owner.ID,
		numberHash,
		LookupHash(params.Number),
		MaskNumber(params.Number),
		params.Expiry,
		params.InitialBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		return nil, err
	}

	log.Info("card issued",
		slog.String("card_id", card.ID.String()),
		slog.String("owner_id", owner.ID.String()),
		slog.String("masked_number", card.MaskedNumber))
	return card, nil
}

// UpdateCard implements CardService.UpdateCard
func (s *cardServiceImpl) UpdateCard(
	ctx context.Context,
	p Principal,
	cardID uuid.UUID,
	params UpdateCardParams,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	now := s.timeFunc()
	if err := domain.ValidateCardForUpdate(card, now); err != nil {
		return nil, err
	}
	if params.Balance.IsNegative() {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, domain.ErrCardNegativeBalance)
	}

	card.Expiry = params.Expiry
	card.Balance = params.Balance
	card.Status = domain.DeriveStatus(card.Expiry, card.Status, now)
	card.UpdatedAt = now.UTC()

	if err := s.cardStore.Update(ctx, card); err != nil {
		return nil, err
	}

	log.Info("card updated",
		slog.String("card_id", card.ID.String()),
		slog.String("status", string(card.Status)))
	return card, nil
}

// BlockCard implements CardService.BlockCard
func (s *cardServiceImpl) BlockCard(
	ctx context.Context,
	p Principal,
	cardID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !p.CanAccessCard(card) {
		return nil, ErrNotOwned
	}

	now := s.timeFunc()
	if err := domain.ValidateCardForBlock(card, now); err != nil {
		return nil, err
	}

	card.Block(now)
	if err := s.cardStore.Update(ctx, card); err != nil {
		return nil, err
	}

	log.Info("card blocked", slog.String("card_id", card.ID.String()))
	return card, nil
}

// UnlockCard implements CardService.UnlockCard
func (s *cardServiceImpl) UnlockCard(
	ctx context.Context,
	p Principal,
	cardID uuid.UUID,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	now := s.timeFunc()
	if err := domain.ValidateCardForUnlock(card, now); err != nil {
		return nil, err
	}

	card.Activate(now)
	if err := s.cardStore.Update(ctx, card); err != nil {
		return nil, err
	}

	log.Info("card unlocked", slog.String("card_id", card.ID.String()))
	return card, nil
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, p Principal, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.IsAdmin() {
		return ErrForbidden
	}

	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	if err := domain.ValidateCardForDelete(card); err != nil {
		return err
	}

	if err := s.cardStore.Delete(ctx, cardID); err != nil {
		return err
	}

	log.Info("card deleted", slog.String("card_id", cardID.String()))
	return nil
}
