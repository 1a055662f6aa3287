package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/platform/logger"
	"github.com/avelkov/cardvault/internal/store"
)

// TransferService moves balance between two cards owned by the same user.
type TransferService interface {
	// Transfer debits amount from the source card and credits it to the
	// target card atomically. The principal must own both cards.
	Transfer(
		ctx context.Context,
		p Principal,
		sourceID, targetID uuid.UUID,
		amount decimal.Decimal,
	) error
}

// transferServiceImpl implements the TransferService interface
type transferServiceImpl struct {
	db        *sql.DB
	cardStore store.CardStore
	logger    *slog.Logger
	timeFunc  func() time.Time                              // Injectable for testing
	runTx     func(context.Context, *sql.DB, store.TxFn) error // Injectable for testing
}

// NewTransferService creates a new TransferService.
// It returns an error if any of the required dependencies are nil.
func NewTransferService(
	db *sql.DB,
	cardStore store.CardStore,
	logger *slog.Logger,
) (TransferService, error) {
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if cardStore == nil {
		return nil, domain.NewValidationError("cardStore", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &transferServiceImpl{
		db:        db,
		cardStore: cardStore,
		logger:    logger.With(slog.String("component", "transfer_service")),
		timeFunc:  time.Now,
		runTx:     store.RunInTransaction,
	}, nil
}

// Transfer implements TransferService.Transfer
//
// The two cards are locked inside the transaction in ascending ID order so
// that concurrent transfers touching the same pair cannot deadlock, and the
// sufficiency check runs against the locked rows.
func (s *transferServiceImpl) Transfer(
	ctx context.Context,
	p Principal,
	sourceID, targetID uuid.UUID,
	amount decimal.Decimal,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if sourceID == targetID {
		return domain.ErrSameCardTransfer
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer amount must be positive", domain.ErrValidation)
	}

	err := s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.cardStore.WithTx(tx)

		source, target, err := lockPair(ctx, txStore, sourceID, targetID)
		if err != nil {
			return err
		}

		if !p.Is(source.OwnerID) || !p.Is(target.OwnerID) {
			return ErrNotOwned
		}

		now := s.timeFunc()
		if err := domain.ValidateCardsForTransfer(source, target, now); err != nil {
			return err
		}
		if source.Balance.LessThan(amount) {
			return domain.ErrInsufficientBalance
		}

		source.Balance = source.Balance.Sub(amount)
		target.Balance = target.Balance.Add(amount)
		source.UpdatedAt = now.UTC()
		target.UpdatedAt = now.UTC()

		if err := txStore.Update(ctx, source); err != nil {
			return NewTransferServiceError("transfer", "failed to debit source card", err)
		}
		if err := txStore.Update(ctx, target); err != nil {
			return NewTransferServiceError("transfer", "failed to credit target card", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info("transfer completed",
		slog.String("source_card_id", sourceID.String()),
		slog.String("target_card_id", targetID.String()),
		slog.String("amount", amount.String()))
	return nil
}

// lockPair row-locks both cards in ascending ID order and returns them as
// (source, target) regardless of which locked first.
func lockPair(
	ctx context.Context,
	cards store.CardStore,
	sourceID, targetID uuid.UUID,
) (source, target *domain.Card, err error) {
	firstID, secondID := sourceID, targetID
	if bytes.Compare(secondID[:], firstID[:]) < 0 {
		firstID, secondID = secondID, firstID
	}

	first, err := cards.GetByIDForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := cards.GetByIDForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}

	if first.ID == sourceID {
		return first, second, nil
	}
	return second, first, nil
}
