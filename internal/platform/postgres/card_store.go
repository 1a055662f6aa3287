package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/platform/logger"
	"github.com/avelkov/cardvault/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

const cardColumns = "id, owner_id, number_hash, lookup_hash, masked_number, expiry, status, balance, created_at, updated_at"

// scanCard reads one card row from any row scanner. The balance column is
// NUMERIC(15,2) and scans directly into a decimal.Decimal.
func scanCard(row interface{ Scan(dest ...any) error }) (*domain.Card, error) {
	var card domain.Card
	var status string

	err := row.Scan(
		&card.ID,
		&card.OwnerID,
		&card.NumberHash,
		&card.LookupHash,
		&card.MaskedNumber,
		&card.Expiry,
		&status,
		&card.Balance,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.Status = domain.CardStatus(status)
	return &card, nil
}

// Create implements store.CardStore.Create
// Returns store.ErrCardNumberExists on a credential-hash collision and
// store.ErrUserNotFound when the owner does not exist.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.OwnerID,
		card.NumberHash,
		card.LookupHash,
		card.MaskedNumber,
		card.Expiry,
		string(card.Status),
		card.Balance,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "cards_number_hash_key") {
			log.Warn("duplicate card number during card creation",
				slog.String("card_id", card.ID.String()))
			return store.ErrCardNumberExists
		}

		if isForeignKeyViolation(err) {
			log.Warn("owner not found during card creation",
				slog.String("card_id", card.ID.String()),
				slog.String("owner_id", card.OwnerID.String()))
			return fmt.Errorf("%w: owner %s", store.ErrUserNotFound, card.OwnerID)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("owner_id", card.OwnerID.String()))
	return nil
}

// getByID fetches a card with an optional FOR UPDATE row lock.
func (s *PostgresCardStore) getByID(
	ctx context.Context,
	id uuid.UUID,
	forUpdate bool,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, fmt.Errorf("%w: id %s", store.ErrCardNotFound, id)
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return card, nil
}

// GetByID implements store.CardStore.GetByID
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return s.getByID(ctx, id, false)
}

// GetByIDForUpdate implements store.CardStore.GetByIDForUpdate
// The row lock only outlives this call when the store is bound to a
// transaction via WithTx.
func (s *PostgresCardStore) GetByIDForUpdate(
	ctx context.Context,
	id uuid.UUID,
) (*domain.Card, error) {
	return s.getByID(ctx, id, true)
}

// FindByLookupHash implements store.CardStore.FindByLookupHash
// An empty result is the success path of a uniqueness check.
func (s *PostgresCardStore) FindByLookupHash(
	ctx context.Context,
	lookupHash string,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE lookup_hash = $1`

	rows, err := s.db.QueryContext(ctx, query, lookupHash)
	if err != nil {
		log.Error("failed to find cards by lookup hash",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cards []*domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cards, nil
}

// listPage runs a paged card query with its matching count query.
func (s *PostgresCardStore) listPage(
	ctx context.Context,
	page store.PageRequest,
	countQuery, listQuery string,
	args ...any,
) (*store.Page[*domain.Card], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	page = page.Normalize()

	var total int64
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count cards", slog.String("error", err.Error()))
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, listQuery, append(args, page.Limit, page.Offset())...)
	if err != nil {
		log.Error("failed to list cards", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Card, 0, page.Limit)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &store.Page[*domain.Card]{
		Items:      cards,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalCount: total,
	}, nil
}

// ListByOwner implements store.CardStore.ListByOwner
func (s *PostgresCardStore) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
	page store.PageRequest,
) (*store.Page[*domain.Card], error) {
	return s.listPage(
		ctx,
		page,
		`SELECT COUNT(*) FROM cards WHERE owner_id = $1`,
		`SELECT `+cardColumns+` FROM cards WHERE owner_id = $1 ORDER BY created_at, id LIMIT $2 OFFSET $3`,
		ownerID,
	)
}

// List implements store.CardStore.List
func (s *PostgresCardStore) List(
	ctx context.Context,
	page store.PageRequest,
) (*store.Page[*domain.Card], error) {
	return s.listPage(
		ctx,
		page,
		`SELECT COUNT(*) FROM cards`,
		`SELECT `+cardColumns+` FROM cards ORDER BY created_at, id LIMIT $1 OFFSET $2`,
	)
}

// CountByOwner implements store.CardStore.CountByOwner
func (s *PostgresCardStore) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int64
	query := `SELECT COUNT(*) FROM cards WHERE owner_id = $1`

	if err := s.db.QueryRowContext(ctx, query, ownerID).Scan(&count); err != nil {
		log.Error("failed to count cards by owner",
			slog.String("error", err.Error()),
			slog.String("owner_id", ownerID.String()))
		return 0, err
	}

	return count, nil
}

// ExistsByIDAndOwner implements store.CardStore.ExistsByIDAndOwner
func (s *PostgresCardStore) ExistsByIDAndOwner(
	ctx context.Context,
	id, ownerID uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM cards WHERE id = $1 AND owner_id = $2)`

	if err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(&exists); err != nil {
		log.Error("failed to check card ownership",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()),
			slog.String("owner_id", ownerID.String()))
		return false, err
	}

	return exists, nil
}

// Update implements store.CardStore.Update
// Only mutable fields are written; the hashes, masked number, and owner
// are immutable once created.
func (s *PostgresCardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE cards
		SET expiry = $2, status = $3, balance = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.Expiry,
		string(card.Status),
		card.Balance,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Debug("card not found during update", slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: id %s", store.ErrCardNotFound, card.ID)
	}

	log.Info("card updated successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("status", string(card.Status)))
	return nil
}

// Delete implements store.CardStore.Delete
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Debug("card not found during delete", slog.String("card_id", id.String()))
		return fmt.Errorf("%w: id %s", store.ErrCardNotFound, id)
	}

	log.Info("card deleted successfully", slog.String("card_id", id.String()))
	return nil
}
