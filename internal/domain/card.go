package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardOwnerIDEmpty is returned when a card's owner ID is empty or nil.
	ErrCardOwnerIDEmpty = errors.New("card owner ID cannot be empty")

	// ErrCardNumberHashEmpty is returned when a card's credential hash is empty.
	ErrCardNumberHashEmpty = errors.New("card number hash cannot be empty")

	// ErrCardLookupHashEmpty is returned when a card's lookup hash is empty.
	ErrCardLookupHashEmpty = errors.New("card lookup hash cannot be empty")

	// ErrCardExpiryEmpty is returned when a card's expiry date is unset.
	ErrCardExpiryEmpty = errors.New("card expiry date cannot be empty")

	// ErrCardNegativeBalance is returned when a card's balance is negative.
	ErrCardNegativeBalance = errors.New("card balance cannot be negative")

	// ErrCardInvalidStatus is returned when a card status is not a known value.
	ErrCardInvalidStatus = errors.New("invalid card status")
)

// CardStatus is the lifecycle state of a card.
type CardStatus string

// Card lifecycle states.
const (
	CardStatusActive  CardStatus = "active"
	CardStatusBlocked CardStatus = "blocked"
	CardStatusExpired CardStatus = "expired"
)

// IsValid reports whether the status is one of the known states.
func (s CardStatus) IsValid() bool {
	switch s {
	case CardStatusActive, CardStatusBlocked, CardStatusExpired:
		return true
	}
	return false
}

// Card represents a bank card owned by a user. The full card number is
// never stored: NumberHash is an irreversible bcrypt hash used for verify
// operations, LookupHash is a fast SHA-256 digest used only to shortlist
// candidates during the uniqueness check, and MaskedNumber is the only
// display form ("1234 **** **** 3456").
type Card struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      uuid.UUID       `json:"owner_id"`
	NumberHash   string          `json:"-"`
	LookupHash   string          `json:"-"`
	MaskedNumber string          `json:"masked_number"`
	Expiry       YearMonth       `json:"expiry"`
	Status       CardStatus      `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewCard creates a new Card for the given owner. The caller supplies the
// already-derived hashes and masked form; raw card numbers never reach this
// package. Returns an error if validation fails.
func NewCard(
	ownerID uuid.UUID,
	numberHash, lookupHash, maskedNumber string,
	expiry YearMonth,
	balance decimal.Decimal,
) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		NumberHash:   numberHash,
		LookupHash:   lookupHash,
		MaskedNumber: maskedNumber,
		Expiry:       expiry,
		Status:       DeriveStatus(expiry, CardStatusActive, now),
		Balance:      balance,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.OwnerID == uuid.Nil {
		return ErrCardOwnerIDEmpty
	}

	if c.NumberHash == "" {
		return ErrCardNumberHashEmpty
	}

	if c.LookupHash == "" {
		return ErrCardLookupHashEmpty
	}

	if c.Expiry.IsZero() {
		return ErrCardExpiryEmpty
	}

	if !c.Status.IsValid() {
		return ErrCardInvalidStatus
	}

	if c.Balance.IsNegative() {
		return ErrCardNegativeBalance
	}

	return nil
}

// IsExpired reports whether the card's expiry month is strictly before the
// month containing now.
func (c *Card) IsExpired(now time.Time) bool {
	return c.Expiry.Before(YearMonthOf(now))
}

// DeriveStatus computes the status a card must carry when persisted:
// expiry in the past overrides any requested status. Pure function, called
// by services before every write and applied to every read.
func DeriveStatus(expiry YearMonth, requested CardStatus, now time.Time) CardStatus {
	if expiry.Before(YearMonthOf(now)) {
		return CardStatusExpired
	}
	return requested
}

// Block transitions the card to blocked unless it is expired.
func (c *Card) Block(now time.Time) {
	if c.Status != CardStatusExpired && !c.IsExpired(now) {
		c.Status = CardStatusBlocked
		c.UpdatedAt = now.UTC()
	}
}

// Activate transitions the card to active unless it is expired or in fact
// past its expiry date.
func (c *Card) Activate(now time.Time) {
	if c.Status != CardStatusExpired && !c.IsExpired(now) {
		c.Status = CardStatusActive
		c.UpdatedAt = now.UTC()
	}
}
