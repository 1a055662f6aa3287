package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func futureExpiry() YearMonth {
	return YearMonthOf(time.Now().AddDate(2, 0, 0))
}

func pastExpiry() YearMonth {
	return YearMonthOf(time.Now().AddDate(-1, 0, 0))
}

func TestNewCard(t *testing.T) {
	t.Parallel()
	ownerID := uuid.New()
	expiry := futureExpiry()
	balance := decimal.RequireFromString("100.00")

	card, err := NewCard(ownerID, "bcrypt-hash", "lookup-hash", "1234 **** **** 3456", expiry, balance)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if card.OwnerID != ownerID {
		t.Errorf("Expected owner ID %s, got %s", ownerID, card.OwnerID)
	}

	if card.Status != CardStatusActive {
		t.Errorf("Expected status %s, got %s", CardStatusActive, card.Status)
	}

	if !card.Balance.Equal(balance) {
		t.Errorf("Expected balance %s, got %s", balance, card.Balance)
	}

	if card.CreatedAt.IsZero() || card.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Test invalid owner ID
	_, err = NewCard(uuid.Nil, "h", "q", "m", expiry, balance)
	if err != ErrCardOwnerIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardOwnerIDEmpty, err)
	}

	// Test missing hashes
	_, err = NewCard(ownerID, "", "q", "m", expiry, balance)
	if err != ErrCardNumberHashEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardNumberHashEmpty, err)
	}

	_, err = NewCard(ownerID, "h", "", "m", expiry, balance)
	if err != ErrCardLookupHashEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardLookupHashEmpty, err)
	}

	// Test missing expiry
	_, err = NewCard(ownerID, "h", "q", "m", YearMonth{}, balance)
	if err != ErrCardExpiryEmpty {
		t.Errorf("Expected error %v, got %v", ErrCardExpiryEmpty, err)
	}

	// Test negative balance
	_, err = NewCard(ownerID, "h", "q", "m", expiry, decimal.RequireFromString("-0.01"))
	if err != ErrCardNegativeBalance {
		t.Errorf("Expected error %v, got %v", ErrCardNegativeBalance, err)
	}
}

func TestNewCardWithPastExpiryIsExpired(t *testing.T) {
	t.Parallel()
	card, err := NewCard(uuid.New(), "h", "q", "m", pastExpiry(), decimal.Zero)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if card.Status != CardStatusExpired {
		t.Errorf("Expected status %s, got %s", CardStatusExpired, card.Status)
	}
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)

	// Past expiry overrides any requested status.
	past := YearMonth{Year: 2026, Month: time.May}
	if got := DeriveStatus(past, CardStatusActive, now); got != CardStatusExpired {
		t.Errorf("Expected %s, got %s", CardStatusExpired, got)
	}
	if got := DeriveStatus(past, CardStatusBlocked, now); got != CardStatusExpired {
		t.Errorf("Expected %s, got %s", CardStatusExpired, got)
	}

	// The expiry month itself is still valid.
	current := YearMonth{Year: 2026, Month: time.June}
	if got := DeriveStatus(current, CardStatusActive, now); got != CardStatusActive {
		t.Errorf("Expected %s, got %s", CardStatusActive, got)
	}

	future := YearMonth{Year: 2027, Month: time.January}
	if got := DeriveStatus(future, CardStatusBlocked, now); got != CardStatusBlocked {
		t.Errorf("Expected %s, got %s", CardStatusBlocked, got)
	}
}

func TestCardBlockAndActivate(t *testing.T) {
	t.Parallel()
	now := time.Now()

	card, err := NewCard(uuid.New(), "h", "q", "m", futureExpiry(), decimal.Zero)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	card.Block(now)
	if card.Status != CardStatusBlocked {
		t.Errorf("Expected status %s, got %s", CardStatusBlocked, card.Status)
	}

	card.Activate(now)
	if card.Status != CardStatusActive {
		t.Errorf("Expected status %s, got %s", CardStatusActive, card.Status)
	}

	// Neither transition applies to an expired card.
	expired := &Card{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		NumberHash: "h",
		LookupHash: "q",
		Expiry:     pastExpiry(),
		Status:     CardStatusExpired,
		Balance:    decimal.Zero,
	}

	expired.Block(now)
	if expired.Status != CardStatusExpired {
		t.Errorf("Expected status %s after Block, got %s", CardStatusExpired, expired.Status)
	}

	expired.Activate(now)
	if expired.Status != CardStatusExpired {
		t.Errorf("Expected status %s after Activate, got %s", CardStatusExpired, expired.Status)
	}
}

func TestActivateDoesNotResurrectPastExpiry(t *testing.T) {
	t.Parallel()
	now := time.Now()

	// Status says blocked but the expiry date has passed; Activate must not
	// make the card active again.
	card := &Card{
		ID:         uuid.New(),
		OwnerID:    uuid.New(),
		NumberHash: "h",
		LookupHash: "q",
		Expiry:     pastExpiry(),
		Status:     CardStatusBlocked,
		Balance:    decimal.Zero,
	}

	card.Activate(now)
	if card.Status == CardStatusActive {
		t.Error("Expected Activate to be refused for a card past its expiry")
	}
}
