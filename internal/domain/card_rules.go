package domain

import (
	"fmt"
	"time"
)

// Lifecycle preconditions for card mutations. Each check is synchronous and
// runs before any state is written; a non-nil return means the operation
// must be rejected without side effects.

// ValidateCardForUpdate rejects updates to expired or blocked cards.
func ValidateCardForUpdate(c *Card, now time.Time) error {
	if c.IsExpired(now) || c.Status == CardStatusExpired {
		return fmt.Errorf("%w: card id %s", ErrCardExpired, c.ID)
	}

	if c.Status == CardStatusBlocked {
		return fmt.Errorf("%w: card id %s", ErrCardBlocked, c.ID)
	}

	return nil
}

// ValidateCardForBlock rejects blocking an expired card.
func ValidateCardForBlock(c *Card, now time.Time) error {
	if c.IsExpired(now) || c.Status == CardStatusExpired {
		return fmt.Errorf("%w: card id %s", ErrCardExpired, c.ID)
	}
	return nil
}

// ValidateCardForUnlock rejects unblocking an expired card.
func ValidateCardForUnlock(c *Card, now time.Time) error {
	if c.IsExpired(now) || c.Status == CardStatusExpired {
		return fmt.Errorf("%w: card id %s", ErrCardExpired, c.ID)
	}
	return nil
}

// ValidateCardForDelete rejects deleting a card whose balance is not zero.
func ValidateCardForDelete(c *Card) error {
	if c.Balance.IsPositive() {
		return fmt.Errorf("%w: card id %s", ErrCardHasBalance, c.ID)
	}
	return nil
}

// ValidateCardsForTransfer rejects a transfer when either card is expired
// or blocked. Source is checked before target so the first failing card is
// the one named in the error.
func ValidateCardsForTransfer(source, target *Card, now time.Time) error {
	for _, c := range []*Card{source, target} {
		if c.IsExpired(now) || c.Status == CardStatusExpired {
			return fmt.Errorf("%w: card id %s", ErrCardExpired, c.ID)
		}
		if c.Status == CardStatusBlocked {
			return fmt.Errorf("%w: card id %s", ErrCardBlocked, c.ID)
		}
	}
	return nil
}
