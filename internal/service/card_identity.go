package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/avelkov/cardvault/internal/platform/logger"
	"github.com/avelkov/cardvault/internal/service/auth"
	"github.com/avelkov/cardvault/internal/store"
)

// maskableLength is the minimum digit count a number needs before masking
// applies. Shorter inputs are returned unchanged.
const maskableLength = 12

// MaskNumber formats a card number for display, keeping the first and last
// four digits. Inputs with fewer than twelve digits are returned as given.
func MaskNumber(number string) string {
	if len(number) < maskableLength {
		return number
	}

	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	cleaned := digits.String()
	if len(cleaned) < maskableLength {
		return number
	}

	return cleaned[:4] + " **** **** " + cleaned[len(cleaned)-4:]
}

// LookupHash computes the fast, deterministic hash of a card number used to
// narrow uniqueness checks to a handful of candidate rows. It is not a
// credential: equality of lookup hashes alone never proves equality of
// numbers.
func LookupHash(number string) string {
	sum := sha256.Sum256([]byte(number))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// CardIdentity derives the stored identity of a card from its number:
// the masked display form, the bcrypt credential hash, and the SHA-256
// lookup hash. The raw number is never persisted.
type CardIdentity struct {
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	cardStore store.CardStore
	logger    *slog.Logger
}

// NewCardIdentity creates a CardIdentity service.
func NewCardIdentity(
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	cardStore store.CardStore,
	logger *slog.Logger,
) *CardIdentity {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardIdentity{
		hasher:    hasher,
		verifier:  verifier,
		cardStore: cardStore,
		logger:    logger.With(slog.String("component", "card_identity")),
	}
}

// Hash computes the slow credential hash of the card number.
func (ci *CardIdentity) Hash(number string) (string, error) {
	return ci.hasher.Hash(number)
}

// IsUnique reports whether no stored card carries this number. The check is
// two-tier: the lookup hash narrows the candidate set, then the credential
// hash of each candidate is verified against the number. A lookup collision
// with no credential match is still unique.
func (ci *CardIdentity) IsUnique(ctx context.Context, number string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, ci.logger)

	candidates, err := ci.cardStore.FindByLookupHash(ctx, LookupHash(number))
	if err != nil {
		log.Error("failed to load candidate cards for uniqueness check",
			slog.String("error", err.Error()))
		return false, NewCardServiceError("uniqueness_check", "failed to load candidates", err)
	}

	for _, candidate := range candidates {
		if ci.verifier.Compare(candidate.NumberHash, number) == nil {
			return false, nil
		}
	}

	return true, nil
}
