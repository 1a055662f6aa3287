package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/mocks"
	"github.com/avelkov/cardvault/internal/service"
)

// stubTransferService lets handler tests observe transfer calls without a
// database-backed transfer engine.
type stubTransferService struct {
	transferFn func(ctx context.Context, p service.Principal, sourceID, targetID uuid.UUID, amount decimal.Decimal) error
}

func (s *stubTransferService) Transfer(
	ctx context.Context,
	p service.Principal,
	sourceID, targetID uuid.UUID,
	amount decimal.Decimal,
) error {
	if s.transferFn != nil {
		return s.transferFn(ctx, p, sourceID, targetID, amount)
	}
	return nil
}

type cardHandlerFixture struct {
	cardStore  *mocks.MockCardStore
	userStore  *mocks.MockUserStore
	transfers  *stubTransferService
	handler    *CardHandler
	nextNumber int64
}

func newCardHandlerFixture(t *testing.T) *cardHandlerFixture {
	t.Helper()

	cardStore := mocks.NewMockCardStore()
	userStore := mocks.NewMockUserStore()
	identity := service.NewCardIdentity(
		&mocks.MockPasswordHasher{},
		&mocks.MockPasswordVerifier{},
		cardStore,
		nil,
	)
	cardService, err := service.NewCardService(cardStore, userStore, identity, nil)
	require.NoError(t, err)

	transfers := &stubTransferService{}
	return &cardHandlerFixture{
		cardStore: cardStore,
		userStore: userStore,
		transfers: transfers,
		handler:   NewCardHandler(cardService, transfers, nil),
	}
}

func (f *cardHandlerFixture) addUser(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Test", "User", email, "hashed:password1234567", role)
	require.NoError(t, err)
	f.userStore.Users[user.ID] = user
	return user
}

func (f *cardHandlerFixture) addCard(t *testing.T, ownerID uuid.UUID, balance string) *domain.Card {
	t.Helper()
	expiry := domain.YearMonthOf(time.Now().UTC().AddDate(3, 0, 0))
	f.nextNumber++
	number := fmt.Sprintf("4%015d", f.nextNumber)
	card, err := domain.NewCard(
		ownerID,
		"hashed:"+number,
		service.LookupHash(number),
		service.MaskNumber(number),
		expiry,
		decimal.RequireFromString(balance),
	)
	require.NoError(t, err)
	f.cardStore.Cards[card.ID] = card
	return card
}

func TestGetCardHandler(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	admin := f.addUser(t, "admin@example.com", domain.RoleAdmin)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)
	other := f.addUser(t, "other@example.com", domain.RoleUser)
	card := f.addCard(t, owner.ID, "100.00")

	t.Run("owner reads own card", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/"+card.ID.String(), nil,
			adminOf(owner), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.GetCard(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp CardResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, card.ID, resp.ID)
		assert.Equal(t, card.MaskedNumber, resp.MaskedNumber)
		assert.Contains(t, resp.MaskedNumber, "****")
	})

	t.Run("admin reads any card", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/"+card.ID.String(), nil,
			adminOf(admin), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.GetCard(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/"+card.ID.String(), nil,
			adminOf(other), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.GetCard(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("unknown card is not found", func(t *testing.T) {
		missing := uuid.New()
		req := authedRequest(t, "GET", "/api/v1/cards/"+missing.String(), nil,
			adminOf(admin), map[string]string{"cardId": missing.String()})
		recorder := httptest.NewRecorder()

		f.handler.GetCard(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestGetCardBalanceHandler(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)
	card := f.addCard(t, owner.ID, "250.50")

	req := authedRequest(t, "GET", "/api/v1/cards/"+card.ID.String()+"/balance", nil,
		adminOf(owner), map[string]string{"cardId": card.ID.String()})
	recorder := httptest.NewRecorder()

	f.handler.GetCardBalance(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CardBalanceResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, card.ID, resp.CardID)
	assert.True(t, resp.Balance.Equal(decimal.RequireFromString("250.50")))
}

func TestListCardHandlers(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	admin := f.addUser(t, "admin@example.com", domain.RoleAdmin)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)
	other := f.addUser(t, "other@example.com", domain.RoleUser)
	f.addCard(t, owner.ID, "10.00")
	f.addCard(t, owner.ID, "20.00")
	f.addCard(t, other.ID, "30.00")

	t.Run("own cards", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/user/me", nil, adminOf(owner), nil)
		recorder := httptest.NewRecorder()

		f.handler.ListOwnCards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp PageResponse[CardResponse]
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Len(t, resp.Content, 2)
	})

	t.Run("admin lists another user's cards", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/user/"+other.ID.String(), nil,
			adminOf(admin), map[string]string{"userId": other.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.ListUserCards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp PageResponse[CardResponse]
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Len(t, resp.Content, 1)
	})

	t.Run("user cannot list another user's cards", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/user/"+other.ID.String(), nil,
			adminOf(owner), map[string]string{"userId": other.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.ListUserCards(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("admin lists all cards", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/all", nil, adminOf(admin), nil)
		recorder := httptest.NewRecorder()

		f.handler.ListAllCards(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp PageResponse[CardResponse]
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, int64(3), resp.TotalElements)
	})

	t.Run("non-admin cannot list all cards", func(t *testing.T) {
		req := authedRequest(t, "GET", "/api/v1/cards/all", nil, adminOf(owner), nil)
		recorder := httptest.NewRecorder()

		f.handler.ListAllCards(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestCreateCardHandler(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	admin := f.addUser(t, "admin@example.com", domain.RoleAdmin)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)

	t.Run("admin issues card", func(t *testing.T) {
		req := authedRequest(t, "POST", "/api/v1/cards", map[string]interface{}{
			"owner_id":        owner.ID.String(),
			"number":          "4111222233334444",
			"expiry":          "2030-06",
			"initial_balance": "500.00",
		}, adminOf(admin), nil)
		recorder := httptest.NewRecorder()

		f.handler.CreateCard(recorder, req)

		require.Equal(t, http.StatusCreated, recorder.Code)
		var resp CardResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, owner.ID, resp.OwnerID)
		assert.Equal(t, "4111 **** **** 4444", resp.MaskedNumber)
		assert.Equal(t, domain.CardStatusActive, resp.Status)
	})

	t.Run("duplicate number conflicts", func(t *testing.T) {
		req := authedRequest(t, "POST", "/api/v1/cards", map[string]interface{}{
			"owner_id": owner.ID.String(),
			"number":   "4111222233334444",
			"expiry":   "2030-06",
		}, adminOf(admin), nil)
		recorder := httptest.NewRecorder()

		f.handler.CreateCard(recorder, req)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("unknown owner is not found", func(t *testing.T) {
		req := authedRequest(t, "POST", "/api/v1/cards", map[string]interface{}{
			"owner_id": uuid.New().String(),
			"number":   "4111222233335555",
			"expiry":   "2030-06",
		}, adminOf(admin), nil)
		recorder := httptest.NewRecorder()

		f.handler.CreateCard(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("number too short is rejected", func(t *testing.T) {
		req := authedRequest(t, "POST", "/api/v1/cards", map[string]interface{}{
			"owner_id": owner.ID.String(),
			"number":   "41112222",
			"expiry":   "2030-06",
		}, adminOf(admin), nil)
		recorder := httptest.NewRecorder()

		f.handler.CreateCard(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("non-admin cannot issue cards", func(t *testing.T) {
		req := authedRequest(t, "POST", "/api/v1/cards", map[string]interface{}{
			"owner_id": owner.ID.String(),
			"number":   "4111222233336666",
			"expiry":   "2030-06",
		}, adminOf(owner), nil)
		recorder := httptest.NewRecorder()

		f.handler.CreateCard(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestUpdateCardHandler(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	admin := f.addUser(t, "admin@example.com", domain.RoleAdmin)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)
	card := f.addCard(t, owner.ID, "100.00")

	req := authedRequest(t, "PUT", "/api/v1/cards/"+card.ID.String(), map[string]interface{}{
		"expiry":  "2031-12",
		"balance": "750.00",
	}, adminOf(admin), map[string]string{"cardId": card.ID.String()})
	recorder := httptest.NewRecorder()

	f.handler.UpdateCard(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var resp CardResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.True(t, resp.Balance.Equal(decimal.RequireFromString("750.00")))
	assert.Equal(t, "2031-12", resp.Expiry.String())
}

func TestTransferHandler(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)
	source := f.addCard(t, owner.ID, "100.00")
	target := f.addCard(t, owner.ID, "50.00")

	t.Run("valid transfer", func(t *testing.T) {
		var gotSource, gotTarget uuid.UUID
		var gotAmount decimal.Decimal
		f.transfers.transferFn = func(
			ctx context.Context,
			p service.Principal,
			sourceID, targetID uuid.UUID,
			amount decimal.Decimal,
		) error {
			gotSource, gotTarget, gotAmount = sourceID, targetID, amount
			return nil
		}

		req := authedRequest(t, "PATCH", "/api/v1/cards/transfer", map[string]interface{}{
			"from_card_id": source.ID.String(),
			"to_card_id":   target.ID.String(),
			"amount":       "25.00",
		}, adminOf(owner), nil)
		recorder := httptest.NewRecorder()

		f.handler.Transfer(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, source.ID, gotSource)
		assert.Equal(t, target.ID, gotTarget)
		assert.True(t, gotAmount.Equal(decimal.RequireFromString("25.00")))
	})

	t.Run("insufficient balance maps to bad request", func(t *testing.T) {
		f.transfers.transferFn = func(
			ctx context.Context,
			p service.Principal,
			sourceID, targetID uuid.UUID,
			amount decimal.Decimal,
		) error {
			return domain.ErrInsufficientBalance
		}

		req := authedRequest(t, "PATCH", "/api/v1/cards/transfer", map[string]interface{}{
			"from_card_id": source.ID.String(),
			"to_card_id":   target.ID.String(),
			"amount":       "1000.00",
		}, adminOf(owner), nil)
		recorder := httptest.NewRecorder()

		f.handler.Transfer(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Insufficient balance")
	})

	t.Run("missing amount is rejected", func(t *testing.T) {
		req := authedRequest(t, "PATCH", "/api/v1/cards/transfer", map[string]interface{}{
			"from_card_id": source.ID.String(),
			"to_card_id":   target.ID.String(),
		}, adminOf(owner), nil)
		recorder := httptest.NewRecorder()

		f.handler.Transfer(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestBlockAndUnlockCardHandlers(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	admin := f.addUser(t, "admin@example.com", domain.RoleAdmin)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)
	card := f.addCard(t, owner.ID, "100.00")

	t.Run("owner blocks own card", func(t *testing.T) {
		req := authedRequest(t, "PATCH", "/api/v1/cards/"+card.ID.String()+"/block", nil,
			adminOf(owner), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.BlockCard(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp CardResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.CardStatusBlocked, resp.Status)
	})

	t.Run("owner cannot unlock", func(t *testing.T) {
		req := authedRequest(t, "PATCH", "/api/v1/cards/"+card.ID.String()+"/unlock", nil,
			adminOf(owner), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.UnlockCard(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("admin unlocks", func(t *testing.T) {
		req := authedRequest(t, "PATCH", "/api/v1/cards/"+card.ID.String()+"/unlock", nil,
			adminOf(admin), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.UnlockCard(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp CardResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.CardStatusActive, resp.Status)
	})
}

func TestDeleteCardHandler(t *testing.T) {
	t.Parallel()

	f := newCardHandlerFixture(t)
	admin := f.addUser(t, "admin@example.com", domain.RoleAdmin)
	owner := f.addUser(t, "owner@example.com", domain.RoleUser)

	t.Run("positive balance is rejected", func(t *testing.T) {
		card := f.addCard(t, owner.ID, "10.00")
		req := authedRequest(t, "DELETE", "/api/v1/cards/"+card.ID.String(), nil,
			adminOf(admin), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.DeleteCard(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Contains(t, f.cardStore.Cards, card.ID)
	})

	t.Run("zero balance deletes", func(t *testing.T) {
		card := f.addCard(t, owner.ID, "0.00")
		req := authedRequest(t, "DELETE", "/api/v1/cards/"+card.ID.String(), nil,
			adminOf(admin), map[string]string{"cardId": card.ID.String()})
		recorder := httptest.NewRecorder()

		f.handler.DeleteCard(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.NotContains(t, f.cardStore.Cards, card.ID)
	})
}
