package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/avelkov/cardvault/internal/api/shared"
	"github.com/avelkov/cardvault/internal/platform/logger"
	"github.com/avelkov/cardvault/internal/service"
)

// CardHandler handles card management and transfer HTTP requests.
type CardHandler struct {
	cardService     service.CardService
	transferService service.TransferService
	validator       *validator.Validate
	logger          *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(
	cardService service.CardService,
	transferService service.TransferService,
	logger *slog.Logger,
) *CardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{
		cardService:     cardService,
		transferService: transferService,
		validator:       validator.New(),
		logger:          logger.With(slog.String("component", "card_handler")),
	}
}

// GetCard handles GET /api/v1/cards/{cardId}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	cardID, ok := requirePathUUID(w, r, "cardId")
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(r.Context(), p, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetCardBalance handles GET /api/v1/cards/{cardId}/balance.
func (h *CardHandler) GetCardBalance(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	cardID, ok := requirePathUUID(w, r, "cardId")
	if !ok {
		return
	}

	balance, err := h.cardService.GetBalance(r.Context(), p, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardBalanceResponse{
		CardID:  cardID,
		Balance: balance,
	})
}

// ListOwnCards handles GET /api/v1/cards/user/me.
func (h *CardHandler) ListOwnCards(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	page, err := h.cardService.ListByOwner(r.Context(), p, p.UserID, getPageRequest(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(page, cardToResponse))
}

// ListUserCards handles GET /api/v1/cards/user/{userId}.
func (h *CardHandler) ListUserCards(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	ownerID, ok := requirePathUUID(w, r, "userId")
	if !ok {
		return
	}

	page, err := h.cardService.ListByOwner(r.Context(), p, ownerID, getPageRequest(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(page, cardToResponse))
}

// ListAllCards handles GET /api/v1/cards/all.
func (h *CardHandler) ListAllCards(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	page, err := h.cardService.ListAll(r.Context(), p, getPageRequest(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, pageToResponse(page, cardToResponse))
}

// CreateCard handles POST /api/v1/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), p, service.CreateCardParams{
		OwnerID:        req.OwnerID,
		Number:         req.Number,
		Expiry:         req.Expiry,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("card issued via admin endpoint",
		slog.String("card_id", card.ID.String()),
		slog.String("owner_id", card.OwnerID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// UpdateCard handles PUT /api/v1/cards/{cardId}.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	cardID, ok := requirePathUUID(w, r, "cardId")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.cardService.UpdateCard(r.Context(), p, cardID, service.UpdateCardParams{
		Expiry:  req.Expiry,
		Balance: req.Balance,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// Transfer handles PATCH /api/v1/cards/transfer.
func (h *CardHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	err := h.transferService.Transfer(r.Context(), p, req.FromCardID, req.ToCardID, req.Amount)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("transfer accepted",
		slog.String("from_card_id", req.FromCardID.String()),
		slog.String("to_card_id", req.ToCardID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// BlockCard handles PATCH /api/v1/cards/{cardId}/block.
func (h *CardHandler) BlockCard(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	cardID, ok := requirePathUUID(w, r, "cardId")
	if !ok {
		return
	}

	card, err := h.cardService.BlockCard(r.Context(), p, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// UnlockCard handles PATCH /api/v1/cards/{cardId}/unlock.
func (h *CardHandler) UnlockCard(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	cardID, ok := requirePathUUID(w, r, "cardId")
	if !ok {
		return
	}

	card, err := h.cardService.UnlockCard(r.Context(), p, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DeleteCard handles DELETE /api/v1/cards/{cardId}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	cardID, ok := requirePathUUID(w, r, "cardId")
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), p, cardID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
