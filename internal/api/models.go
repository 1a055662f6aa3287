package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// Role is the authenticated user's role
	Role domain.Role `json:"role"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateUserRequest defines the payload for the admin user-creation endpoint.
type CreateUserRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"required,min=12,max=72"`
	Role      string `json:"role"       validate:"required,oneof=user admin"`
}

// UpdateUserRequest defines the payload for the user update endpoint.
// Password is optional; an empty value keeps the stored credential.
type UpdateUserRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name"  validate:"required,max=100"`
	Email     string `json:"email"      validate:"required,email"`
	Password  string `json:"password"   validate:"omitempty,min=12,max=72"`
}

// UserResponse represents a user account. Password material never appears.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// userToResponse converts a domain user to its API representation.
func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CreateCardRequest defines the payload for the admin card-issue endpoint.
// Number is the raw card number; it is masked and hashed before storage.
type CreateCardRequest struct {
	OwnerID        uuid.UUID        `json:"owner_id"        validate:"required"`
	Number         string           `json:"number"          validate:"required,min=12,max=19"`
	Expiry         domain.YearMonth `json:"expiry"          validate:"required"`
	InitialBalance decimal.Decimal  `json:"initial_balance"`
}

// UpdateCardRequest defines the payload for the admin card update endpoint.
type UpdateCardRequest struct {
	Expiry  domain.YearMonth `json:"expiry"  validate:"required"`
	Balance decimal.Decimal  `json:"balance" validate:"required"`
}

// TransferRequest defines the payload for the balance transfer endpoint.
type TransferRequest struct {
	FromCardID uuid.UUID       `json:"from_card_id" validate:"required"`
	ToCardID   uuid.UUID       `json:"to_card_id"   validate:"required"`
	Amount     decimal.Decimal `json:"amount"       validate:"required"`
}

// CardResponse represents a card. Only the masked number is ever exposed.
type CardResponse struct {
	ID           uuid.UUID         `json:"id"`
	OwnerID      uuid.UUID         `json:"owner_id"`
	MaskedNumber string            `json:"masked_number"`
	Expiry       domain.YearMonth  `json:"expiry"`
	Status       domain.CardStatus `json:"status"`
	Balance      decimal.Decimal   `json:"balance"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// cardToResponse converts a domain card to its API representation.
func cardToResponse(c *domain.Card) CardResponse {
	return CardResponse{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		MaskedNumber: c.MaskedNumber,
		Expiry:       c.Expiry,
		Status:       c.Status,
		Balance:      c.Balance,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// CardBalanceResponse represents a card's balance.
type CardBalanceResponse struct {
	CardID  uuid.UUID       `json:"card_id"`
	Balance decimal.Decimal `json:"balance"`
}

// PageResponse is the envelope for paged listings.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	CurrentPage   int   `json:"current_page"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
}

// pageToResponse converts a store page to its API envelope, mapping each
// item through convert.
func pageToResponse[S, T any](page *store.Page[S], convert func(S) T) PageResponse[T] {
	content := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		content = append(content, convert(item))
	}
	return PageResponse[T]{
		Content:       content,
		CurrentPage:   page.Page,
		TotalElements: page.TotalCount,
		TotalPages:    page.TotalPages(),
	}
}
