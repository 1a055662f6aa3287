package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyFirstName      = errors.New("first name cannot be empty")
	ErrEmptyLastName       = errors.New("last name cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidRole         = errors.New("invalid user role")
)

// Role determines what a user is allowed to do: regular users operate on
// their own cards, admins manage all users and cards.
type Role string

// Known roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is a known value.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered user of the card-account system.
type User struct {
	ID             uuid.UUID `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Role           Role      `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new active User with the given name, email, and
// already-hashed password. It generates a new UUID for the user ID and sets
// the creation/update timestamps. Returns an error if validation fails.
func NewUser(firstName, lastName, email, hashedPassword string, role Role) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           role,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.FirstName == "" {
		return ErrEmptyFirstName
	}

	if u.LastName == "" {
		return ErrEmptyLastName
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.HashedPassword == "" {
		return ErrEmptyHashedPassword
	}

	if !u.Role.IsValid() {
		return ErrInvalidRole
	}

	return nil
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
// The request layer applies a stricter check via validator tags; this is a
// last line of defense for entities constructed in code.
func validateEmailFormat(email string) bool {
	atIndex := -1
	for i, char := range email {
		if char == '@' {
			atIndex = i
			break
		}
	}

	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	dotIndex := -1
	for i, char := range domainPart {
		if char == '.' {
			dotIndex = i
			break
		}
	}

	return dotIndex > 0 && dotIndex < len(domainPart)-1
}

// Lifecycle preconditions for user mutations, mirroring the card rules in
// card_rules.go. All rejections happen before any state is written.

// ValidateUserForUpdate rejects updates to a deactivated user.
func ValidateUserForUpdate(u *User) error {
	if !u.Active {
		return fmt.Errorf("%w: user id %s", ErrUserInactive, u.ID)
	}
	return nil
}

// ValidateUserForDeactivation rejects deactivating an already-inactive
// user and any administrator.
func ValidateUserForDeactivation(u *User) error {
	if !u.Active {
		return fmt.Errorf("%w: user id %s", ErrUserAlreadyInactive, u.ID)
	}

	if u.Role == RoleAdmin {
		return fmt.Errorf("%w: user id %s", ErrAdminDeactivation, u.ID)
	}

	return nil
}

// ValidateUserForActivation rejects activating an already-active user.
func ValidateUserForActivation(u *User) error {
	if u.Active {
		return fmt.Errorf("%w: user id %s", ErrUserAlreadyActive, u.ID)
	}
	return nil
}

// ValidateUserForDelete rejects deleting a user that still owns cards.
// cardCount is the number of cards currently owned by the user.
func ValidateUserForDelete(u *User, cardCount int64) error {
	if cardCount > 0 {
		return fmt.Errorf("%w: user id %s owns %d card(s)", ErrUserHasCards, u.ID, cardCount)
	}
	return nil
}
