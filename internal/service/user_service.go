package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/platform/logger"
	"github.com/avelkov/cardvault/internal/service/auth"
	"github.com/avelkov/cardvault/internal/store"
)

// CreateUserParams carries the inputs for an admin creating a user account.
type CreateUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      domain.Role
}

// UpdateUserParams carries the mutable account fields. An empty Password
// leaves the stored credential untouched.
type UpdateUserParams struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService provides user account management operations.
type UserService interface {
	// GetUser retrieves a user by ID for an admin or the user themselves.
	GetUser(ctx context.Context, p Principal, userID uuid.UUID) (*domain.User, error)

	// ListUsers lists all users, paged. Admin only.
	ListUsers(ctx context.Context, p Principal, page store.PageRequest) (*store.Page[*domain.User], error)

	// CreateUser creates a new account. Admin only.
	CreateUser(ctx context.Context, p Principal, params CreateUserParams) (*domain.User, error)

	// UpdateUser changes account details for an admin or the user
	// themselves. Deactivated accounts are rejected; email uniqueness is
	// rechecked only when the email actually changes.
	UpdateUser(
		ctx context.Context,
		p Principal,
		userID uuid.UUID,
		params UpdateUserParams,
	) (*domain.User, error)

	// DeactivateUser disables an account. Admin only; admin accounts and
	// already-inactive accounts are rejected.
	DeactivateUser(ctx context.Context, p Principal, userID uuid.UUID) (*domain.User, error)

	// ActivateUser re-enables an account. Admin only; already-active
	// accounts are rejected.
	ActivateUser(ctx context.Context, p Principal, userID uuid.UUID) (*domain.User, error)

	// DeleteUser removes an account. Admin only; accounts that still own
	// cards are rejected.
	DeleteUser(ctx context.Context, p Principal, userID uuid.UUID) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userStore store.UserStore
	cardStore store.CardStore
	hasher    auth.PasswordHasher
	logger    *slog.Logger
	timeFunc  func() time.Time // Injectable for testing
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	userStore store.UserStore,
	cardStore store.CardStore,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if cardStore == nil {
		return nil, domain.NewValidationError("cardStore", "cannot be nil", domain.ErrValidation)
	}
	if hasher == nil {
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore: userStore,
		cardStore: cardStore,
		hasher:    hasher,
		logger:    logger.With(slog.String("component", "user_service")),
		timeFunc:  time.Now,
	}, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(
	ctx context.Context,
	p Principal,
	userID uuid.UUID,
) (*domain.User, error) {
	if !p.CanAccessUser(userID) {
		return nil, ErrForbidden
	}
	return s.userStore.GetByID(ctx, userID)
}

// ListUsers implements UserService.ListUsers
func (s *userServiceImpl) ListUsers(
	ctx context.Context,
	p Principal,
	page store.PageRequest,
) (*store.Page[*domain.User], error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.userStore.List(ctx, page)
}

// CreateUser implements UserService.CreateUser
func (s *userServiceImpl) CreateUser(
	ctx context.Context,
	p Principal,
	params CreateUserParams,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	exists, err := s.userStore.ExistsByEmail(ctx, params.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, store.ErrEmailExists
	}

	hashedPassword, err := s.hasher.Hash(params.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewUserServiceError("create_user", "failed to hash password", err)
	}

	user, err := domain.NewUser(
		params.FirstName,
		params.LastName,
		params.Email,
		hashedPassword,
		params.Role,
	)
	if err != nil {
		return nil, err
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return user, nil
}

// UpdateUser implements UserService.UpdateUser
func (s *userServiceImpl) UpdateUser(
	ctx context.Context,
	p Principal,
	userID uuid.UUID,
	params UpdateUserParams,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.CanAccessUser(userID) {
		return nil, ErrForbidden
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateUserForUpdate(user); err != nil {
		return nil, err
	}

	// Recheck uniqueness only when the email actually changes; updating an
	// account without touching the email must not trip over its own row.
	if params.Email != user.Email {
		exists, err := s.userStore.ExistsByEmail(ctx, params.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, store.ErrEmailExists
		}
	}

	user.FirstName = params.FirstName
	user.LastName = params.LastName
	user.Email = params.Email
	if params.Password != "" {
		hashedPassword, err := s.hasher.Hash(params.Password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return nil, NewUserServiceError("update_user", "failed to hash password", err)
		}
		user.HashedPassword = hashedPassword
	}
	user.UpdatedAt = s.timeFunc().UTC()

	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user updated", slog.String("user_id", user.ID.String()))
	return user, nil
}

// setActive flips the account's activation state after rule checks.
func (s *userServiceImpl) setActive(
	ctx context.Context,
	p Principal,
	userID uuid.UUID,
	active bool,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.IsAdmin() {
		return nil, ErrForbidden
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if active {
		err = domain.ValidateUserForActivation(user)
	} else {
		err = domain.ValidateUserForDeactivation(user)
	}
	if err != nil {
		return nil, err
	}

	user.Active = active
	user.UpdatedAt = s.timeFunc().UTC()
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user activation state changed",
		slog.String("user_id", user.ID.String()),
		slog.Bool("active", active))
	return user, nil
}

// DeactivateUser implements UserService.DeactivateUser
func (s *userServiceImpl) DeactivateUser(
	ctx context.Context,
	p Principal,
	userID uuid.UUID,
) (*domain.User, error) {
	return s.setActive(ctx, p, userID, false)
}

// ActivateUser implements UserService.ActivateUser
func (s *userServiceImpl) ActivateUser(
	ctx context.Context,
	p Principal,
	userID uuid.UUID,
) (*domain.User, error) {
	return s.setActive(ctx, p, userID, true)
}

// DeleteUser implements UserService.DeleteUser
func (s *userServiceImpl) DeleteUser(ctx context.Context, p Principal, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !p.IsAdmin() {
		return ErrForbidden
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	cardCount, err := s.cardStore.CountByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if err := domain.ValidateUserForDelete(user, cardCount); err != nil {
		return err
	}

	if err := s.userStore.Delete(ctx, userID); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", userID.String()))
	return nil
}
