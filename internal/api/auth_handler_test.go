package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelkov/cardvault/internal/domain"
	"github.com/avelkov/cardvault/internal/mocks"
	"github.com/avelkov/cardvault/internal/service/auth"
)

func newAuthTestHandler(userStore *mocks.MockUserStore, jwtService *mocks.MockJWTService) *AuthHandler {
	return NewAuthHandler(
		userStore,
		jwtService,
		&mocks.MockPasswordHasher{},
		&mocks.MockPasswordVerifier{},
		nil,
	)
}

func seedUser(t *testing.T, userStore *mocks.MockUserStore, email, password string, role domain.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Test", "User", email, "hashed:"+password, role)
	require.NoError(t, err)
	userStore.Users[user.ID] = user
	return user
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func TestRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
		wantToken  bool
	}{
		{
			name: "valid registration",
			payload: map[string]interface{}{
				"first_name": "Ada",
				"last_name":  "Lovelace",
				"email":      "ada@example.com",
				"password":   "password1234567",
			},
			wantStatus: http.StatusCreated,
			wantToken:  true,
		},
		{
			name: "invalid email",
			payload: map[string]interface{}{
				"first_name": "Ada",
				"last_name":  "Lovelace",
				"email":      "invalid-email",
				"password":   "password1234567",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			payload: map[string]interface{}{
				"first_name": "Ada",
				"last_name":  "Lovelace",
				"email":      "ada2@example.com",
				"password":   "short",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing first name",
			payload: map[string]interface{}{
				"last_name": "Lovelace",
				"email":     "ada3@example.com",
				"password":  "password1234567",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userStore := mocks.NewMockUserStore()
			jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
			handler := newAuthTestHandler(userStore, jwtService)

			recorder := postJSON(t, handler.Register, "/api/v1/public/register", tt.payload)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantToken {
				var resp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, "test-token", resp.AccessToken)
				assert.Equal(t, "test-refresh", resp.RefreshToken)
				assert.Equal(t, domain.RoleUser, resp.Role)
				assert.NotEqual(t, uuid.Nil, resp.UserID)
			}
		})
	}
}

func TestRegisterAlwaysCreatesUserRole(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
	handler := newAuthTestHandler(userStore, jwtService)

	recorder := postJSON(t, handler.Register, "/api/v1/public/register", map[string]interface{}{
		"first_name": "Eve",
		"last_name":  "Attacker",
		"email":      "eve@example.com",
		"password":   "password1234567",
		"role":       "admin",
	})

	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Len(t, userStore.Users, 1)
	for _, user := range userStore.Users {
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.True(t, user.Active)
		assert.Equal(t, "hashed:password1234567", user.HashedPassword)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	seedUser(t, userStore, "taken@example.com", "password1234567", domain.RoleUser)
	jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
	handler := newAuthTestHandler(userStore, jwtService)

	recorder := postJSON(t, handler.Register, "/api/v1/public/register", map[string]interface{}{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "taken@example.com",
		"password":   "password1234567",
	})

	assert.Equal(t, http.StatusConflict, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Email already exists")
}

func TestLogin(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	user := seedUser(t, userStore, "ada@example.com", "password1234567", domain.RoleAdmin)
	jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
	handler := newAuthTestHandler(userStore, jwtService)

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
	}{
		{
			name: "valid credentials",
			payload: map[string]interface{}{
				"email":    "ada@example.com",
				"password": "password1234567",
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			payload: map[string]interface{}{
				"email":    "ada@example.com",
				"password": "wrong-password1",
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown email",
			payload: map[string]interface{}{
				"email":    "nobody@example.com",
				"password": "password1234567",
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "missing password",
			payload: map[string]interface{}{
				"email": "ada@example.com",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postJSON(t, handler.Login, "/api/v1/public/login", tt.payload)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var resp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, user.ID, resp.UserID)
				assert.Equal(t, domain.RoleAdmin, resp.Role)
				assert.Equal(t, "test-token", resp.AccessToken)
			}
		})
	}
}

func TestLoginDeactivatedAccount(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	user := seedUser(t, userStore, "ada@example.com", "password1234567", domain.RoleUser)
	user.Active = false
	jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
	handler := newAuthTestHandler(userStore, jwtService)

	recorder := postJSON(t, handler.Login, "/api/v1/public/login", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "password1234567",
	})

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "deactivated")
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	user := seedUser(t, userStore, "ada@example.com", "password1234567", domain.RoleUser)

	t.Run("valid refresh token", func(t *testing.T) {
		jwtService := &mocks.MockJWTService{
			Token:        "new-token",
			RefreshToken: "new-refresh",
			Claims:       &auth.Claims{UserID: user.ID, Role: user.Role},
		}
		handler := newAuthTestHandler(userStore, jwtService)

		recorder := postJSON(t, handler.RefreshToken, "/api/v1/public/refresh", map[string]interface{}{
			"refresh_token": "old-refresh",
		})

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp RefreshTokenResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "new-token", resp.AccessToken)
		assert.Equal(t, "new-refresh", resp.RefreshToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		jwtService := &mocks.MockJWTService{ValidateErr: auth.ErrExpiredRefreshToken}
		handler := newAuthTestHandler(userStore, jwtService)

		recorder := postJSON(t, handler.RefreshToken, "/api/v1/public/refresh", map[string]interface{}{
			"refresh_token": "stale-refresh",
		})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("access token rejected", func(t *testing.T) {
		jwtService := &mocks.MockJWTService{ValidateErr: auth.ErrWrongTokenType}
		handler := newAuthTestHandler(userStore, jwtService)

		recorder := postJSON(t, handler.RefreshToken, "/api/v1/public/refresh", map[string]interface{}{
			"refresh_token": "an-access-token",
		})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("deactivated account cannot refresh", func(t *testing.T) {
		inactive, err := domain.NewUser("Test", "User", "gone@example.com", "hashed:password1234567", domain.RoleUser)
		require.NoError(t, err)
		inactive.Active = false
		userStore.Users[inactive.ID] = inactive

		jwtService := &mocks.MockJWTService{
			Token:        "new-token",
			RefreshToken: "new-refresh",
			Claims:       &auth.Claims{UserID: inactive.ID, Role: inactive.Role},
		}
		handler := newAuthTestHandler(userStore, jwtService)

		recorder := postJSON(t, handler.RefreshToken, "/api/v1/public/refresh", map[string]interface{}{
			"refresh_token": "old-refresh",
		})

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		handler := newAuthTestHandler(userStore, &mocks.MockJWTService{})

		recorder := postJSON(t, handler.RefreshToken, "/api/v1/public/refresh", map[string]interface{}{})

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
