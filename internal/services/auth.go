package services

import (
	"context"
	"errors"
	"fmt"

	"egov-portal/internal/models"
	"egov-portal/internal/store"
	"egov-portal/pkg/auth"

	"golang.org/x/crypto/bcrypt"
)

// LoginRequest - логін демо-акаунтом: email, пароль і обрана роль
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=citizen officer admin"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type AuthService struct {
	users      store.UserStore
	jwtManager *auth.JWTManager
}

func NewAuthService(users store.UserStore, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
	}
}

// Login вимагає збігу всіх трьох: email, пароль і роль
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	email := models.NormalizeEmail(req.Email)

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return AuthResponse{}, models.ErrInvalidCredentials
		}
		return AuthResponse{}, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return AuthResponse{}, models.ErrInvalidCredentials
	}

	if string(user.Role) != req.Role {
		return AuthResponse{}, models.ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return AuthResponse{}, fmt.Errorf("failed to generate token: %w", err)
	}

	return AuthResponse{Token: token, User: user}, nil
}

// CurrentUser повертає користувача з токена
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (models.User, error) {
	return s.users.FindUserByID(ctx, userID)
}

// Authenticate перевіряє токен і завантажує користувача (websocket, views)
func (s *AuthService) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return models.User{}, err
	}
	return s.users.FindUserByID(ctx, claims.UserID)
}
