package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookstore/internal/errs"
	"bookstore/internal/models"
	"bookstore/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID uint
	Email  string
	Role   models.Role
}

// AuthService handles registration, login and token verification.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService. Tokens expire after tokenTTL.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// RegisterUser hashes the user's password and stores the account with the USER role.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	user.Role = models.RoleUser
	return s.register(ctx, user)
}

// EnsureAdmin creates an administrator account unless a user with that email exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	admin := &models.User{Username: username, Email: email, Password: password, Role: models.RoleAdmin}
	if err := s.register(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("admin account created", zap.String("email", email))
	return nil
}

func (s *AuthService) register(ctx context.Context, user *models.User) error {
	// Check if username or email already exists
	if existing, err := s.userRepo.GetByUsername(ctx, user.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken: %w", user.Username, errs.ErrConflict)
	}
	if existing, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered: %w", user.Email, errs.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user by email and returns a signed JWT.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Unknown email and wrong password look the same to the caller.
		return "", fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials: %w", errs.ErrUnauthorized)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and verifies a JWT and returns the identity it carries.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %v: %w", err, errs.ErrUnauthorized)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", errs.ErrUnauthorized)
	}

	// Numeric claims decode as float64.
	userID, _ := mapClaims["user_id"].(float64)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	if userID <= 0 || email == "" {
		return nil, fmt.Errorf("invalid token: missing identity claims: %w", errs.ErrUnauthorized)
	}
	return &Claims{UserID: uint(userID), Email: email, Role: models.Role(role)}, nil
}
