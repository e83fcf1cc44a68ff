package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"halador/internal/apperrors"
	"halador/internal/models"
	"halador/internal/repositories/interfaces"
	"halador/internal/utils"
	"halador/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error)

	// Me resolves the session's profile, running the self-heal repair
	// when the profile row is missing.
	Me(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error)

	ValidateToken(tokenString string) (*TokenClaims, error)
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=passenger driver"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Profile   *models.Profile `json:"profile"`
}

type TokenClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo       interfaces.UserRepository
	profileRepo    interfaces.ProfileRepository
	profileService ProfileService
	jwtSecret      string
	tokenTTL       time.Duration
	logger         *logger.Logger
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	profileRepo interfaces.ProfileRepository,
	profileService ProfileService,
	jwtSecret string,
	tokenTTL time.Duration,
	log *logger.Logger,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		profileService: profileService,
		jwtSecret:      jwtSecret,
		tokenTTL:       tokenTTL,
		logger:         log,
	}
}

func (s *authService) Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error) {
	if len(request.Password) < utils.PasswordMinLength {
		return nil, apperrors.Validation("password must be at least %d characters", utils.PasswordMinLength)
	}

	role := models.UserRole(request.Role)
	if role != models.RolePassenger && role != models.RoleDriver {
		return nil, apperrors.Validation("role must be passenger or driver")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(request.Email)),
		PasswordHash: string(hash),
		FullName:     request.FullName,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// The profile shares the user's id; the role written here is the
	// only role write in the system.
	profile := &models.Profile{
		ID:                 user.ID,
		FullName:           user.FullName,
		Role:               role,
		SubscriptionStatus: models.SubscriptionInactive,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issueToken(user.ID, string(role), user.FullName)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": user.ID.Hex(),
		"role":    role,
	}).Info("user registered")

	return &AuthResponse{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}

func (s *authService) Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		return nil, apperrors.Validation("invalid email or password")
	}

	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WithError(err).Warn("failed to record last login")
	}

	// Session initialization runs the profile repair path.
	profile, err := s.profileService.EnsureProfile(ctx, user.ID, user.FullName)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.issueToken(user.ID, string(profile.Role), user.FullName)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profileService.EnsureProfile(ctx, userID, user.FullName)
}

func (s *authService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.Validation("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Authorization("invalid token")
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok {
		return nil, apperrors.Authorization("invalid token claims")
	}

	return claims, nil
}

func (s *authService) issueToken(userID primitive.ObjectID, role, fullName string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	claims := &TokenClaims{
		UserID:   userID.Hex(),
		Role:     role,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    utils.AppName,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", time.Time{}, apperrors.Internal(err)
	}

	return signed, expiresAt, nil
}

