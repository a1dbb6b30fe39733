package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Belkadi-Amine23/mystore/internal/domain"
	"github.com/Belkadi-Amine23/mystore/internal/repository"
	"github.com/Belkadi-Amine23/mystore/pkg/mylogger"
	"github.com/Belkadi-Amine23/mystore/pkg/utils"
	"github.com/Belkadi-Amine23/mystore/pkg/validator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is what a successful login or registration hands back.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, input *RegisterInput) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, input *LoginInput) (*domain.User, *TokenPair, error)
}

type authService struct {
	logger    *zap.Logger
	userRepo  repository.UserRepository
	validator validator.Validator
	tracer    trace.Tracer
}

func NewAuthService(logger *zap.Logger, userRepo repository.UserRepository) AuthService {
	return &authService{
		logger:    logger,
		userRepo:  userRepo,
		validator: validator.NewValidator(),
		tracer:    otel.Tracer("auth_service"),
	}
}

func (s *authService) Register(ctx context.Context, input *RegisterInput) (*domain.User, *TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", input.Email),
	)

	if err := s.validator.ValidatePassword(input.Password); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 12)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}

	user, err = s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			mylogger.Warn(
				ctx,
				s.logger,
				"Registration with taken email",
				zap.String("email", input.Email),
			)

			return nil, nil, err
		}

		return nil, nil, fmt.Errorf("failed to register user: %w", err)
	}

	access, refresh, err := utils.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"User registered",
		zap.Int64("user_id", user.ID),
	)

	return user, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Login(ctx context.Context, input *LoginInput) (*domain.User, *TokenPair, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", input.Email),
	)

	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}

		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Failed login attempt",
			zap.String("email", input.Email),
		)

		return nil, nil, ErrInvalidCredentials
	}

	access, refresh, err := utils.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"User logged in",
		zap.Int64("user_id", user.ID),
	)

	return user, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
