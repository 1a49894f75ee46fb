package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/auth"
	"github.com/Daya1222/Real-time-chat-app/internal/db"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
	"github.com/Daya1222/Real-time-chat-app/internal/repo"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrValidation         = errors.New("invalid request")
)

const deletedAccountReason = "Your account has been deleted. You will be logged out."

// Realtime is the slice of the hub the user service needs: severing a live
// session on account deletion and announcing a fresh registration.
type Realtime interface {
	TerminateSession(userName, reason string) bool
	AnnounceRegistration(userName string)
}

type RegisterRequest struct {
	UserName string `json:"userName" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	UserName string `json:"userName" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req LoginRequest) (string, *model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	// MessagesFor returns the caller's conversation history, optionally
	// narrowed to the exchange with one other user.
	MessagesFor(ctx context.Context, userName, with string, page int64) (*db.PaginatedResult[model.Message], error)

	// DeleteUser severs the user's live session, then removes the account
	// and every message the user participated in.
	DeleteUser(ctx context.Context, userName string) error
}

type userService struct {
	users    repo.UserRepository
	messages repo.MessageRepository
	tokens   *auth.TokenService
	realtime Realtime
	validate *validator.Validate
	logger   *zap.Logger
}

func NewUserService(users repo.UserRepository, messages repo.MessageRepository, tokens *auth.TokenService, realtime Realtime, logger *zap.Logger) UserService {
	return &userService{
		users:    users,
		messages: messages,
		tokens:   tokens,
		realtime: realtime,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("password hashing failed: %w", err)
	}

	user, err := s.users.InsertUser(ctx, &model.User{
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	s.realtime.AnnounceRegistration(user.UserName)
	return user, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (string, *model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	user, err := s.users.FindByUserName(ctx, req.UserName)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.ComparePassword(req.Password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Mint(auth.Identity{
		UserID:   user.ID.Hex(),
		UserName: user.UserName,
		Role:     user.Role,
	})
	if err != nil {
		return "", nil, fmt.Errorf("token minting failed: %w", err)
	}

	return token, user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *userService) MessagesFor(ctx context.Context, userName, with string, page int64) (*db.PaginatedResult[model.Message], error) {
	if with != "" {
		return s.messages.FindBetween(ctx, userName, with, page)
	}
	return s.messages.FindByParticipant(ctx, userName, page)
}

func (s *userService) DeleteUser(ctx context.Context, userName string) error {
	user, err := s.users.FindByUserName(ctx, userName)
	if err != nil {
		return err
	}

	// Sever the live session first so the client learns why it is going away.
	s.realtime.TerminateSession(user.UserName, deletedAccountReason)

	if err := s.users.DeleteUser(ctx, user.UserName); err != nil {
		return err
	}

	if _, err := s.messages.DeleteByParticipant(ctx, user.UserName); err != nil {
		// account is gone; orphaned messages are logged, not fatal
		s.logger.Error("message cascade failed after user delete",
			zap.String("user_name", user.UserName),
			zap.Error(err),
		)
	}

	return nil
}
