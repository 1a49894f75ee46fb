package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/db"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already exists")
)

type userRepository struct {
	mongoRepo *db.Repository[model.User]
	logger    *zap.Logger
}

type UserRepository interface {
	InsertUser(ctx context.Context, user *model.User) (*model.User, error)
	FindByUserName(ctx context.Context, userName string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	DeleteUser(ctx context.Context, userName string) error
}

func NewUserRepository(mongoRepo *db.Repository[model.User], logger *zap.Logger) UserRepository {
	return &userRepository{
		mongoRepo: mongoRepo,
		logger:    logger,
	}
}

func (r *userRepository) InsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	// unique index on user_name and email backs this check
	taken, err := r.mongoRepo.Exists(ctx, db.NewFilter().
		Or(bson.M{"user_name": user.UserName}, bson.M{"email": user.Email}).
		Build())
	if err != nil {
		return nil, fmt.Errorf("user existence check failed: %w", err)
	}
	if taken {
		return nil, ErrDuplicateUser
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true

	result, err := r.mongoRepo.Create(ctx, *user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateUser
		}
		r.logger.Error("user insert failed", zap.Error(err), zap.String("user_name", user.UserName))
		return nil, fmt.Errorf("insert user failed: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	r.logger.Info("user created", zap.String("user_name", user.UserName))
	return user, nil
}

func (r *userRepository) FindByUserName(ctx context.Context, userName string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	user, err := r.mongoRepo.FindOne(ctx, db.NewFilter().Eq("user_name", userName).Build())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		r.logger.Error("user lookup failed", zap.Error(err), zap.String("user_name", userName))
		return nil, fmt.Errorf("find user failed: %w", err)
	}

	return user, nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultReadTimeout)
	defer cancel()

	users, err := r.mongoRepo.FindAll(ctx, db.Empty())
	if err != nil {
		r.logger.Error("user list failed", zap.Error(err))
		return nil, fmt.Errorf("list users failed: %w", err)
	}

	return users, nil
}

func (r *userRepository) DeleteUser(ctx context.Context, userName string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultWriteTimeout)
	defer cancel()

	result, err := r.mongoRepo.Delete(ctx, db.NewFilter().Eq("user_name", userName).Build())
	if err != nil {
		r.logger.Error("user delete failed", zap.Error(err), zap.String("user_name", userName))
		return fmt.Errorf("delete user failed: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}

	r.logger.Info("user deleted", zap.String("user_name", userName))
	return nil
}
