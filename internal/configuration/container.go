package configuration

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Daya1222/Real-time-chat-app/internal/auth"
	"github.com/Daya1222/Real-time-chat-app/internal/db"
	"github.com/Daya1222/Real-time-chat-app/internal/handler"
	"github.com/Daya1222/Real-time-chat-app/internal/hub"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
	"github.com/Daya1222/Real-time-chat-app/internal/repo"
	"github.com/Daya1222/Real-time-chat-app/internal/service"
)

type Container struct {
	UserHandler handler.UserHandler
	Hub         *hub.Hub
	Verifier    auth.Verifier
	Config      Config
	Logger      *zap.Logger

	// private - for cleanup
	mongoClient *mongo.Database
}

func BuildContainer(configPath string) (*Container, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	con, err := db.OpenConnection(config.Mongo.Uri, config.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	messageStore := db.NewRepository[model.Message](con, config.Mongo.MessagesCollection)
	userStore := db.NewRepository[model.User](con, config.Mongo.UsersCollection)

	messageRepo := repo.NewMessageRepository(messageStore, logger)
	userRepo := repo.NewUserRepository(userStore, logger)

	tokens := auth.NewTokenService([]byte(config.Auth.Secret), config.Auth.TokenTTL, config.Auth.Issuer)

	chatHub := hub.NewHub(messageRepo, tokens, config.Server.AllowedOrigins, logger)

	userService := service.NewUserService(userRepo, messageRepo, tokens, chatHub, logger)
	userHandler := handler.NewUserHandler(userService)

	return &Container{
		UserHandler: userHandler,
		Hub:         chatHub,
		Verifier:    tokens,
		Config:      *config,
		Logger:      logger,
		mongoClient: con,
	}, nil
}

// Close gracefully shuts down all connections
func (c *Container) Close() error {
	// Stop the hub first (closes all WebSocket connections)
	if c.Hub != nil {
		c.Hub.Stop()
	}

	// Sync logger
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}

	// Close MongoDB connection pool
	if c.mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.mongoClient.Client().Disconnect(ctx); err != nil {
			return fmt.Errorf("failed to close MongoDB connection: %w", err)
		}
	}

	return nil
}
