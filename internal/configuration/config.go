package configuration

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type MongoConfig struct {
	Uri                string `json:"uri" envconfig:"MONGO_URI"`
	Database           string `json:"database"`
	MessagesCollection string `json:"messagesCollection"`
	UsersCollection    string `json:"usersCollection"`
	SocketRoute        string `json:"socketRoute"`
}

type ServerConfig struct {
	AppPort        int      `json:"app_port"`
	SocketPort     int      `json:"socket_port"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// AuthConfig carries only non-secret defaults in the config file; the
// signing secret comes from the environment.
type AuthConfig struct {
	Secret   string        `json:"-" envconfig:"JWT_SECRET"`
	TokenTTL time.Duration `json:"-" envconfig:"TOKEN_TTL" default:"1h"`
	Issuer   string        `json:"issuer"`
}

type Config struct {
	Mongo  MongoConfig  `json:"mongo"`
	Server ServerConfig `json:"server"`
	Auth   AuthConfig   `json:"auth"`
}

func LoadConfig(configPath string) (*Config, error) {
	// optional .env for local development
	_ = godotenv.Load()

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	if err := envconfig.Process("", &config.Mongo); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &config.Auth); err != nil {
		return nil, err
	}

	if config.Auth.Secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	return &config, nil
}
