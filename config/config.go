package config

import (
	"time"

	"notevault/utils"
)

// Config holds everything read from the environment at process start.
type Config struct {
	MongoURI     string
	DatabaseName string
	JWTSecret    string
	TokenTTL     time.Duration
	RedisURL     string
	Port         string
	Environment  string
}

func Load() Config {
	return Config{
		MongoURI:     utils.GetEnvAsString("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: utils.GetEnvAsString("MONGO_DB", "notevault"),
		JWTSecret:    utils.GetEnvAsString("JWT_SECRET_KEY", ""),
		TokenTTL:     utils.GetEnvAsDuration("TOKEN_TTL", 72*time.Hour),
		RedisURL:     utils.GetEnvAsString("REDIS_URL", "redis://localhost:6379/0"),
		Port:         utils.GetEnvAsString("PORT", "8080"),
		Environment:  utils.GetEnvAsString("GO_ENV", "development"),
	}
}
