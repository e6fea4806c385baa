package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CORSOrigin must be a concrete origin: the router sends
	// Access-Control-Allow-Credentials, and browsers reject credentialed
	// responses with a wildcard origin.
	CORSOrigin string `env:"CORS_ORIGIN, default=http://localhost:3000"`

	// BodyLimit caps the JSON routes; UploadLimit caps the multipart
	// register route, which carries two image files.
	BodyLimit   string `env:"BODY_LIMIT,        default=16K"`
	UploadLimit string `env:"UPLOAD_BODY_LIMIT, default=10M"`
	TempDir     string `env:"TEMP_DIR,          default=./tmp"`

	Token TokenConfig
	Mongo MongoConfig
	Redis RedisConfig
	S3    S3Config
}

type TokenConfig struct {
	AccessSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshSecret string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTTL     time.Duration `env:"ACCESS_TOKEN_TTL,  default=1h"`
	RefreshTTL    time.Duration `env:"REFRESH_TOKEN_TTL, default=168h"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=account_service"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type S3Config struct {
	Region        string `env:"S3_REGION,   default=us-east-1"`
	Endpoint      string `env:"S3_ENDPOINT"`
	Bucket        string `env:"S3_BUCKET,   default=account-media"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
