package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig
	Worker   WorkerConfig
	Platform PlatformConfig
	Database DatabaseConfig
	Blob     BlobConfig
	MinIO    MinIOConfig
	S3       S3Config
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Auth     AuthConfig
	Remote   RemoteConfig
	CLI      CLIConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
	MaxUploadSize   int64         `envconfig:"API_MAX_UPLOAD_SIZE" default:"524288000"`
	SignInPerMinute int           `envconfig:"API_SIGNIN_PER_MINUTE" default:"10"`
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For is honored.
	TrustedProxies []string `envconfig:"API_TRUSTED_PROXIES"`
}

type WorkerConfig struct {
	MaxRetries      int           `envconfig:"WORKER_MAX_RETRIES" default:"3"`
	ShutdownTimeout time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// PlatformConfig holds the static identifiers of the remote platform.
type PlatformConfig struct {
	Endpoint           string `envconfig:"PLATFORM_ENDPOINT" default:"http://localhost:8080/v1"`
	PlatformID         string `envconfig:"PLATFORM_ID" default:"com.hszk.aora"`
	ProjectID          string `envconfig:"PLATFORM_PROJECT_ID" default:"aora"`
	DatabaseID         string `envconfig:"PLATFORM_DATABASE_ID" default:"aora"`
	UsersCollectionID  string `envconfig:"PLATFORM_USERS_COLLECTION_ID" default:"users"`
	VideosCollectionID string `envconfig:"PLATFORM_VIDEOS_COLLECTION_ID" default:"videos"`
	StorageID          string `envconfig:"PLATFORM_STORAGE_ID" default:"files"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"aora"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"aora"`
	DBName   string `envconfig:"POSTGRES_DB" default:"aora"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	MaxConns int32  `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// BlobConfig selects the object storage driver.
type BlobConfig struct {
	Driver        string        `envconfig:"BLOB_DRIVER" default:"minio"`
	PublicBaseURL string        `envconfig:"BLOB_PUBLIC_BASE_URL"`
	URLExpiry     time.Duration `envconfig:"BLOB_URL_EXPIRY" default:"168h"`
}

type MinIOConfig struct {
	Endpoint       string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	PublicEndpoint string `envconfig:"MINIO_PUBLIC_ENDPOINT"`
	AccessKey      string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey      string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	UseSSL         bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type S3Config struct {
	Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	Endpoint  string `envconfig:"S3_ENDPOINT"`
	AccessKey string `envconfig:"S3_ACCESS_KEY"`
	SecretKey string `envconfig:"S3_SECRET_KEY"`
}

type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL time.Duration `envconfig:"REDIS_CACHE_TTL" default:"1m"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"aora"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"aora"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

// insecureJWTSecret is the placeholder default. It only passes validation
// with AUTH_ALLOW_INSECURE_SECRET set.
const insecureJWTSecret = "change-me"

// minJWTSecretLen matches the HS256 key size.
const minJWTSecretLen = 32

type AuthConfig struct {
	JWTSecret  string        `envconfig:"AUTH_JWT_SECRET" default:"change-me"`
	SessionTTL time.Duration `envconfig:"AUTH_SESSION_TTL" default:"720h"`
	// AllowInsecureSecret is for local development only.
	AllowInsecureSecret bool `envconfig:"AUTH_ALLOW_INSECURE_SECRET" default:"false"`
}

// RemoteConfig tunes the remote access layer.
type RemoteConfig struct {
	SaveMaxAttempts int `envconfig:"REMOTE_SAVE_MAX_ATTEMPTS" default:"5"`
	LatestLimit     int `envconfig:"REMOTE_LATEST_LIMIT" default:"7"`
	PreviewWidth    int `envconfig:"REMOTE_PREVIEW_WIDTH" default:"2000"`
	PreviewHeight   int `envconfig:"REMOTE_PREVIEW_HEIGHT" default:"2000"`
}

// CLIConfig configures the terminal client.
type CLIConfig struct {
	// SessionFile stores the session between runs. Empty means the user config directory.
	SessionFile string `envconfig:"AORA_SESSION_FILE"`
	Events      bool   `envconfig:"AORA_PUBLISH_EVENTS" default:"false"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Blob.Driver {
	case "minio", "s3":
	default:
		return fmt.Errorf("BLOB_DRIVER must be minio or s3, got %q", c.Blob.Driver)
	}
	if c.Remote.SaveMaxAttempts < 1 {
		return errors.New("REMOTE_SAVE_MAX_ATTEMPTS must be at least 1")
	}
	if c.Remote.LatestLimit < 1 {
		return errors.New("REMOTE_LATEST_LIMIT must be at least 1")
	}
	if !c.Auth.AllowInsecureSecret {
		if c.Auth.JWTSecret == insecureJWTSecret {
			return errors.New("AUTH_JWT_SECRET must be set; the default is only accepted with AUTH_ALLOW_INSECURE_SECRET=true")
		}
		if len(c.Auth.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", minJWTSecretLen)
		}
	}
	return nil
}
