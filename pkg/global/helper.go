package global

import (
	"context"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to every constructor.
type Config struct {
	Port string
	Env  string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddress  string
	RedisPassword string

	RabbitMQURL     string
	RabbitMQQueue   string
	ChannelPoolSize int

	GCSBucket          string
	GCSCredentialsFile string

	SendGridAPIKey       string
	SendGridFrom         string
	ResetPasswordBaseURL string

	OpenAIEndpoint   string
	OpenAIAPIKey     string
	OpenAIDeployment string

	OTLPEndpoint    string
	OTLPInsecure    bool
	OTELServiceName string

	CORSOrigins []string
}

func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(GetEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "":
		return defaultValue
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnvOrDefault(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

// LoadConfig reads .env (optional) and the process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port: GetEnvOrDefault("PORT", "8000"),
		Env:  GetEnvOrDefault("ENV", "development"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: GetEnvOrDefault("MONGODB_DATABASE", "shopking"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),

		RedisAddress:  GetEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: GetEnvOrDefault("REDIS_PASSWORD", ""),

		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue:   GetEnvOrDefault("RABBITMQ_QUEUE", "order_events"),
		ChannelPoolSize: getEnvInt("CHANNEL_POOL_SIZE", 4),

		GCSBucket:          os.Getenv("GCS_BUCKET"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),

		SendGridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		SendGridFrom:         GetEnvOrDefault("SENDGRID_FROM", "no-reply@shopking.local"),
		ResetPasswordBaseURL: GetEnvOrDefault("RESET_PASSWORD_BASE_URL", "http://localhost:3000/reset-password"),

		OpenAIEndpoint:   os.Getenv("AZURE_OPENAI_ENDPOINT"),
		OpenAIAPIKey:     os.Getenv("AZURE_OPENAI_API_KEY"),
		OpenAIDeployment: GetEnvOrDefault("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-35-turbo"),

		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName: GetEnvOrDefault("OTEL_SERVICE_NAME", "storefront-api"),

		CORSOrigins: splitList(GetEnvOrDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI is not set in environment variables")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set in environment variables")
	}
	return cfg, nil
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func GetDefaultTimer() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
