package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. Ledger configuration (periods,
// token, freeze flag) lives in the configuration store, not here.
type Server struct {
	Addr          string
	AdminToken    string
	JWTSigningKey string
	JWTTokenTTL   time.Duration

	PostgresDSN string
	Redis       RedisConfig

	KafkaBrokers    []string
	AuditTopic      string
	AuditInboxSize  int
	CatalogBaseURL  string
	TokenLedgerURL  string
	ExternalTimeout time.Duration
}

// RedisConfig holds connection tuning for the leaderboard mirror.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("STAKEYARD_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default; must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	auditTopic := os.Getenv("AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "stakeyard.audit"
	}

	return Server{
		Addr:          addr,
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		JWTSigningKey: jwtSigningKey,
		JWTTokenTTL:   24 * time.Hour,
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers:    brokers,
		AuditTopic:      auditTopic,
		AuditInboxSize:  256,
		CatalogBaseURL:  os.Getenv("CATALOG_BASE_URL"),
		TokenLedgerURL:  os.Getenv("TOKEN_LEDGER_URL"),
		ExternalTimeout: 10 * time.Second,
	}
}
