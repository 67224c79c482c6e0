package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	ShutdownGrace = 10 * time.Second

	devSessionSecret = "dev_secret_123"
	devAdminPassword = "admin"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string

	// Catálogo
	CatalogBackend   string
	CatalogJSONPath  string
	CatalogDBPath    string
	CatalogSQLDriver string
	CatalogBadgerDir string

	// Sesión de administrador
	SessionSecret  string
	AdminPassword  string
	AdminTTL       time.Duration
	LoginPerMinute int
	MaxRevoked     int

	// Correo
	MailTransport      string
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	MailFrom           string
	ComplaintRecipient string
	SendGridAPIKey     string

	RabbitURL      string
	RabbitExchange string

	CORSOrigins  []string
	QuotePricing string
	LogLevel     string
}

// Load lee .env (si existe) y luego el entorno.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr: httpAddr(),
		GRPCAddr: os.Getenv("GRPC_ADDR"),

		CatalogBackend:   strings.ToLower(getenv("CATALOG_BACKEND", "json")),
		CatalogJSONPath:  getenv("CATALOG_JSON_PATH", "data/productos.json"),
		CatalogDBPath:    getenv("CATALOG_DB_PATH", "data/catalog.db"),
		CatalogSQLDriver: getenv("CATALOG_SQL_DRIVER", "sqlite"),
		CatalogBadgerDir: getenv("CATALOG_BADGER_DIR", "data/badger"),

		SessionSecret:  getenv("SESSION_SECRET", os.Getenv("FLASK_SECRET")),
		AdminPassword:  os.Getenv("ADMIN_PASSWORD"),
		AdminTTL:       getduration("ADMIN_SESSION_TTL", 12*time.Hour),
		LoginPerMinute: getint("ADMIN_LOGIN_RATE", 0),
		MaxRevoked:     getint("ADMIN_MAX_REVOKED", 1024),

		MailTransport:      strings.ToLower(getenv("MAIL_TRANSPORT", "smtp")),
		SMTPHost:           getenv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           getint("SMTP_PORT", 587),
		SMTPUser:           os.Getenv("SMTP_USER"),
		SMTPPass:           os.Getenv("SMTP_PASS"),
		MailFrom:           os.Getenv("MAIL_FROM"),
		ComplaintRecipient: getenv("COMPLAINT_RECIPIENT", "Ferreri-work@hotmail.com"),
		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),

		RabbitURL:      os.Getenv("RABBITMQ_URL"),
		RabbitExchange: getenv("RABBIT_EXCHANGE", "ferreriwork.events"),

		CORSOrigins:  splitList(getenv("CORS_ORIGINS", "*")),
		QuotePricing: strings.ToLower(getenv("QUOTE_PRICING", "server")),
		LogLevel:     getenv("LOG_LEVEL", "info"),
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	if cfg.SessionSecret == "" {
		cfg.SessionSecret = devSessionSecret
		log.Warn().Msg("SESSION_SECRET vacío: usando secreto de desarrollo")
	}
	if cfg.AdminPassword == "" {
		cfg.AdminPassword = devAdminPassword
		log.Warn().Msg("ADMIN_PASSWORD vacío: usando contraseña de desarrollo")
	}
	return cfg
}

// HTTP_ADDR tiene la forma ":8080"; PORT también se acepta.
func httpAddr() string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":8080"
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return v
}

func getduration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(k))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
