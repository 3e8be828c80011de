package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Optional integrations (SendGrid, RabbitMQ, Redis)
// leave their fields empty when unconfigured and the wiring in main degrades
// gracefully: mail falls back to the console mailer, rate limiting and the
// dashboard stats cache are disabled.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign JWTs
	AccessTTLMin    int    // access token time-to-live in minutes
	BcryptCost      int    // bcrypt cost for password hashing
	FrontendBaseURL string // base URL used when building links in outbound mail
	MailFrom        string // sender address for outbound mail
	SendgridAPIKey  string // SendGrid API key (optional; console mailer when empty)
	RabbitURL       string // AMQP broker URL (optional; mail queue disabled when empty)
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		FrontendBaseURL: must("FRONTEND_BASE_URL"),
		MailFrom:        must("MAIL_FROM"),
		SendgridAPIKey:  os.Getenv("SENDGRID_API_KEY"),
		RabbitURL:       os.Getenv("RABBITMQ_URL"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
