package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings" // strings normalizes enumerated values
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  JWTSecret only verifies
// tokens minted by the external identity service; this application
// never issues tokens of its own.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	Store     string // storage backend: "mysql" or "memory"
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify admin JWTs
}

// Load reads configuration values from environment variables and
// returns a Config.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Database variables are required only for the mysql backend; the
// memory backend exists for local development without MySQL.
func Load() Config {
	cfg := Config{
		Env:       must("APP_ENV"),
		Port:      must("APP_PORT"),
		Store:     storeBackend(),
		JWTSecret: must("JWT_SECRET"),
	}
	if cfg.Store == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// storeBackend reads STORE_BACKEND, defaulting to mysql.  Unknown
// values are fatal rather than silently falling back.
func storeBackend() string {
	v := strings.ToLower(os.Getenv("STORE_BACKEND"))
	switch v {
	case "", "mysql":
		return "mysql"
	case "memory":
		return "memory"
	}
	log.Fatalf("invalid STORE_BACKEND: %q (want mysql or memory)", v)
	return ""
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
