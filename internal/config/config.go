package config // package config loads application configuration from environment variables

import (
	"fmt"     // fmt formats configuration errors
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits list-valued variables

	"github.com/joho/godotenv" // godotenv loads a local .env file into the environment
)

// Environment names recognised by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Database drivers recognised by DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Values not set in the environment fall back to
// the defaults used by a local development setup.
type Config struct {
	Env            string   // application environment (development, production, test)
	Port           string   // HTTP port to listen on
	DBDriver       string   // "mysql" or "sqlite"
	DBUser         string   // database username
	DBPass         string   // database password (optional)
	DBHost         string   // database host address
	DBPort         string   // database port number
	DBName         string   // database name
	SQLitePath     string   // database file used when DBDriver is sqlite
	LogLevel       string   // zerolog level name
	LogFile        string   // optional rotating log file
	AllowedOrigins []string // CORS allow-list
	RabbitMQURL    string   // change events are published only when set
}

// Load reads an optional .env file and then the process environment and
// returns a Config.  Variables already present in the environment win over
// the .env file.  MySQL connection settings are required only when the mysql
// driver is selected.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env file is not an error

	cfg := Config{
		Env:         strings.ToLower(envStr("APP_ENV", EnvDevelopment)),
		Port:        envStr("APP_PORT", "3001"),
		DBDriver:    strings.ToLower(envStr("DB_DRIVER", DriverMySQL)),
		DBUser:      os.Getenv("DB_USER"),
		DBPass:      os.Getenv("DB_PASS"),
		DBHost:      envStr("DB_HOST", "localhost"),
		DBPort:      envStr("DB_PORT", "3306"),
		DBName:      os.Getenv("DB_NAME"),
		SQLitePath:  envStr("SQLITE_PATH", "catalog.db"),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		RabbitMQURL: firstNonEmpty(os.Getenv("RABBITMQ_URL"), os.Getenv("AMQP_URL")),
	}
	cfg.AllowedOrigins = allowedOrigins(cfg.Env, os.Getenv("ALLOWED_ORIGINS"))

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("invalid APP_PORT %q", cfg.Port)
	}
	switch cfg.DBDriver {
	case DriverMySQL:
		if cfg.DBUser == "" {
			return Config{}, fmt.Errorf("missing required env var: DB_USER")
		}
		if cfg.DBName == "" {
			return Config{}, fmt.Errorf("missing required env var: DB_NAME")
		}
	case DriverSQLite:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// IsDevelopment reports whether internal error details may be exposed to
// API clients.
func (c Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// IsProduction reports whether the stricter production defaults apply.
func (c Config) IsProduction() bool { return c.Env == EnvProduction }

func allowedOrigins(env, raw string) []string {
	if env != EnvProduction {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
