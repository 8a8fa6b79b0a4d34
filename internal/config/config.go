package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time is used for duration settings
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// Tenant resolution settings.  DefaultGarageSlug names the garage that
	// accounts pre-dating the ownership/membership model fall back to.
	// LastResortEnabled gates the final "any garage in the system" fallback
	// step; disabling it turns an orphaned account into a hard "no tenant"
	// answer instead of a silent cross-tenant assignment.
	DefaultGarageSlug string
	LastResortEnabled bool

	// Chat settings.  StateTTL bounds how long a pending confirmation is
	// honoured; StateMaxAttempts caps unrecognized replies before the flow
	// is cancelled; HistoryDepth is how many prior messages are replayed
	// into the conversation context on each turn.
	StateTTL         time.Duration
	StateMaxAttempts int
	HistoryDepth     int
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Chat and tenant
// settings are optional and carry defaults.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),  // environment (dev/test/prod)
		Port:           must("APP_PORT"), // port to bind the HTTP server
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		DefaultGarageSlug: getenv("DEFAULT_GARAGE_SLUG", "default-garage"),
		LastResortEnabled: envBool("TENANT_LAST_RESORT_ENABLED", true),

		StateTTL:         envDur("CHAT_STATE_TTL", 10*time.Minute),
		StateMaxAttempts: envInt("CHAT_STATE_MAX_ATTEMPTS", 3),
		HistoryDepth:     envInt("CHAT_HISTORY_DEPTH", 5),
	}
}

// must retrieves the value of a required environment variable.  If the
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
