package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt assembles the database connection string
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time is used for token lifetimes
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations and costs.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    AccessSecret   string // secret used to sign access tokens
    RefreshSecret  string // secret used to sign refresh tokens
    Issuer         string // iss claim stamped into every token
    Audience       string // aud claim stamped into every token
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The two signing
// secrets are required and must differ so that knowledge of one never
// forges tokens of the other class.
func Load() Config {
    cfg := Config{
        Env:            must("APP_ENV"),            // environment (dev/test/prod)
        Port:           must("APP_PORT"),           // port to bind the HTTP server
        DBUser:         must("DB_USER"),            // database user
        DBPass:         os.Getenv("DB_PASS"),       // database password (empty allowed)
        DBHost:         must("DB_HOST"),            // database host
        DBPort:         must("DB_PORT"),            // database port
        DBName:         must("DB_NAME"),            // database name
        AccessSecret:   must("JWT_ACCESS_SECRET"),  // HS256 secret for access tokens
        RefreshSecret:  must("JWT_REFRESH_SECRET"), // HS256 secret for refresh tokens
        Issuer:         getenv("JWT_ISSUER", "fadl-dashboard"),
        Audience:       getenv("JWT_AUDIENCE", "fadl-dashboard-users"),
        AccessTTLMin:   intenv("ACCESS_TOKEN_TTL_MIN", 15),
        RefreshTTLDays: intenv("REFRESH_TOKEN_TTL_DAYS", 7),
        BcryptCost:     intenv("BCRYPT_COST", 12),
    }
    if cfg.AccessSecret == cfg.RefreshSecret {
        log.Fatal("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
    }
    return cfg
}

// Production reports whether the app runs with production hardening.  The
// refresh cookie gains the Secure attribute only in production.
func (c Config) Production() bool { return c.Env == "prod" }

// DSN builds the MySQL connection string for the user and session stores.
// parseTime maps DATETIME columns onto time.Time, and loc=UTC keeps stored
// session expiries comparable against UTC_TIMESTAMP() in the lookup query.
func (c Config) DSN() string {
    auth := c.DBUser
    if c.DBPass != "" {
        auth += ":" + c.DBPass
    }
    return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
        auth, c.DBHost, c.DBPort, c.DBName)
}

// AccessTTL returns the access token lifetime as a duration.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// RefreshTTL returns the refresh token lifetime as a duration.
func (c Config) RefreshTTL() time.Duration { return time.Duration(c.RefreshTTLDays) * 24 * time.Hour }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenv returns the variable's value or a default when unset.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intenv is like getenv but converts the value into an integer.  A value
// that is present but malformed is a configuration error and fatal.
func intenv(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, v)
    }
    return n
}
