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
// and costs, a time.Duration for the seat-hold expiry window.
type Config struct {
    Env          string        // application environment (e.g. "dev", "prod")
    Port         string        // HTTP port to listen on
    DBUser       string        // database username
    DBPass       string        // database password (optional)
    DBHost       string        // database host address
    DBPort       string        // database port number
    DBName       string        // database name
    JWTSecret    string        // secret used to sign JWTs
    AccessTTLMin int           // access token time‑to‑live in minutes
    BcryptCost   int           // bcrypt cost for password hashing
    SeatHoldTTL  time.Duration // idle window before a showtime's held seats expire
    AMQPURL      string        // RabbitMQ connection URL (optional)
    VNPay        VNPayConfig   // payment provider settings
}

// VNPayConfig carries everything needed to build signed payment URLs and to
// verify inbound callbacks.  AppResultURL is the native-app deep link and
// WebResultURL the browser page the callback handlers redirect to; both get
// a status query parameter appended.
type VNPayConfig struct {
    TmnCode      string // merchant terminal code issued by the provider
    HashSecret   string // shared secret for HMAC-SHA512 signatures
    PayURL       string // hosted checkout base URL
    ReturnURL    string // public base URL of this server, used to build callback URLs
    AppResultURL string // deep link for the native client shell
    WebResultURL string // result page for the web client shell
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),                 // environment (dev/test/prod)
        Port:         must("APP_PORT"),                // port to bind the HTTP server
        DBUser:       must("DB_USER"),                 // database user
        DBPass:       os.Getenv("DB_PASS"),            // database password (empty allowed)
        DBHost:       must("DB_HOST"),                 // database host
        DBPort:       must("DB_PORT"),                 // database port
        DBName:       must("DB_NAME"),                 // database name
        JWTSecret:    must("JWT_SECRET"),              // secret used for signing JWTs
        AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"), // TTL for access tokens in minutes
        BcryptCost:   mustInt("BCRYPT_COST"),          // bcrypt cost factor
        SeatHoldTTL:  parseDur(getenv("SEAT_HOLD_TTL", "300s")), // seat-hold idle expiry
        AMQPURL:      os.Getenv("RABBITMQ_URL"),       // broker URL (empty disables publishing)
        VNPay: VNPayConfig{
            TmnCode:      must("VNPAY_TMN_CODE"),       // merchant code
            HashSecret:   must("VNPAY_HASH_SECRET"),    // signing secret
            PayURL:       must("VNPAY_URL"),            // hosted checkout URL
            ReturnURL:    must("VNPAY_RETURN_URL"),     // base URL for callback endpoints
            AppResultURL: must("VNPAY_APP_RESULT_URL"), // native deep link target
            WebResultURL: must("VNPAY_WEB_RESULT_URL"), // web result page
        },
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

// getenv returns the value of an optional environment variable, falling
// back to the provided default when it is unset or empty.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// parseDur parses a duration string, falling back to the default seat-hold
// window on error.
func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return 5 * time.Minute
    }
    return d
}
