package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings splits and normalizes list-valued variables
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for costs and
// wall-clock hours, slices for allow-lists.
type Config struct {
    Env            string   // application environment (e.g. "dev", "prod")
    Port           string   // HTTP port to listen on
    DBUser         string   // database username
    DBPass         string   // database password (optional)
    DBHost         string   // database host address
    DBPort         string   // database port number
    DBName         string   // database name
    IdentitySecret string   // secret used to verify identity-provider tokens; empty enables the insecure header fallback
    OwnerEmails    []string // lower-cased emails granted the platform owner flag on every identity sync
    BcryptCost     int      // bcrypt cost for the admin unlock password
    ChatPurgeHour  int      // wall-clock hour (0-23) of the daily chat purge
    Timezone       string   // IANA timezone the purge boundary is computed in
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  IDENTITY_JWT_SECRET
// is deliberately optional: leaving it unset switches the server into the
// trusted-header identity mode, which is only safe when no identity
// provider is reachable.  Load warns loudly when that happens.
func Load() Config {
    cfg := Config{
        Env:            must("APP_ENV"),                    // environment (dev/test/prod)
        Port:           must("APP_PORT"),                   // port to bind the HTTP server
        DBUser:         must("DB_USER"),                    // database user
        DBPass:         os.Getenv("DB_PASS"),               // database password (empty allowed)
        DBHost:         must("DB_HOST"),                    // database host
        DBPort:         must("DB_PORT"),                    // database port
        DBName:         must("DB_NAME"),                    // database name
        IdentitySecret: os.Getenv("IDENTITY_JWT_SECRET"),   // token verification secret (optional, see above)
        OwnerEmails:    emailList(must("OWNER_EMAILS")),    // comma-separated owner allow-list
        BcryptCost:     mustInt("BCRYPT_COST"),             // bcrypt cost factor
        ChatPurgeHour:  intOr("CHAT_PURGE_HOUR", 4),        // daily retention boundary hour
        Timezone:       strOr("TIMEZONE", "Europe/Berlin"), // reference timezone for the boundary
    }
    if cfg.IdentitySecret == "" {
        log.Printf("config: IDENTITY_JWT_SECRET is unset; falling back to TRUSTED identity headers (insecure, dev only)")
    }
    return cfg
}

// IsOwnerEmail reports whether the given address belongs to the owner
// allow-list.  Comparison is case-insensitive; the list is stored
// lower-cased by Load.
func (c Config) IsOwnerEmail(email string) bool {
    email = strings.ToLower(strings.TrimSpace(email))
    for _, e := range c.OwnerEmails {
        if e == email {
            return true
        }
    }
    return false
}

// emailList splits a comma-separated list of addresses, trimming whitespace
// and lower-casing each entry.  Empty entries are dropped.
func emailList(raw string) []string {
    parts := strings.Split(raw, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.ToLower(strings.TrimSpace(p))
        if p != "" {
            out = append(out, p)
        }
    }
    return out
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

// strOr returns the variable's value or the given default when unset.
func strOr(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// intOr returns the variable's integer value or the given default when the
// variable is unset or not a valid integer.
func intOr(key string, def int) int {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    n, err := strconv.Atoi(v)
    if err != nil {
        return def
    }
    return n
}
