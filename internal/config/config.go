package config

import (
    "fmt"
    "os"
    "strings"
    "time"
)

type Config struct {
    Env              string
    ListenAddr       string // health server; empty disables it
    DatabaseURL      string
    DatabasePassword string
    AutoMigrate      bool

    Regions         []string
    BatchSize       int
    PoolSize        int
    SubBatchSize    int
    SubBatchPause   time.Duration
    CycleInterval   time.Duration
    RequestTimeout  time.Duration
    UserAgent       string
}

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// Load reads configuration from the environment. Missing required settings are
// reported as an error; the returned Config must not be used to start work.
func Load() (Config, error) {
    cfg := Config{
        Env:              getenv("APP_ENV", "development"),
        ListenAddr:       os.Getenv("LISTEN_ADDR"),
        DatabaseURL:      os.Getenv("DATABASE_URL"),
        DatabasePassword: os.Getenv("DATABASE_PASSWORD"),
        AutoMigrate:      getenvBool("AUTO_MIGRATE", false),
        Regions:          getenvList("TARGET_REGIONS", []string{"MA"}),
        BatchSize:        getenvInt("BATCH_SIZE", 50),
        PoolSize:         getenvInt("POOL_SIZE", 100),
        SubBatchSize:     getenvInt("SUB_BATCH_SIZE", 10),
        SubBatchPause:    getenvDuration("SUB_BATCH_PAUSE", 5*time.Second),
        CycleInterval:    getenvDuration("CYCLE_INTERVAL", 5*time.Minute),
        RequestTimeout:   getenvDuration("REQUEST_TIMEOUT", 10*time.Second),
        UserAgent:        getenv("USER_AGENT", "ProvIntel/1.0 (+free-search enrichment)"),
    }
    var missing []string
    if cfg.DatabaseURL == "" {
        missing = append(missing, "DATABASE_URL")
    }
    if cfg.DatabasePassword == "" {
        missing = append(missing, "DATABASE_PASSWORD")
    }
    if len(missing) > 0 {
        return cfg, fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
    }
    if cfg.RequestTimeout > 10*time.Second {
        cfg.RequestTimeout = 10 * time.Second
    }
    return cfg, nil
}

func getenvInt(key string, def int) int {
    if v := os.Getenv(key); v != "" {
        var out int
        _, err := fmt.Sscanf(v, "%d", &out)
        if err == nil && out > 0 { return out }
    }
    return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
    if v := os.Getenv(key); v != "" {
        d, err := time.ParseDuration(v)
        if err == nil && d >= 0 { return d }
    }
    return def
}

func getenvBool(key string, def bool) bool {
    switch strings.ToLower(os.Getenv(key)) {
    case "1", "true", "yes", "on":
        return true
    case "0", "false", "no", "off":
        return false
    }
    return def
}

// getenvList splits a comma separated value, upper-casing region codes.
func getenvList(key string, def []string) []string {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    var out []string
    for _, part := range strings.Split(v, ",") {
        if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
            out = append(out, p)
        }
    }
    if len(out) == 0 {
        return def
    }
    return out
}
