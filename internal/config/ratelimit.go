package config

import (
    "time"
)

// RateLimitConfig defines the attempt budgets guarding the credential
// endpoints.  Login and registration carry separate budgets over a shared
// fixed window.  The backend holding the counters is chosen separately at
// startup: Redis when NewRedisClient finds a configured server, otherwise
// process-local memory.
type RateLimitConfig struct {
    LoginMax    int           // allowed login attempts per window per client
    RegisterMax int           // allowed registration attempts per window per client
    Window      time.Duration // fixed window length
}

// LoadRateLimitConfig reads the rate limit settings from the environment.
// Defaults mirror the observed production values: 5 login and 3 registration
// attempts per 15 minutes.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        LoginMax:    intenv("LOGIN_MAX_ATTEMPTS", 5),
        RegisterMax: intenv("REGISTER_MAX_ATTEMPTS", 3),
        Window:      durenv("RATE_LIMIT_WINDOW", 15*time.Minute),
    }
    if cfg.LoginMax < 1 {
        cfg.LoginMax = 1
    }
    if cfg.RegisterMax < 1 {
        cfg.RegisterMax = 1
    }
    if cfg.Window <= 0 {
        cfg.Window = 15 * time.Minute
    }
    return cfg
}

func durenv(key string, def time.Duration) time.Duration {
    v := getenv(key, "")
    if v == "" {
        return def
    }
    if d, err := time.ParseDuration(v); err == nil {
        return d
    }
    return def
}
