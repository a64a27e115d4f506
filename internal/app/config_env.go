package app

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil {
        return
    }

    if cfg.Addr == "" {
        // Support both ADDR and the conventional PORT
        if v := os.Getenv("ADDR"); v != "" {
            cfg.Addr = v
        } else if v := os.Getenv("PORT"); v != "" {
            cfg.Addr = ":" + v
        }
    }
    if cfg.AllowOrigin == "" {
        cfg.AllowOrigin = os.Getenv("ALLOW_ORIGIN")
    }
    if cfg.FirebaseProjectID == "" {
        cfg.FirebaseProjectID = os.Getenv("FIREBASE_PROJECT_ID")
    }
    if cfg.UserAgent == "" {
        cfg.UserAgent = os.Getenv("FETCH_USER_AGENT")
    }

    if cfg.FetchTimeout == 0 {
        if s := os.Getenv("FETCH_TIMEOUT"); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                cfg.FetchTimeout = d
            }
        }
    }

    setInt := func(dst *int, envKey string) {
        if *dst != 0 {
            return
        }
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envKey))); err == nil && n > 0 {
            *dst = n
        }
    }
    setInt(&cfg.NameChars, "NAME_CHARS")
    setInt(&cfg.ContentChars, "CONTENT_CHARS")
    setInt(&cfg.PDFPages, "PDF_PAGES")

    if cfg.MaxUploadBytes == 0 {
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_UPLOAD_MB"))); err == nil && n > 0 {
            cfg.MaxUploadBytes = int64(n) << 20
        }
    }

    setBool := func(dst *bool, envKey string) {
        if *dst {
            return
        }
        if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
            if s == "1" || s == "true" || s == "yes" || s == "on" {
                *dst = true
            }
        }
    }
    setBool(&cfg.DisablePDF, "PDF_DISABLE")
    setBool(&cfg.Verbose, "VERBOSE")
}
