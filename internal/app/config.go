package app

import (
    "time"
)

// Config carries all runtime settings for the service. Precedence is
// flags > environment > config file > defaults: main populates it from
// flags, ApplyEnvToConfig fills unset fields from the environment,
// MergeFileConfig fills what is still unset from an optional YAML/JSON
// file, and Normalize applies defaults last.
type Config struct {
    // Addr is the listen address, e.g. ":5000".
    Addr string
    // AllowOrigin is the single browser origin accepted on /api routes.
    AllowOrigin string
    // FirebaseProjectID enables ID token verification when non-empty.
    FirebaseProjectID string

    // FetchTimeout bounds each outbound page fetch.
    FetchTimeout time.Duration
    // UserAgent is sent on every outbound page fetch.
    UserAgent string

    // NameChars caps the link-extraction display title.
    NameChars int
    // ContentChars caps the link-extraction text body.
    ContentChars int
    // PDFPages caps how many pages of an uploaded PDF are read.
    PDFPages int
    // MaxUploadBytes caps the request body on uploads.
    MaxUploadBytes int64

    // DisablePDF turns the PDF extraction capability off.
    DisablePDF bool
    Verbose    bool
}

const (
    defaultAddr           = ":5000"
    defaultAllowOrigin    = "http://localhost:5173"
    defaultFetchTimeout   = 10 * time.Second
    defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
    defaultNameChars      = 60
    defaultContentChars   = 12000
    defaultPDFPages       = 20
    defaultMaxUploadBytes = 32 << 20
)

// Normalize fills any still-unset field with its default.
func (c *Config) Normalize() {
    if c.Addr == "" {
        c.Addr = defaultAddr
    }
    if c.AllowOrigin == "" {
        c.AllowOrigin = defaultAllowOrigin
    }
    if c.FetchTimeout == 0 {
        c.FetchTimeout = defaultFetchTimeout
    }
    if c.UserAgent == "" {
        c.UserAgent = defaultUserAgent
    }
    if c.NameChars == 0 {
        c.NameChars = defaultNameChars
    }
    if c.ContentChars == 0 {
        c.ContentChars = defaultContentChars
    }
    if c.PDFPages == 0 {
        c.PDFPages = defaultPDFPages
    }
    if c.MaxUploadBytes == 0 {
        c.MaxUploadBytes = defaultMaxUploadBytes
    }
}
