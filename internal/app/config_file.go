package app

import (
    "encoding/json"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested
// sections map naturally to flags and env keys.
type FileConfig struct {
    Server struct {
        Addr        string `yaml:"addr" json:"addr"`
        Origin      string `yaml:"origin" json:"origin"`
        MaxUploadMB int    `yaml:"maxUploadMB" json:"maxUploadMB"`
    } `yaml:"server" json:"server"`

    Fetch struct {
        // Timeout is a duration string, e.g. "10s".
        Timeout   string `yaml:"timeout" json:"timeout"`
        UserAgent string `yaml:"userAgent" json:"userAgent"`
    } `yaml:"fetch" json:"fetch"`

    Firebase struct {
        Project string `yaml:"project" json:"project"`
    } `yaml:"firebase" json:"firebase"`

    PDF struct {
        Disable bool `yaml:"disable" json:"disable"`
        Pages   int  `yaml:"pages" json:"pages"`
    } `yaml:"pdf" json:"pdf"`

    Limits struct {
        NameChars    int `yaml:"nameChars" json:"nameChars"`
        ContentChars int `yaml:"contentChars" json:"contentChars"`
    } `yaml:"limits" json:"limits"`

    Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads a YAML (.yml/.yaml) or JSON (.json) config file.
func LoadConfigFile(path string) (*FileConfig, error) {
    data, err := os.ReadFile(path)
    if err != nil {
        return nil, fmt.Errorf("read config: %w", err)
    }
    var fc FileConfig
    switch strings.ToLower(filepath.Ext(path)) {
    case ".json":
        if err := json.Unmarshal(data, &fc); err != nil {
            return nil, fmt.Errorf("decode config: %w", err)
        }
    default:
        if err := yaml.Unmarshal(data, &fc); err != nil {
            return nil, fmt.Errorf("decode config: %w", err)
        }
    }
    return &fc, nil
}

// MergeFileConfig fills unset cfg fields from the file. Values already set
// by flags or env win over the file.
func MergeFileConfig(cfg *Config, fc *FileConfig) {
    if cfg == nil || fc == nil {
        return
    }
    if cfg.Addr == "" {
        cfg.Addr = fc.Server.Addr
    }
    if cfg.AllowOrigin == "" {
        cfg.AllowOrigin = fc.Server.Origin
    }
    if cfg.MaxUploadBytes == 0 && fc.Server.MaxUploadMB > 0 {
        cfg.MaxUploadBytes = int64(fc.Server.MaxUploadMB) << 20
    }
    if cfg.FetchTimeout == 0 && fc.Fetch.Timeout != "" {
        if d, err := time.ParseDuration(fc.Fetch.Timeout); err == nil {
            cfg.FetchTimeout = d
        }
    }
    if cfg.UserAgent == "" {
        cfg.UserAgent = fc.Fetch.UserAgent
    }
    if cfg.FirebaseProjectID == "" {
        cfg.FirebaseProjectID = fc.Firebase.Project
    }
    if !cfg.DisablePDF {
        cfg.DisablePDF = fc.PDF.Disable
    }
    if cfg.PDFPages == 0 {
        cfg.PDFPages = fc.PDF.Pages
    }
    if cfg.NameChars == 0 {
        cfg.NameChars = fc.Limits.NameChars
    }
    if cfg.ContentChars == 0 {
        cfg.ContentChars = fc.Limits.ContentChars
    }
    if !cfg.Verbose {
        cfg.Verbose = fc.Verbose
    }
}
