package api

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the root configuration for the docket server.
type Config struct {
	// Listen is the TCP address the HTTP server binds to.
	Listen string `hcl:"listen,optional" json:"listen,omitempty"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `hcl:"log_level,optional" json:"log_level,omitempty"`
	// LogFormat is text or json.
	LogFormat string `hcl:"log_format,optional" json:"log_format,omitempty"`
	// Registry configures the document tree.
	Registry *RegistryConfig `hcl:"registry,block" json:"registry,omitempty"`
	// API configures the REST surface.
	API *APIConfig `hcl:"api,block" json:"api,omitempty"`
	// Audit enables access recording when present.
	Audit *AuditConfig `hcl:"audit,block" json:"audit,omitempty"`
}

// RegistryConfig describes where documents live and how they are scanned.
type RegistryConfig struct {
	// Root is the directory holding the JSON documents.
	Root string `hcl:"root,optional" json:"root,omitempty"`
	// Extension selects which files become documents.
	Extension string `hcl:"extension,optional" json:"extension,omitempty"`
	// AutoReload rescans the tree before every read.
	AutoReload bool `hcl:"auto_reload,optional" json:"auto_reload,omitempty"`
	// SchemaFile, when set, validates each document against the JSON
	// Schema at this path during scans.
	SchemaFile string `hcl:"schema_file,optional" json:"schema_file,omitempty"`
}

// APIConfig describes the HTTP routes.
type APIConfig struct {
	// BasePath prefixes all document routes.
	BasePath string `hcl:"base_path,optional" json:"base_path,omitempty"`
	// Metrics exposes Prometheus metrics on /metrics. On when omitted.
	Metrics *bool `hcl:"metrics,optional" json:"metrics,omitempty"`
}

// AuditConfig describes where document accesses are recorded.
type AuditConfig struct {
	// Database is the SQLite file accesses are written to.
	Database string `hcl:"database,optional" json:"database,omitempty"`
}

// MetricsEnabled reports whether the /metrics endpoint is exposed.
func (a *APIConfig) MetricsEnabled() bool {
	return a.Metrics == nil || *a.Metrics
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills unset fields with their defaults. HCL leaves omitted
// fields at their zero values, so this runs after every decode.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.Registry == nil {
		c.Registry = &RegistryConfig{}
	}
	if c.Registry.Root == "" {
		c.Registry.Root = "./agents"
	}
	if c.Registry.Extension == "" {
		c.Registry.Extension = ".json"
	}
	if c.API == nil {
		c.API = &APIConfig{}
	}
	if c.API.BasePath == "" {
		c.API.BasePath = "/agents"
	}
	for strings.HasSuffix(c.API.BasePath, "/") && len(c.API.BasePath) > 1 {
		c.API.BasePath = strings.TrimSuffix(c.API.BasePath, "/")
	}
	if c.Audit != nil && c.Audit.Database == "" {
		c.Audit.Database = "./docket_audit.db"
	}
}

// Validate reports values that cannot be served. It expects a
// normalized config.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	if c.API.BasePath == "/" {
		return errors.New(`api.base_path must not be "/"`)
	}
	if !strings.HasPrefix(c.API.BasePath, "/") {
		return fmt.Errorf("api.base_path %q must start with /", c.API.BasePath)
	}
	if !strings.HasPrefix(c.Registry.Extension, ".") {
		return fmt.Errorf("registry.extension %q must start with .", c.Registry.Extension)
	}
	return nil
}
