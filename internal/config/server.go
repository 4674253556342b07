// Package config loads the server configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/zscan.report/internal/chart"
)

// ExampleConfigPath is the example configuration checked into the repository.
const ExampleConfigPath = "config/zscan.example.json"

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// ServerConfig holds the settings of the zscan HTTP service. Every field is
// optional; the Get* methods return the default for fields left unset.
type ServerConfig struct {
	Listen         *string `json:"listen,omitempty"`
	MaxUploadBytes *int64  `json:"max_upload_bytes,omitempty"`
	MaxFiles       *int    `json:"max_files,omitempty"`
	Workers        *int    `json:"workers,omitempty"`

	// Chart params
	ChartWidthIn  *float64 `json:"chart_width_in,omitempty"`
	ChartHeightIn *float64 `json:"chart_height_in,omitempty"`
	ChartDPI      *int     `json:"chart_dpi,omitempty"`
	EchartsAssets *string  `json:"echarts_assets,omitempty"`

	ReadTimeout  *string `json:"read_timeout,omitempty"`  // duration string like "30s"
	WriteTimeout *string `json:"write_timeout,omitempty"` // duration string like "60s"
}

// EmptyServerConfig returns a ServerConfig with all fields unset.
func EmptyServerConfig() *ServerConfig {
	return &ServerConfig{}
}

// LoadServerConfig loads a ServerConfig from a JSON file. The file must have
// a .json extension and be at most 1MB.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyServerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *ServerConfig) Validate() error {
	if c.MaxUploadBytes != nil && *c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", *c.MaxUploadBytes)
	}
	if c.MaxFiles != nil && *c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive, got %d", *c.MaxFiles)
	}
	if c.Workers != nil && (*c.Workers <= 0 || *c.Workers > 256) {
		return fmt.Errorf("workers must be between 1 and 256, got %d", *c.Workers)
	}
	if c.ChartWidthIn != nil && *c.ChartWidthIn <= 0 {
		return fmt.Errorf("chart_width_in must be positive, got %f", *c.ChartWidthIn)
	}
	if c.ChartHeightIn != nil && *c.ChartHeightIn <= 0 {
		return fmt.Errorf("chart_height_in must be positive, got %f", *c.ChartHeightIn)
	}
	if c.ChartDPI != nil && (*c.ChartDPI < 10 || *c.ChartDPI > 1200) {
		return fmt.Errorf("chart_dpi must be between 10 and 1200, got %d", *c.ChartDPI)
	}
	if c.ReadTimeout != nil && *c.ReadTimeout != "" {
		if _, err := time.ParseDuration(*c.ReadTimeout); err != nil {
			return fmt.Errorf("invalid read_timeout '%s': %w", *c.ReadTimeout, err)
		}
	}
	if c.WriteTimeout != nil && *c.WriteTimeout != "" {
		if _, err := time.ParseDuration(*c.WriteTimeout); err != nil {
			return fmt.Errorf("invalid write_timeout '%s': %w", *c.WriteTimeout, err)
		}
	}
	return nil
}

// GetListen returns the listen address or the default.
func (c *ServerConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return ":8080"
	}
	return *c.Listen
}

// GetMaxUploadBytes returns the request body limit or the default.
func (c *ServerConfig) GetMaxUploadBytes() int64 {
	if c.MaxUploadBytes == nil {
		return 32 << 20 // 32 MiB
	}
	return *c.MaxUploadBytes
}

// GetMaxFiles returns the per-request file limit or the default.
func (c *ServerConfig) GetMaxFiles() int {
	if c.MaxFiles == nil {
		return 50
	}
	return *c.MaxFiles
}

// GetWorkers returns the batch concurrency or the default.
func (c *ServerConfig) GetWorkers() int {
	if c.Workers == nil {
		return 4
	}
	return *c.Workers
}

// GetEchartsAssets returns the go-echarts assets host, empty for the library default.
func (c *ServerConfig) GetEchartsAssets() string {
	if c.EchartsAssets == nil {
		return ""
	}
	return *c.EchartsAssets
}

// GetChartOptions returns the PNG chart size and resolution.
func (c *ServerConfig) GetChartOptions() chart.Options {
	o := chart.DefaultOptions()
	if c.ChartWidthIn != nil {
		o.Width = vg.Length(*c.ChartWidthIn) * vg.Inch
	}
	if c.ChartHeightIn != nil {
		o.Height = vg.Length(*c.ChartHeightIn) * vg.Inch
	}
	if c.ChartDPI != nil {
		o.DPI = *c.ChartDPI
	}
	return o
}

// GetReadTimeout parses and returns the ReadTimeout as a time.Duration.
func (c *ServerConfig) GetReadTimeout() time.Duration {
	return parseDurationOr(c.ReadTimeout, 30*time.Second)
}

// GetWriteTimeout parses and returns the WriteTimeout as a time.Duration.
func (c *ServerConfig) GetWriteTimeout() time.Duration {
	return parseDurationOr(c.WriteTimeout, 60*time.Second)
}

func parseDurationOr(s *string, def time.Duration) time.Duration {
	if s == nil || *s == "" {
		return def
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return def // default on parse error
	}
	return d
}
