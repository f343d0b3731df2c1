package gateway

import (
	"fmt"

	"github.com/skillsenselab/mediagate/acquire"
	"github.com/skillsenselab/mediagate/auth"
	"github.com/skillsenselab/mediagate/config"
	"github.com/skillsenselab/mediagate/conversion"
	"github.com/skillsenselab/mediagate/extract"
	"github.com/skillsenselab/mediagate/observability"
	"github.com/skillsenselab/mediagate/server"
	"github.com/skillsenselab/mediagate/transcription/whisper"
	"github.com/skillsenselab/mediagate/workspace"
)

const ServiceName = "mediagate"

// Config is the full service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	Convert       conversion.Config    `yaml:"convert" mapstructure:"convert"`
	Fetch         acquire.Config       `yaml:"fetch" mapstructure:"fetch"`
	Extract       extract.Config       `yaml:"extract" mapstructure:"extract"`
	Workspace     workspace.Config     `yaml:"workspace" mapstructure:"workspace"`
}

// Load resolves the configuration from config.yml, the environment and .env
// files, then applies defaults and validates.
func Load(opts ...config.LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := config.LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyDefaults fills in zero-value fields across every section.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Convert.ApplyDefaults()
	c.Fetch.ApplyDefaults()
	c.Extract.ApplyDefaults()
	c.Workspace.ApplyDefaults()
}

// Validate checks the configuration sections that can fail fast at startup.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("config.auth: %w", err)
	}
	return nil
}
