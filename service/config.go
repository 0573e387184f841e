package service

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address. Default: ":8790".
	Listen string `yaml:"listen"`
	// JournalPath is the SQLite event journal location. Empty disables
	// journalling.
	JournalPath string `yaml:"journal_path"`
	// SanitizeMarkup runs every loaded document through the default
	// bluemonday policy before parsing. Default: true — loaded markup is
	// untrusted unless the operator says otherwise.
	SanitizeMarkup bool `yaml:"sanitize_markup"`
	// Documents are preloaded at startup, either inline or from a file.
	Documents []DocumentConfig `yaml:"documents"`
}

// DocumentConfig defines a document preloaded at startup.
type DocumentConfig struct {
	Name   string `yaml:"name"`
	Markup string `yaml:"markup"` // inline markup
	Path   string `yaml:"path"`   // or a file to read it from
}

// LoadConfigFile reads a YAML configuration file and resolves document
// file references.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("service: read config: %w", err)
	}

	cfg := Config{SanitizeMarkup: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("service: parse config: %w", err)
	}

	for i := range cfg.Documents {
		d := &cfg.Documents[i]
		if d.Markup == "" && d.Path != "" {
			raw, err := os.ReadFile(d.Path)
			if err != nil {
				return nil, fmt.Errorf("service: read document %q: %w", d.Name, err)
			}
			d.Markup = string(raw)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8790"
	}
	for i := range c.Documents {
		if c.Documents[i].Name == "" {
			c.Documents[i].Name = fmt.Sprintf("document-%d", i+1)
		}
	}
}
