package mesh

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Render formats accepted by OutputConfig.Format
const (
	FormatRaster = "raster"
	FormatVector = "vector"
	FormatBoth   = "both"
)

// DefaultHTTPPort is used when neither config nor flags choose a port
const DefaultHTTPPort = 8080

// DefaultConfig returns a configuration with every default filled in
func DefaultConfig() *Config {
	return &Config{
		Matcher: DefaultMatchConfig(),
		Output: OutputConfig{
			Format: FormatVector,
			Scale:  0.25,
		},
		MQTT: MQTTConfig{
			PublishPrefix: DefaultPublishPrefix,
		},
		HTTP: HTTPConfig{
			Port: DefaultHTTPPort,
		},
	}
}

// LoadConfig loads the configuration from a YAML file. Fields absent from
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Matcher.Threshold < 1 {
		return fmt.Errorf("matcher.threshold must be at least 1, got %d", c.Matcher.Threshold)
	}
	if c.Matcher.Workers < 0 || c.Matcher.Workers > RotationCount {
		return fmt.Errorf("matcher.workers must be between 0 and %d, got %d", RotationCount, c.Matcher.Workers)
	}
	switch c.Output.Format {
	case "", FormatRaster, FormatVector, FormatBoth:
	default:
		return fmt.Errorf("output.format must be raster, vector or both, got %q", c.Output.Format)
	}
	if c.Output.Scale < 0 {
		return fmt.Errorf("output.scale must not be negative, got %g", c.Output.Scale)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
