package config

import (
	"fmt"
	"os"

	"stream-observer/src/models"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Default tunables applied when the YAML leaves them unset
const (
	DefaultDurationSeconds        = 3600
	DefaultPollIntervalSeconds    = 15
	DefaultReconnectAttempts      = 5
	DefaultHandshakeTimeoutSecs   = 10
	DefaultMessageBufferSize      = 1000
	DefaultRequestTimeoutSeconds  = 10
	DefaultPingIntervalSeconds    = 30
	DefaultNATSConnectTimeoutSecs = 5
	DefaultNATSReconnectWaitSecs  = 2
	DefaultNATSMaxReconnects      = 60
	DefaultNATSFlushTimeoutSecs   = 5
	DefaultSubjectPrefix          = "streams.view"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from a YAML file. Environment
// variables override file values where the models declare env tags.
func NewConfig(configPath string) (*Config, error) {
	// 1. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 2. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	// 3. Apply environment overrides on top of the file values
	if err := env.Parse(&modelConfig); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 4. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// applyDefaults fills unset optional fields so the rest of the code never has
// to re-check them
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.GRPC_Host == "" {
		c.GRPC_Host = "localhost"
	}

	if c.Projector == nil {
		c.Projector = &models.MProjectorConfig{}
	}
	if c.Projector.DefaultDurationSeconds <= 0 {
		c.Projector.DefaultDurationSeconds = DefaultDurationSeconds
	}

	for _, watch := range c.Watches {
		ApplyWatchDefaults(watch)
	}

	if c.NATS != nil {
		if c.NATS.ClientID == "" {
			c.NATS.ClientID = c.Name
		}
		if c.NATS.SubjectPrefix == "" {
			c.NATS.SubjectPrefix = DefaultSubjectPrefix
		}
		if c.NATS.Format == "" {
			c.NATS.Format = "json"
		}
		if c.NATS.ConnectTimeoutSeconds <= 0 {
			c.NATS.ConnectTimeoutSeconds = DefaultNATSConnectTimeoutSecs
		}
		if c.NATS.ReconnectWaitSeconds <= 0 {
			c.NATS.ReconnectWaitSeconds = DefaultNATSReconnectWaitSecs
		}
		if c.NATS.MaxReconnects == 0 {
			c.NATS.MaxReconnects = DefaultNATSMaxReconnects
		}
		if c.NATS.FlushTimeoutSeconds <= 0 {
			c.NATS.FlushTimeoutSeconds = DefaultNATSFlushTimeoutSecs
		}
	}
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation and checks NATS/Watches sub-configs.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config name cannot be empty")
	}

	// Validate Application Ports (using c.Port directly due to embedding)
	if c.Port <= 1024 || c.Port > 65535 {
		return fmt.Errorf("invalid application port number: %d (must be between 1025 and 65535)", c.Port)
	}
	if c.GRPC_Port <= 1024 || c.GRPC_Port > 65535 {
		return fmt.Errorf("invalid gRPC port number: %d (must be between 1025 and 65535)", c.GRPC_Port)
	}

	// Validate Watches
	if len(c.Watches) == 0 {
		return fmt.Errorf("at least one watch must be configured")
	}
	seen := make(map[string]bool)
	for i, watch := range c.Watches {
		if err := ValidateWatch(watch); err != nil {
			return fmt.Errorf("watch %d: %w", i, err)
		}
		if seen[watch.Name] {
			return fmt.Errorf("watch '%s': name is duplicated", watch.Name)
		}
		seen[watch.Name] = true
	}

	// Validation of NATS config (minimal check)
	if c.NATS == nil || len(c.NATS.Servers) == 0 {
		return fmt.Errorf("NATS servers list cannot be empty")
	}

	// Format must map to a known serializer
	switch c.NATS.Format {
	case "json", "proto", "bin":
	default:
		return fmt.Errorf("unknown NATS format '%s' (expected json, proto or bin)", c.NATS.Format)
	}

	return nil
}

// -----------------------------------------------------------------------------

// ApplyWatchDefaults fills unset tunables on one watch config. Watches added
// at runtime go through it too, so polling never runs with a zero interval.
func ApplyWatchDefaults(watch *models.MWatchConfig) {
	if watch.PollIntervalSeconds <= 0 {
		watch.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if watch.ConnectionConfig == nil {
		watch.ConnectionConfig = &models.MConnectionConfig{}
	}
	cc := watch.ConnectionConfig
	if cc.ReconnectAttempts <= 0 {
		cc.ReconnectAttempts = DefaultReconnectAttempts
	}
	if cc.HandshakeTimeoutSeconds <= 0 {
		cc.HandshakeTimeoutSeconds = DefaultHandshakeTimeoutSecs
	}
	if cc.MessageBufferSize <= 0 {
		cc.MessageBufferSize = DefaultMessageBufferSize
	}
	if cc.RequestTimeoutSeconds <= 0 {
		cc.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if cc.PingIntervalSeconds == 0 {
		cc.PingIntervalSeconds = DefaultPingIntervalSeconds
	}
}

// -----------------------------------------------------------------------------

// ValidateWatch checks one watch config. It is also used by the control API
// when watches are added at runtime, so it must not depend on Config state.
func ValidateWatch(watch *models.MWatchConfig) error {
	if watch == nil {
		return fmt.Errorf("watch config cannot be nil")
	}
	if watch.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if watch.Provider == "" {
		return fmt.Errorf("watch '%s': provider cannot be empty", watch.Name)
	}
	switch watch.Transport {
	case "websocket", "http":
	case "":
		return fmt.Errorf("watch '%s': transport cannot be empty", watch.Name)
	default:
		return fmt.Errorf("watch '%s': unknown transport '%s' (expected websocket or http)", watch.Name, watch.Transport)
	}
	if watch.Endpoint == "" {
		return fmt.Errorf("watch '%s': endpoint cannot be empty", watch.Name)
	}
	if watch.ContractAddress == "" {
		return fmt.Errorf("watch '%s': contract address cannot be empty", watch.Name)
	}
	// StreamIDs may be empty: streams can be attached later over the control API
	return nil
}

// -----------------------------------------------------------------------------

// GetWatchByName returns a single watch config by name
func (c *Config) GetWatchByName(name string) *models.MWatchConfig {
	for _, watch := range c.Watches {
		if watch.Name == name {
			return watch
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// GetWatchesByTransport returns watch configurations by transport type
func (c *Config) GetWatchesByTransport(transport string) []models.MWatchConfig {
	var result []models.MWatchConfig
	for _, watch := range c.Watches {
		if watch.Transport == transport {
			result = append(result, *watch)
		}
	}
	return result
}
