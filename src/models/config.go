package models

// -----------------------------------------------------------------------------

// MConfig is the root application configuration, loaded from YAML and then
// overridden by environment variables where env tags are present.
type MConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL"`
	Port      int    `yaml:"port" env:"PORT"`
	GRPC_Host string `yaml:"grpc_host" env:"GRPC_HOST"`
	GRPC_Port int    `yaml:"grpc_port" env:"GRPC_PORT"`

	Projector *MProjectorConfig `yaml:"projector"`
	Watches   []*MWatchConfig   `yaml:"watches"`
	NATS      *MNATSConfig      `yaml:"nats"`
}

// -----------------------------------------------------------------------------

// MProjectorConfig carries the tunables of the view derivation
type MProjectorConfig struct {
	// DefaultDurationSeconds bounds streams whose stop time cannot be derived
	// (zero rate with unset stop time)
	DefaultDurationSeconds int64 `yaml:"default_duration_seconds"`
}

// -----------------------------------------------------------------------------

// MWatchConfig describes one contract watch: which provider understands the
// chain, which transport reaches it, and which stream IDs to track.
type MWatchConfig struct {
	Name            string `yaml:"name"`
	Provider        string `yaml:"provider"`  // Registry key, e.g. "paystream"
	Transport       string `yaml:"transport"` // "websocket" or "http"
	Network         string `yaml:"network"`
	Token           string `yaml:"token"`
	ContractAddress string `yaml:"contract_address"`
	Endpoint        string `yaml:"endpoint"`
	APIKey          string `yaml:"api_key" env:"-"`

	StreamIDs           []string `yaml:"stream_ids"`
	PollIntervalSeconds int      `yaml:"poll_interval_seconds"`

	ConnectionConfig *MConnectionConfig `yaml:"connection"`
}

// -----------------------------------------------------------------------------

// MConnectionConfig holds transport-level tuning shared by all client types
type MConnectionConfig struct {
	ReconnectAttempts       int `yaml:"reconnect_attempts"`
	HandshakeTimeoutSeconds int `yaml:"handshake_timeout_seconds"`
	MessageBufferSize       int `yaml:"message_buffer_size"`
	RequestTimeoutSeconds   int `yaml:"request_timeout_seconds"`
	PingIntervalSeconds     int `yaml:"ping_interval_seconds"` // Negative disables keepalive pings
}

// -----------------------------------------------------------------------------

// MNATSConfig holds the downstream publishing configuration
type MNATSConfig struct {
	Servers       []string `yaml:"servers" env:"NATS_SERVERS" envSeparator:","`
	ClientID      string   `yaml:"client_id"`
	SubjectPrefix string   `yaml:"subject_prefix"`
	Format        string   `yaml:"format"` // Wire format: "json", "proto" or "bin"

	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	ReconnectWaitSeconds  int `yaml:"reconnect_wait_seconds"`
	MaxReconnects         int `yaml:"max_reconnects"`
	FlushTimeoutSeconds   int `yaml:"flush_timeout_seconds"`

	JetStream *MJetStreamConfig `yaml:"jetstream"`
}

// -----------------------------------------------------------------------------

// MJetStreamConfig enables persistent publishing through JetStream
type MJetStreamConfig struct {
	Enabled     bool     `yaml:"enabled"`
	StreamName  string   `yaml:"stream_name"`
	Subjects    []string `yaml:"subjects"`
	Replicas    int      `yaml:"replicas"`
	MaxAgeHours int      `yaml:"max_age_hours"`
	MaxMsgs     int64    `yaml:"max_msgs"`
	MaxBytes    int64    `yaml:"max_bytes"`
	MaxMsgSize  int32    `yaml:"max_msg_size"`
}
