package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic Designer.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Designer DesignerConfig `yaml:"designer"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Redis    RedisConfig    `yaml:"redis"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	Security SecurityConfig `yaml:"security"`
}

// DesignerConfig holds the defaults stamped into every exported ROEHN document.
type DesignerConfig struct {
	SoftwareVersion string           `yaml:"software_version"`
	TimeZone        string           `yaml:"time_zone"`
	Latitude        float64          `yaml:"latitude"`
	Longitude       float64          `yaml:"longitude"`
	TechnicalArea   string           `yaml:"technical_area"`
	TechnicalRoom   string           `yaml:"technical_room"`
	BoardName       string           `yaml:"board_name"`
	Controller      ControllerConfig `yaml:"controller"`
	Programmer      ProgrammerConfig `yaml:"programmer"`
}

// ControllerConfig describes the logic-server module placed on the default board.
type ControllerConfig struct {
	// Model is one of AQL-GV-M4, ADP-M8 or ADP-M16.
	Model          string `yaml:"model"`
	IPAddress      string `yaml:"ip_address"`
	NetworkAddress int    `yaml:"network_address"`
	DeviceID       int    `yaml:"device_id"`
}

// ProgrammerConfig identifies the integrator recorded in exported documents.
type ProgrammerConfig struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// RedisConfig contains the settings for the cross-process project lock.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// LockTTL is the lease length of a project lock in seconds.
	LockTTL int `yaml:"lock_ttl"`
	// LockWait is how long an editor waits for a busy project lock in seconds.
	LockWait int `yaml:"lock_wait"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Controller models accepted in designer.controller.model.
var controllerModels = []string{"AQL-GV-M4", "ADP-M8", "ADP-M16"}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: DESIGNER_SECTION_KEY
// For example: DESIGNER_DATABASE_PATH, DESIGNER_REDIS_ADDR
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadDefaults returns the defaults with environment overrides applied.
// Offline commands use it when no configuration file is present.
func LoadDefaults() (*Config, error) {
	cfg := Default()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		Designer: DesignerConfig{
			SoftwareVersion: "1.0.8.67",
			TimeZone:        "America/Bahia",
			TechnicalArea:   "Área Técnica",
			TechnicalRoom:   "Sala Técnica",
			BoardName:       "Quadro Elétrico",
			Controller: ControllerConfig{
				Model:          "AQL-GV-M4",
				IPAddress:      "192.168.0.245",
				NetworkAddress: 245,
				DeviceID:       1,
			},
			Programmer: ProgrammerConfig{
				Name: "Programador",
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/designer.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-designer",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			LockTTL:  30,
			LockWait: 10,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 60,
				Idle:  60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: DESIGNER_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DESIGNER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("DESIGNER_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("DESIGNER_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("DESIGNER_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("DESIGNER_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("DESIGNER_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DESIGNER_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	if v := os.Getenv("DESIGNER_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("DESIGNER_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	if v := os.Getenv("DESIGNER_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors.
//
// The JWT secret is only required when the API is served; see ValidateServe.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if !isControllerModel(c.Designer.Controller.Model) {
		errs = append(errs, fmt.Sprintf("designer.controller.model must be one of %s",
			strings.Join(controllerModels, ", ")))
	}
	if c.Designer.Controller.NetworkAddress < 1 {
		errs = append(errs, "designer.controller.network_address must be positive")
	}
	if c.Designer.Controller.DeviceID < 1 {
		errs = append(errs, "designer.controller.device_id must be positive")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, "redis.addr is required when redis is enabled")
	}
	if c.Redis.LockTTL < 1 {
		errs = append(errs, "redis.lock_ttl must be positive")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ValidateServe checks the settings that only matter when the HTTP API runs.
func (c *Config) ValidateServe() error {
	const minJWTSecretLength = 32
	if c.Security.JWT.Secret == "" {
		return fmt.Errorf("security.jwt.secret is required (set DESIGNER_JWT_SECRET environment variable)")
	}
	if len(c.Security.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf("security.jwt.secret must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

func isControllerModel(model string) bool {
	for _, m := range controllerModels {
		if m == model {
			return true
		}
	}
	return false
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
