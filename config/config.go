package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/moffa90/go-mysb/bootloader"
	"github.com/moffa90/go-mysb/firmware"
	"github.com/moffa90/go-mysb/transport"
)

// EnvPrefix prefixes environment overrides.
const EnvPrefix = "MYSB"

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the complete bridge configuration.
type Config struct {
	MQTT   MQTT   `mapstructure:"mqtt"`
	OTA    OTA    `mapstructure:"ota"`
	AutoID AutoID `mapstructure:"auto_id"`
	Log    Log    `mapstructure:"log"`
}

// MQTT holds the broker connection and topic roots.
type MQTT struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	SubTopic string `mapstructure:"sub_topic"`
	PubTopic string `mapstructure:"pub_topic"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// OTA holds the firmware catalog.
type OTA struct {
	UpdateBlocks     int                            `mapstructure:"update_blocks"`
	Types            map[uint16]string              `mapstructure:"types"`
	Versions         map[uint16]string              `mapstructure:"versions"`
	Firmware         map[uint16]map[uint16]string   `mapstructure:"firmware"`
	Nodes            map[string]firmware.Assignment `mapstructure:"nodes"`
	FirmwareBasePath string                         `mapstructure:"firmware_base_path"`
	StrictHex        bool                           `mapstructure:"strict_hex"`
}

// AutoID enables node ID assignment when NextID is set.
type AutoID struct {
	NextID *uint64 `mapstructure:"next_id"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ValidationError indicates an invalid setting.
type ValidationError struct {
	Key    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Key, e.Reason)
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mqtt.host", "localhost")
	v.SetDefault("mqtt.port", transport.DefaultPort)
	v.SetDefault("mqtt.sub_topic", bootloader.DefaultSubTopic)
	v.SetDefault("mqtt.pub_topic", bootloader.DefaultPubTopic)
	v.SetDefault("mqtt.client_id", transport.DefaultClientID)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("ota.update_blocks", bootloader.DefaultUpdateBlocks)
	v.SetDefault("ota.firmware_base_path", "")
	v.SetDefault("ota.strict_hex", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", FormatText)
}

// Open returns a viper instance with defaults and environment overrides,
// reading path. An empty path searches ./config.yaml and /etc/mysb/config.yaml
// and tolerates their absence.
func Open(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("auto_id.next_id"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/mysb")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return v, nil
}

// Decode unmarshals and validates the settings held by v.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load reads and validates the configuration at path.
//
// Example:
//
//	cfg, err := config.Load("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d := bootloader.New(cfg.Catalog(), cfg.DispatcherOptions()...)
func Load(path string) (*Config, error) {
	v, err := Open(path)
	if err != nil {
		return nil, err
	}
	return Decode(v)
}

// Validate checks the settings for values the bridge cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.MQTT.Host == "":
		return &ValidationError{Key: "mqtt.host", Reason: "must not be empty"}
	case c.MQTT.Port < 1 || c.MQTT.Port > 65535:
		return &ValidationError{Key: "mqtt.port", Reason: fmt.Sprintf("%d is not between 1 and 65535", c.MQTT.Port)}
	case c.MQTT.SubTopic == "":
		return &ValidationError{Key: "mqtt.sub_topic", Reason: "must not be empty"}
	case c.MQTT.PubTopic == "":
		return &ValidationError{Key: "mqtt.pub_topic", Reason: "must not be empty"}
	case c.OTA.UpdateBlocks <= 0:
		return &ValidationError{Key: "ota.update_blocks", Reason: "must be positive"}
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return &ValidationError{Key: "log.level", Reason: err.Error()}
	}

	switch strings.ToLower(c.Log.Format) {
	case FormatText, FormatJSON:
	default:
		return &ValidationError{Key: "log.format", Reason: fmt.Sprintf("%q is not %s or %s", c.Log.Format, FormatText, FormatJSON)}
	}

	for node := range c.OTA.Nodes {
		if node != firmware.DefaultNode && strings.Trim(node, "0123456789") != "" {
			return &ValidationError{Key: "ota.nodes." + node, Reason: "node ID must be decimal or \"default\""}
		}
	}

	return nil
}

// Catalog builds the firmware catalog.
func (c *Config) Catalog() *firmware.Catalog {
	return &firmware.Catalog{
		Types:    c.OTA.Types,
		Versions: c.OTA.Versions,
		Firmware: c.OTA.Firmware,
		Nodes:    c.OTA.Nodes,
		BasePath: c.OTA.FirmwareBasePath,
	}
}

// DispatcherOptions returns the dispatcher options implied by the configuration.
func (c *Config) DispatcherOptions() []bootloader.Option {
	opts := []bootloader.Option{
		bootloader.WithTopics(c.MQTT.SubTopic, c.MQTT.PubTopic),
		bootloader.WithUpdateBlocks(c.OTA.UpdateBlocks),
		bootloader.WithStrictHex(c.OTA.StrictHex),
	}
	if c.AutoID.NextID != nil {
		opts = append(opts, bootloader.WithAutoID(*c.AutoID.NextID))
	}
	return opts
}

// TransportOptions returns the broker connection options.
func (c *Config) TransportOptions() transport.Options {
	return transport.Options{
		Host:     c.MQTT.Host,
		Port:     c.MQTT.Port,
		ClientID: c.MQTT.ClientID,
		Username: c.MQTT.Username,
		Password: c.MQTT.Password,
	}
}
