package bootloader

import (
	"github.com/moffa90/go-mysb/firmware"
	"github.com/moffa90/go-mysb/ihex"
)

// Default topic roots of the MySensors MQTT gateway.
const (
	DefaultSubTopic = "mysensors_rx"
	DefaultPubTopic = "mysensors_tx"

	// DefaultUpdateBlocks is how often block progress is logged
	DefaultUpdateBlocks = 100
)

// Config holds the dispatcher configuration.
type Config struct {
	// ProgressCallback is called for every served block (optional)
	ProgressCallback ProgressCallback

	// Logger is used for logging operations (optional)
	Logger Logger

	// SubTopic is the root of topics published by the gateway
	SubTopic string

	// PubTopic is the root of topics consumed by the gateway
	PubTopic string

	// AutoID enables node ID assignment starting after NextID
	AutoID bool
	NextID uint64

	// UpdateBlocks logs progress every UpdateBlocks blocks
	UpdateBlocks int

	// StrictHex enables strict Intel-HEX parsing for the default store
	StrictHex bool

	// Store caches loaded images; built from StrictHex when nil
	Store *firmware.Store
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		SubTopic:     DefaultSubTopic,
		PubTopic:     DefaultPubTopic,
		UpdateBlocks: DefaultUpdateBlocks,
	}
}

// store returns the configured store or builds one.
func (c Config) store() *firmware.Store {
	if c.Store != nil {
		return c.Store
	}
	if c.StrictHex {
		return firmware.NewStore(firmware.Loader(ihex.Strict()))
	}
	return firmware.NewStore(firmware.Loader())
}

// Option is a functional option for configuring the Dispatcher.
type Option func(*Config)

// WithProgressCallback sets a callback function to track firmware transfers.
//
// Example:
//
//	d := bootloader.New(catalog,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("%s: %.1f%% complete\n", p.NodeID, p.Percentage)
//	    }),
//	)
func WithProgressCallback(callback ProgressCallback) Option {
	return func(c *Config) {
		c.ProgressCallback = callback
	}
}

// WithLogger sets a logger for the dispatcher.
//
// Example:
//
//	d := bootloader.New(catalog, bootloader.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithTopics sets the subscribe and publish topic roots.
// Empty values keep the defaults.
//
// Example:
//
//	d := bootloader.New(catalog, bootloader.WithTopics("gw1-out", "gw1-in"))
func WithTopics(sub, pub string) Option {
	return func(c *Config) {
		if sub != "" {
			c.SubTopic = sub
		}
		if pub != "" {
			c.PubTopic = pub
		}
	}
}

// WithAutoID enables node ID assignment. The first assigned ID is next+1.
//
// Example:
//
//	d := bootloader.New(catalog, bootloader.WithAutoID(20))
func WithAutoID(next uint64) Option {
	return func(c *Config) {
		c.AutoID = true
		c.NextID = next
	}
}

// WithUpdateBlocks sets how often block progress is logged.
// Non-positive values are ignored.
func WithUpdateBlocks(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.UpdateBlocks = n
		}
	}
}

// WithStrictHex enables strict Intel-HEX parsing of firmware files.
func WithStrictHex(strict bool) Option {
	return func(c *Config) {
		c.StrictHex = strict
	}
}

// WithStore sets the image store. Sharing a store between dispatchers shares
// loaded images.
func WithStore(store *firmware.Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}
