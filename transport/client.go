package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

// Default connection settings.
const (
	DefaultPort           = 1883
	DefaultClientID       = "mysb"
	DefaultConnectTimeout = 10 * time.Second
	DefaultWriteTimeout   = 5 * time.Second

	// disconnectQuiesce is how long Close waits for in-flight work, in milliseconds
	disconnectQuiesce = 250
)

// ErrTimeout indicates a broker operation that did not complete in time.
var ErrTimeout = errors.New("mqtt operation timed out")

// Options configures the broker connection.
type Options struct {
	Host     string
	Port     int
	ClientID string
	Username string
	Password string

	// ConnectTimeout bounds the initial connection attempt
	ConnectTimeout time.Duration

	// WriteTimeout bounds Subscribe and Publish
	WriteTimeout time.Duration
}

// Broker returns the broker URL.
func (o Options) Broker() string {
	return fmt.Sprintf("tcp://%s:%d", o.Host, o.Port)
}

func (o Options) withDefaults() Options {
	if o.Host == "" {
		o.Host = "localhost"
	}
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.ClientID == "" {
		o.ClientID = DefaultClientID
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = DefaultWriteTimeout
	}
	return o
}

type subscription struct {
	pattern string
	handler mqtt.MessageHandler
}

// Client is an MQTT connection that satisfies bootloader.Transport.
// Client is safe for concurrent use.
type Client struct {
	opts Options
	log  *logrus.Entry

	// newClient builds the paho client; replaced in tests
	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu     sync.Mutex
	client mqtt.Client
	subs   []subscription
}

// New creates a Client. Nothing is connected until Connect is called.
func New(opts Options, log *logrus.Entry) *Client {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	opts = opts.withDefaults()
	return &Client{
		opts:      opts,
		log:       log.WithField("broker", opts.Broker()),
		newClient: mqtt.NewClient,
	}
}

// Options returns the effective connection options.
func (c *Client) Options() Options {
	return c.opts
}

func (c *Client) clientOptions() *mqtt.ClientOptions {
	o := mqtt.NewClientOptions().
		AddBroker(c.opts.Broker()).
		SetClientID(c.opts.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetConnectTimeout(c.opts.ConnectTimeout).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	if c.opts.Username != "" {
		o.SetUsername(c.opts.Username)
		o.SetPassword(c.opts.Password)
	}

	return o
}

// Connect connects to the broker. It returns when the connection is up, the
// attempt fails, or ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.client != nil {
		c.mu.Unlock()
		return errors.New("already connected")
	}
	client := c.newClient(c.clientOptions())
	c.client = client
	c.mu.Unlock()

	c.log.Info("connecting to MQTT")

	token := client.Connect()
	select {
	case <-token.Done():
	case <-ctx.Done():
		c.reset(client)
		return fmt.Errorf("connect to %s: %w", c.opts.Broker(), ctx.Err())
	}

	if err := token.Error(); err != nil {
		c.reset(client)
		return fmt.Errorf("connect to %s: %w", c.opts.Broker(), err)
	}

	return nil
}

// reset forgets a client whose connection attempt failed.
func (c *Client) reset(client mqtt.Client) {
	client.Disconnect(0)

	c.mu.Lock()
	if c.client == client {
		c.client = nil
	}
	c.mu.Unlock()
}

// onConnect re-establishes every recorded subscription.
func (c *Client) onConnect(client mqtt.Client) {
	c.log.Info("connected to MQTT")

	c.mu.Lock()
	subs := append([]subscription(nil), c.subs...)
	c.mu.Unlock()

	for _, s := range subs {
		if err := c.subscribe(client, s); err != nil {
			c.log.WithError(err).WithField("topic", s.pattern).Error("error subscribing to topic")
		}
	}
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.log.WithError(err).Error("disconnected from MQTT")
}

// Subscribe records a subscription and, when connected, subscribes right away.
// Recorded subscriptions are renewed on every reconnect.
func (c *Client) Subscribe(pattern string, handler func(topic string, payload []byte)) error {
	s := subscription{
		pattern: pattern,
		handler: func(_ mqtt.Client, msg mqtt.Message) {
			handler(msg.Topic(), msg.Payload())
		},
	}

	c.mu.Lock()
	c.subs = append(c.subs, s)
	client := c.client
	c.mu.Unlock()

	if client == nil || !client.IsConnected() {
		c.log.WithField("topic", pattern).Debug("subscription deferred until connected")
		return nil
	}

	return c.subscribe(client, s)
}

func (c *Client) subscribe(client mqtt.Client, s subscription) error {
	c.log.WithField("topic", s.pattern).Info("subscribing to topic")
	return c.wait(client.Subscribe(s.pattern, 0, s.handler))
}

// Publish publishes payload on topic at QoS 0, not retained.
func (c *Client) Publish(topic, payload string) error {
	c.mu.Lock()
	client := c.client
	c.mu.Unlock()

	if client == nil {
		return errors.New("not connected")
	}

	c.log.WithFields(logrus.Fields{
		"topic":   topic,
		"payload": payload,
	}).Debug("publishing")

	return c.wait(client.Publish(topic, 0, false, payload))
}

func (c *Client) wait(token mqtt.Token) error {
	if !token.WaitTimeout(c.opts.WriteTimeout) {
		return ErrTimeout
	}
	return token.Error()
}

// Close disconnects from the broker. Recorded subscriptions are kept, so a
// later Connect restores them.
func (c *Client) Close() {
	c.mu.Lock()
	client := c.client
	c.client = nil
	c.mu.Unlock()

	if client == nil {
		return
	}

	client.Disconnect(disconnectQuiesce)
	c.log.Info("disconnected from MQTT")
}
