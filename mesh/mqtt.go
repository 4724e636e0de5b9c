package mesh

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrMQTTDisabled is returned by InitMQTT when no broker is configured
var ErrMQTTDisabled = errors.New("MQTT disabled: no broker configured")

// MQTTClient manages the broker connection used to publish assembly results
type MQTTClient struct {
	client      mqtt.Client
	config      MQTTConfig
	isConnected bool
	mu          sync.RWMutex
}

// ResolveMQTTConfig applies MQTT_* environment overrides on top of cfg
func ResolveMQTTConfig(cfg MQTTConfig) MQTTConfig {
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		cfg.Broker = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("MQTT_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("MQTT_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("MQTT_PUBLISH_PREFIX"); v != "" {
		cfg.PublishPrefix = v
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "beaconmesh"
	}
	if cfg.PublishPrefix == "" {
		cfg.PublishPrefix = DefaultPublishPrefix
	}
	return cfg
}

// NewClientOptions builds paho options from a resolved config
func NewClientOptions(cfg MQTTConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)
	return opts
}

// InitMQTT connects to the configured broker, retrying with exponential
// backoff until ctx is done. It returns ErrMQTTDisabled when no broker is set.
func InitMQTT(ctx context.Context, cfg MQTTConfig) (*MQTTClient, error) {
	cfg = ResolveMQTTConfig(cfg)
	if cfg.Broker == "" {
		return nil, ErrMQTTDisabled
	}

	c := &MQTTClient{config: cfg}
	opts := NewClientOptions(cfg)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	c.client = mqtt.NewClient(opts)

	if err := c.connectWithRetry(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// connectWithRetry attempts to connect to the MQTT broker with exponential backoff
func (c *MQTTClient) connectWithRetry(ctx context.Context) error {
	retryDelay := 1 * time.Second
	maxRetryDelay := 30 * time.Second

	for {
		log.Printf("[MQTT] connecting to %s...", c.config.Broker)

		token := c.client.Connect()
		if token.WaitTimeout(10 * time.Second) {
			if token.Error() == nil {
				log.Println("[MQTT] connected")
				c.setConnected(true)
				return nil
			}
			log.Printf("[MQTT] connection failed: %v", token.Error())
		} else {
			log.Println("[MQTT] connection timeout")
		}

		log.Printf("[MQTT] retrying in %v...", retryDelay)
		select {
		case <-ctx.Done():
			return fmt.Errorf("connecting to MQTT broker %s: %w", c.config.Broker, ctx.Err())
		case <-time.After(retryDelay):
		}
		retryDelay *= 2
		if retryDelay > maxRetryDelay {
			retryDelay = maxRetryDelay
		}
	}
}

func (c *MQTTClient) onConnect(client mqtt.Client) {
	c.setConnected(true)
}

// onConnectionLost is called when the MQTT connection is lost
// Auto-reconnect is enabled, so this is typically a transient event
func (c *MQTTClient) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("[MQTT] connection interrupted (%v), auto-reconnect will retry", err)
	c.setConnected(false)
}

// IsConnected returns true if the MQTT client is connected
func (c *MQTTClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConnected
}

func (c *MQTTClient) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConnected = connected
}

// Disconnect gracefully closes the MQTT connection
func (c *MQTTClient) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("[MQTT] disconnecting...")
		c.client.Disconnect(250) // 250ms quiesce time
		c.setConnected(false)
	}
}

// Client returns the underlying MQTT client for publishing
func (c *MQTTClient) Client() mqtt.Client {
	return c.client
}

// Prefix returns the topic prefix resolved for this connection
func (c *MQTTClient) Prefix() string {
	return c.config.PublishPrefix
}
