// Package mqtt bridges the in-process broker onto an external MQTT broker
// via Eclipse Paho, so depot snapshots and scheduler instructions can be
// observed or injected from outside the process.
package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/johnhorn2/powerflex-station-assignment-heuristic/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
	UseTLS      bool   `json:"use_tls"`
	ClientCert  string `json:"client_cert"`
	ClientKey   string `json:"client_key"`
	CABundle    string `json:"ca_bundle"`
	BackoffMS   int    `json:"backoff_ms"`
}

func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "depot-sim"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "depot/"
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 500
	}
}

func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker address is required")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Client implements the broker interface over MQTT. Published messages go
// out on prefixed topics; inbound messages are buffered per topic until
// drained.
type Client struct {
	cli    pahoClient
	log    logger.Logger
	prefix string
	qos    byte

	mu  sync.Mutex
	buf map[string][][]byte
}

// NewClient connects to the MQTT broker and subscribes to the prefixed
// topic tree.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	c := &Client{
		log:    log,
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		buf:    make(map[string][][]byte),
	}

	opts.OnConnect = func(cli paho.Client) {
		log.Infof("MQTT connected")
		if token := cli.Subscribe(cfg.TopicPrefix+"#", cfg.QoS, c.onMessage); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// NewClientOptions builds paho client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	opts.SetMaxReconnectInterval(time.Duration(cfg.BackoffMS) * time.Millisecond)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := newTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

func newTLSConfig(cfg Config) (*tls.Config, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CABundle != "" {
		ca, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, fmt.Errorf("read ca bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("parse ca bundle %s", cfg.CABundle)
		}
		tlsCfg.RootCAs = pool
	}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return tlsCfg, nil
}

func (c *Client) onMessage(_ paho.Client, msg paho.Message) {
	topic := strings.TrimPrefix(msg.Topic(), c.prefix)
	c.enqueue(topic, msg.Payload())
}

func (c *Client) enqueue(topic string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	c.buf[topic] = append(c.buf[topic], buf)
}

// Publish sends one payload on the prefixed topic. Delivery failures are
// logged; the simulation does not stop for a flaky observer link.
func (c *Client) Publish(topic string, payload []byte) {
	token := c.cli.Publish(c.prefix+topic, c.qos, false, payload)
	if token.Wait() && token.Error() != nil {
		c.log.Errorf("publish %s: %v", topic, token.Error())
	}
}

// Drain returns and clears everything buffered for the topic.
func (c *Client) Drain(topic string) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.buf[topic]
	delete(c.buf, topic)
	return out
}

// Close disconnects from the broker.
func (c *Client) Close() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
