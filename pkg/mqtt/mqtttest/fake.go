// Package mqtttest provides an in-memory mqtt.Client for tests
package mqtttest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/saaga0h/daylight-platform/pkg/mqtt"
)

// Published is one message handed to Publish
type Published struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// Client records publishes and routes Deliver calls to matching subscriptions
type Client struct {
	mu            sync.Mutex
	connected     bool
	published     []Published
	subscriptions map[string]mqtt.MessageHandler

	ConnectErr error
	PublishErr error
}

// NewClient returns a disconnected fake client
func NewClient() *Client {
	return &Client{subscriptions: make(map[string]mqtt.MessageHandler)}
}

func (c *Client) Connect(ctx context.Context) error {
	if c.ConnectErr != nil {
		return c.ConnectErr
	}
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	return nil
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *Client) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[topic] = handler
	return nil
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if c.PublishErr != nil {
		return c.PublishErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, Published{Topic: topic, QoS: qos, Retained: retained, Payload: payload})
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Messages returns everything published to topic, oldest first
func (c *Client) Messages(topic string) []Published {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Published
	for _, p := range c.published {
		if p.Topic == topic {
			out = append(out, p)
		}
	}
	return out
}

// Deliver hands payload to the handler whose filter matches topic
func (c *Client) Deliver(topic string, payload []byte) error {
	c.mu.Lock()
	var handler mqtt.MessageHandler
	for filter, h := range c.subscriptions {
		if matches(filter, topic) {
			handler = h
			break
		}
	}
	c.mu.Unlock()

	if handler == nil {
		return errors.New("no subscription matches " + topic)
	}
	handler(&message{topic: topic, payload: payload})
	return nil
}

// matches supports the single-level + wildcard, which is all the agent uses
func matches(filter, topic string) bool {
	f := strings.Split(filter, "/")
	t := strings.Split(topic, "/")
	if len(f) != len(t) {
		return false
	}
	for i := range f {
		if f[i] != "+" && f[i] != t[i] {
			return false
		}
	}
	return true
}

type message struct {
	topic   string
	payload []byte
}

func (m *message) Topic() string   { return m.topic }
func (m *message) Payload() []byte { return m.payload }
func (m *message) Ack()            {}
