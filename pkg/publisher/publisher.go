// Package publisher wraps one eclipse/paho.mqtt.golang client per
// configured broker, shared by every resolved stream that targets it.
package publisher

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/errs"
)

// ConnectTimeout bounds how long Open waits for the broker handshake.
const ConnectTimeout = 10 * time.Second

// DisconnectQuiesce is how long Close waits for in-flight publishes to
// drain before the connection is torn down.
const DisconnectQuiesce = 250 * time.Millisecond

// Publisher owns one MQTT client connection shared by every stream that
// targets the broker. Publish takes no lock of its own; concurrent calls go
// straight to the paho client, which is safe for concurrent use.
type Publisher struct {
	name   string
	client mqtt.Client
}

// Open connects a new Publisher to spec, using clientID if spec itself
// doesn't specify one.
func Open(spec config.BrokerSpec, clientID string) (*Publisher, error) {
	port := spec.Port
	if port == 0 {
		port = config.DefaultPort
	}
	keepAlive := spec.KeepAlive
	if keepAlive == 0 {
		keepAlive = config.DefaultKeepAlive
	}
	id := spec.ClientID
	if id == "" {
		id = clientID
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", spec.Host, port)).
		SetClientID(id).
		SetKeepAlive(time.Duration(keepAlive) * time.Second).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(ConnectTimeout)

	if spec.Username != "" {
		opts.SetUsername(spec.Username)
		opts.SetPassword(spec.Password)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(ConnectTimeout) {
		return nil, &errs.TransportError{Broker: spec.Name, Err: fmt.Errorf("connect timed out after %s", ConnectTimeout)}
	}
	if err := token.Error(); err != nil {
		return nil, &errs.TransportError{Broker: spec.Name, Err: err}
	}

	return &Publisher{name: spec.Name, client: client}, nil
}

// Publish sends payload to topic at the given QoS/retain settings,
// returning once the broker has acknowledged it (or ctx expires).
func (p *Publisher) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	token := p.client.Publish(topic, byte(qos), retain, payload)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		token.Wait()
		close(done)
	}()

	select {
	case <-done:
		if err := token.Error(); err != nil {
			return &errs.TransportError{Broker: p.name, Err: err}
		}
		return nil
	case <-ctx.Done():
		return &errs.TransportError{Broker: p.name, Err: fmt.Errorf("%w: %v", errs.ErrCancelled, ctx.Err())}
	}
}

// Close disconnects the underlying client, waiting up to DisconnectQuiesce
// for in-flight publishes to settle.
func (p *Publisher) Close() {
	p.client.Disconnect(uint(DisconnectQuiesce.Milliseconds()))
}

// Pool owns one Publisher per distinct broker name referenced by a Plan.
type Pool struct {
	mu         sync.Mutex
	publishers map[string]*Publisher
}

// NewPool creates an empty Pool.
func NewPool() *Pool {
	return &Pool{publishers: make(map[string]*Publisher)}
}

// Open connects and registers a Publisher for spec if one isn't already
// open, returning the shared instance either way.
func (p *Pool) Open(spec config.BrokerSpec, clientID string) (*Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.publishers[spec.Name]; ok {
		return existing, nil
	}

	pub, err := Open(spec, clientID)
	if err != nil {
		return nil, err
	}
	p.publishers[spec.Name] = pub
	return pub, nil
}

// CloseAll disconnects every Publisher the Pool holds.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pub := range p.publishers {
		pub.Close()
	}
}
