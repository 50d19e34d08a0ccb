// Package config provides the mqttsim configuration model: JSON/YAML
// decoding, schema and semantic validation, and the resulting immutable
// Plan that the rest of the engine operates on.
package config

import "time"

// SchemaVersion is the only schema_version this loader accepts.
const SchemaVersion = 1

// Plan is the fully validated, immutable configuration tree produced by the
// Loader. Nothing mutates a Plan after Load returns it.
type Plan struct {
	SchemaVersion int                 `json:"schema_version"`
	Brokers       []BrokerSpec        `json:"brokers"`
	Streams       []StreamTemplate    `json:"streams"`
	brokersByName map[string]BrokerSpec
}

// Broker looks up a BrokerSpec by name.
func (p *Plan) Broker(name string) (BrokerSpec, bool) {
	if p.brokersByName == nil {
		p.brokersByName = make(map[string]BrokerSpec, len(p.Brokers))
		for _, b := range p.Brokers {
			p.brokersByName[b.Name] = b
		}
	}
	b, ok := p.brokersByName[name]
	return b, ok
}

// BrokerSpec describes one MQTT broker connection target.
type BrokerSpec struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	KeepAlive int    `json:"keepalive"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
}

// DefaultPort is used when BrokerSpec.Port is left as zero.
const DefaultPort = 1883

// DefaultKeepAlive is used when BrokerSpec.KeepAlive is left as zero.
const DefaultKeepAlive = 60

// StreamTemplate is a stream declaration that may expand into multiple
// ResolvedStreams via its optional Expansion.
type StreamTemplate struct {
	Name     string      `json:"name,omitempty"`
	Broker   string      `json:"broker"`
	Topic    string      `json:"topic"`
	Interval float64     `json:"interval"` // seconds
	QoS      int         `json:"qos"`
	Retain   bool        `json:"retain"`
	Payload  PayloadSpec `json:"payload"`
	Expand   *Expansion  `json:"expand,omitempty"`
}

// IntervalDuration converts the stream's interval to a time.Duration.
func (t StreamTemplate) IntervalDuration() time.Duration {
	return time.Duration(t.Interval * float64(time.Second))
}

// ResolvedStream is a concrete publisher instance: one topic, one interval,
// one payload builder, one piece of runtime state. It is built once by the
// Expander and owned exclusively by its scheduler worker thereafter.
type ResolvedStream struct {
	ID       string
	Broker   string
	Topic    string
	Interval time.Duration
	QoS      int
	Retain   bool
	Payload  PayloadSpec
	Vars     map[string]string // substitution context this stream was expanded with

	Builder PayloadBuilder
	State   *StreamRuntimeState
}

// StreamState is the scheduler lifecycle of one resolved stream.
type StreamState int

// Lifecycle states, per spec §4.5.
const (
	StatePending StreamState = iota
	StateRunning
	StateErrored
	StateStopped
)

func (s StreamState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StateRunning:
		return "RUNNING"
	case StateErrored:
		return "ERRORED"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// StreamRuntimeState is mutated only by the stream's own worker goroutine.
type StreamRuntimeState struct {
	State          StreamState
	PublishCount   int64
	LastPublished  time.Time
	LastPayload    string // preview, truncated
	LastError      string
	CumulativeErrs int64
}
