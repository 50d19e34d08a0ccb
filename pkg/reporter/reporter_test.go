package reporter

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
)

func newResolvedStream(id, topic, broker string, state config.StreamState) config.ResolvedStream {
	return config.ResolvedStream{
		ID:     id,
		Broker: broker,
		Topic:  topic,
		State:  &config.StreamRuntimeState{State: state},
	}
}

type captureSink struct {
	got []StreamSnapshot
}

func (c *captureSink) Render(snapshot []StreamSnapshot) {
	c.got = snapshot
}

func TestReporter_SnapshotSortedByTopic(t *testing.T) {
	streams := []config.ResolvedStream{
		newResolvedStream("1", "z/topic", "b1", config.StateRunning),
		newResolvedStream("2", "a/topic", "b1", config.StateRunning),
	}
	sink := &captureSink{}
	r := New(streams, sink)

	stop := make(chan struct{})
	close(stop)
	r.Run(stop)

	require.Len(t, sink.got, 2)
	assert.Equal(t, "a/topic", sink.got[0].Topic)
	assert.Equal(t, "z/topic", sink.got[1].Topic)
}

func TestTableSink_RendersHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTableSink(&buf)

	sink.Render([]StreamSnapshot{
		{Topic: "sensors/1", Broker: "b1", State: config.StateRunning, PublishCount: 3, LastPublished: time.Unix(0, 0)},
		{Topic: "sensors/2", Broker: "b1", State: config.StateErrored, LastError: "boom"},
	})

	out := buf.String()
	assert.Contains(t, out, "TOPIC")
	assert.Contains(t, out, "sensors/1")
	assert.Contains(t, out, "RUNNING")
	assert.Contains(t, out, "boom")
}

func TestTableSink_RendersDashForZeroValues(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTableSink(&buf)

	sink.Render([]StreamSnapshot{{Topic: "t", Broker: "b", State: config.StatePending}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "-")
}

func TestLogSink_ErrorStateUsesErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	sink := NewLogSink(logger)

	sink.Render([]StreamSnapshot{
		{Topic: "t", Broker: "b", State: config.StateErrored, LastError: "disconnected"},
	})

	out := buf.String()
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "disconnected")
}

func TestLogSink_HealthyStateUsesInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	sink := NewLogSink(logger)

	sink.Render([]StreamSnapshot{{Topic: "t", Broker: "b", State: config.StateRunning}})

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
}
