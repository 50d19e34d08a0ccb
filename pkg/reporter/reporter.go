// Package reporter renders the live status of every running stream, either
// as a redrawn-in-place table (the interactive default) or as structured
// log lines (the default once stdout isn't a terminal), both reading the
// same mutex-protected snapshot.
package reporter

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
)

// Sink renders one repaint of the current stream snapshot.
type Sink interface {
	Render(snapshot []StreamSnapshot)
}

// StreamSnapshot is an immutable copy of one stream's runtime state, taken
// under the Reporter's lock so a Sink never races the scheduler goroutine
// that owns the live config.StreamRuntimeState.
type StreamSnapshot struct {
	ID            string
	Topic         string
	Broker        string
	State         config.StreamState
	PublishCount  int64
	LastPublished time.Time
	LastPayload   string
	LastError     string
}

// Reporter periodically snapshots a set of streams and hands the result to
// a Sink. Repaints are coalesced to RepaintInterval so a large stream count
// never floods the terminal.
type Reporter struct {
	mu      sync.Mutex
	streams []*config.ResolvedStream
	sink    Sink
}

// RepaintInterval is the minimum time between two repaints.
const RepaintInterval = 200 * time.Millisecond

// New builds a Reporter over streams, rendering through sink.
func New(streams []config.ResolvedStream, sink Sink) *Reporter {
	r := &Reporter{sink: sink}
	r.streams = make([]*config.ResolvedStream, len(streams))
	for i := range streams {
		r.streams[i] = &streams[i]
	}
	return r
}

// Run repaints every RepaintInterval until stop is closed, then renders one
// final snapshot.
func (r *Reporter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(RepaintInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sink.Render(r.snapshot())
		case <-stop:
			r.sink.Render(r.snapshot())
			return
		}
	}
}

func (r *Reporter) snapshot() []StreamSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]StreamSnapshot, len(r.streams))
	for i, s := range r.streams {
		out[i] = StreamSnapshot{
			ID:            s.ID,
			Topic:         s.Topic,
			Broker:        s.Broker,
			State:         s.State.State,
			PublishCount:  s.State.PublishCount,
			LastPublished: s.State.LastPublished,
			LastPayload:   s.State.LastPayload,
			LastError:     s.State.LastError,
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out
}

// ansiClearScreen resets the cursor to the top-left and clears the
// terminal, so each repaint replaces the previous one in place rather than
// scrolling.
const ansiClearScreen = "\x1b[H\x1b[2J"

// TableSink renders the stream snapshot as an aligned table via
// text/tabwriter, redrawn in place on a terminal.
type TableSink struct {
	out io.Writer
}

// NewTableSink builds a TableSink writing to out.
func NewTableSink(out io.Writer) *TableSink {
	return &TableSink{out: out}
}

// Render implements Sink.
func (t *TableSink) Render(snapshot []StreamSnapshot) {
	fmt.Fprint(t.out, ansiClearScreen)

	w := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOPIC\tBROKER\tSTATE\tCOUNT\tLAST PUBLISHED\tLAST ERROR")
	for _, s := range snapshot {
		last := "-"
		if !s.LastPublished.IsZero() {
			last = s.LastPublished.Format(time.RFC3339)
		}
		lastErr := s.LastError
		if lastErr == "" {
			lastErr = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", s.Topic, s.Broker, s.State, s.PublishCount, last, lastErr)
	}
	_ = w.Flush()
}

// LogSink renders the stream snapshot as one structured slog line per
// stream, suited to non-interactive output (piped stdout, CI logs).
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink builds a LogSink writing through logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Render implements Sink.
func (l *LogSink) Render(snapshot []StreamSnapshot) {
	for _, s := range snapshot {
		attrs := []any{
			"topic", s.Topic,
			"broker", s.Broker,
			"state", s.State.String(),
			"count", s.PublishCount,
		}
		if s.LastError != "" {
			l.logger.Error("stream status", append(attrs, "error", s.LastError)...)
			continue
		}
		l.logger.Info("stream status", attrs...)
	}
}
