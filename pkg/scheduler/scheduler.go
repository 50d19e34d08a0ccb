// Package scheduler runs one goroutine per resolved stream, publishing its
// payload on a drift-compensated ticker until the run's context is
// cancelled, and folds per-stream failures into the chosen FailurePolicy.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marcelo-6/mqtt-sim/pkg/config"
	"github.com/marcelo-6/mqtt-sim/pkg/errs"
	"github.com/marcelo-6/mqtt-sim/pkg/logging"
	"github.com/marcelo-6/mqtt-sim/pkg/publisher"
)

// FailurePolicy controls what happens to the whole run when one stream's
// publish fails.
type FailurePolicy int

// Failure policies, per spec §4.5.
const (
	// KeepGoing logs the error onto the stream's state and keeps ticking;
	// only that stream moves to StateErrored and then resumes on its next
	// successful publish.
	KeepGoing FailurePolicy = iota
	// FailFast cancels every other stream's worker as soon as one publish
	// fails.
	FailFast
)

// ShutdownGrace bounds how long Run waits for in-flight publishes to
// finish once its context is cancelled.
const ShutdownGrace = 5 * time.Second

// publisherConn is the narrow surface Scheduler needs from a
// publisher.Publisher, so tests can drive runStream against a fake without
// a live broker connection.
type publisherConn interface {
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error
}

// Scheduler drives every resolved stream in a Plan concurrently.
type Scheduler struct {
	pool   *publisher.Pool
	logger *slog.Logger
	policy FailurePolicy

	// runFailed is set atomically whenever any stream fails, under either
	// policy; Run returns it and its caller uses it to pick the exit code.
	runFailed atomic.Bool
}

// New builds a Scheduler that publishes through pool and reports through
// logger, using policy to decide how one stream's failure affects the rest.
func New(pool *publisher.Pool, logger *slog.Logger, policy FailurePolicy) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{pool: pool, logger: logger, policy: policy}
}

// Run publishes every stream until ctx is cancelled (by the caller's
// --duration timer, Ctrl-C, or a FailFast cancellation triggered from
// inside Run itself), then waits up to ShutdownGrace for workers to exit.
// It returns true if any stream ever reported an error.
func (s *Scheduler) Run(ctx context.Context, streams []config.ResolvedStream, brokers map[string]config.BrokerSpec, clientIDPrefix string) bool {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := range streams {
		stream := &streams[i]

		brokerSpec, ok := brokers[stream.Broker]
		if !ok {
			logging.WithStream(s.logger, stream.ID, stream.Topic).Error("stream references unknown broker, skipping", "broker", stream.Broker)
			s.runFailed.Store(true)
			continue
		}

		pub, err := s.pool.Open(brokerSpec, clientIDPrefix+"-"+stream.ID)
		if err != nil {
			logging.WithBroker(logging.WithStream(s.logger, stream.ID, stream.Topic), stream.Broker, brokerSpec.Host).Error("failed to connect broker for stream", "error", err)
			stream.State.State = config.StateErrored
			stream.State.LastError = err.Error()
			s.runFailed.Store(true)
			if s.policy == FailFast {
				cancel()
			}
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runStream(runCtx, stream, pub, cancel)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-runCtx.Done():
		select {
		case <-done:
		case <-time.After(ShutdownGrace):
		}
	}
	return s.runFailed.Load()
}

// runStream publishes stream's payload once immediately, then on every
// subsequent tick of a drift-compensated ticker: the deadline always
// advances by exactly one interval from the previous deadline, rather than
// from "now", so ticks neither drift nor compound the time a slow publish
// took.
func (s *Scheduler) runStream(ctx context.Context, stream *config.ResolvedStream, pub publisherConn, cancelAll context.CancelFunc) {
	stream.State.State = config.StateRunning

	deadline := time.Now()
	for {
		s.publishOnce(ctx, stream, pub, cancelAll)

		select {
		case <-ctx.Done():
			stream.State.State = config.StateStopped
			return
		default:
		}

		deadline = deadline.Add(stream.Interval)
		wait := time.Until(deadline)
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			stream.State.State = config.StateStopped
			return
		}
	}
}

func (s *Scheduler) publishOnce(ctx context.Context, stream *config.ResolvedStream, pub publisherConn, cancelAll context.CancelFunc) {
	payload, err := stream.Builder.Build(ctx)
	if err != nil {
		s.recordFailure(stream, err, cancelAll)
		return
	}

	if err := pub.Publish(ctx, stream.Topic, stream.QoS, stream.Retain, payload); err != nil {
		if errs.IsCancellation(err) {
			return
		}
		s.recordFailure(stream, err, cancelAll)
		return
	}

	stream.State.State = config.StateRunning
	stream.State.PublishCount++
	stream.State.LastPublished = time.Now()
	stream.State.LastPayload = previewPayload(payload)
}

func (s *Scheduler) recordFailure(stream *config.ResolvedStream, err error, cancelAll context.CancelFunc) {
	stream.State.State = config.StateErrored
	stream.State.LastError = err.Error()
	stream.State.CumulativeErrs++
	s.runFailed.Store(true)

	logging.WithStream(s.logger, stream.ID, stream.Topic).Error("publish failed", "error", err)

	if s.policy == FailFast {
		cancelAll()
	}
}

// previewLen bounds how much of a payload is retained for display.
const previewLen = 200

func previewPayload(payload []byte) string {
	if len(payload) <= previewLen {
		return string(payload)
	}
	return string(payload[:previewLen]) + "..."
}
