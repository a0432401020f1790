package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ambulink/dispatch-core/internal/core/domain"
	"github.com/ambulink/dispatch-core/internal/core/ports"
	"github.com/ambulink/dispatch-core/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	sinkTimeout    = 5 * time.Second
)

// Dispatcher fans committed dispatch events out to every sink. Events are
// routed to a fixed set of workers by consistent hashing on the event key, so
// events of one emergency reach each sink in publish order.
type Dispatcher struct {
	workers []chan domain.DispatchEvent
	sinks   []ports.EventSink
	log     zerolog.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sinks []ports.EventSink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.DispatchEvent, numWorkers),
		sinks:   sinks,
		log:     log.With().Str("component", "event_dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.DispatchEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Sink writes carry ctx values but not
// its cancellation: workers run until Stop closes their channels, so events
// committed during shutdown are still delivered. Calling Start again is a no-op.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	ctx = context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish sends an event to the worker responsible for its key. It blocks only
// while that worker's buffer is full. Events published after Stop are dropped,
// as are events that overflow a buffer before Start.
func (d *Dispatcher) Publish(event domain.DispatchEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.drop(event, "dispatcher stopped, event dropped")
		return
	}

	idx := d.shardIndex(event.Key())
	if d.started {
		d.workers[idx] <- event
	} else {
		select {
		case d.workers[idx] <- event:
		default:
			d.drop(event, "dispatcher not started and buffer full, event dropped")
			return
		}
	}
	metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

func (d *Dispatcher) drop(event domain.DispatchEvent, msg string) {
	metrics.EventsDroppedTotal.Inc()
	d.log.Warn().Str("type", string(event.Type)).Str("key", event.Key()).Msg(msg)
}

// Stop refuses new events, lets the workers drain what is queued and waits
// for them until ctx is done. Events queued on a dispatcher that was never
// started are discarded.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.DispatchEvent) {
	defer d.wg.Done()
	depth := metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(id))
	for event := range ch {
		depth.Set(float64(len(ch)))
		d.deliver(ctx, id, event)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, event domain.DispatchEvent) {
	for _, sink := range d.sinks {
		writeCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
		err := sink.Write(writeCtx, event)
		cancel()

		if err != nil {
			metrics.EventsDeliveredTotal.WithLabelValues(sink.Name(), "error").Inc()
			d.log.Error().Err(err).
				Str("sink", sink.Name()).
				Str("type", string(event.Type)).
				Str("key", event.Key()).
				Int("worker_id", workerID).
				Msg("event delivery failed")
			continue
		}
		metrics.EventsDeliveredTotal.WithLabelValues(sink.Name(), "ok").Inc()
	}
}
