package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tickethub/pkg/platform/circuit"
)

const (
	defaultPublishTimeout = 5 * time.Second
	defaultProbeInterval  = 10 * time.Second
	batchSize             = 32
)

// Dispatcher delivers events to a Sink from a single background worker.
// Publish never blocks: events go into a bounded buffer that drops the oldest
// entry on overflow. While the sink keeps failing the breaker opens and
// events are logged instead of sent, with one probe per probe interval.
type Dispatcher struct {
	sink    Sink
	buf     *ringBuffer
	breaker *circuit.Breaker
	logger  *slog.Logger

	publishTimeout time.Duration
	probeInterval  time.Duration
	lastProbe      time.Time
	now            func() time.Time

	wake      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

type DispatcherOption func(*Dispatcher)

func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

func WithBufferSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.buf = newRingBuffer(n)
	}
}

func WithPublishTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.publishTimeout = timeout
		}
	}
}

func WithBreaker(b *circuit.Breaker) DispatcherOption {
	return func(d *Dispatcher) {
		d.breaker = b
	}
}

func WithProbeInterval(interval time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.probeInterval = interval
	}
}

func NewDispatcher(sink Sink, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sink:           sink,
		buf:            newRingBuffer(0),
		breaker:        circuit.New("event-sink"),
		logger:         slog.Default(),
		publishTimeout: defaultPublishTimeout,
		probeInterval:  defaultProbeInterval,
		now:            time.Now,
		wake:           make(chan struct{}, 1),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the delivery worker. Calling it more than once is a no-op.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		go d.run()
	})
}

// Publish queues event for delivery and returns immediately.
func (d *Dispatcher) Publish(_ context.Context, event AdminProvisioned) {
	d.buf.enqueue(event)
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Close stops the worker after it has drained the buffer, or when ctx ends,
// then closes the sink.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.Start()
	d.closeOnce.Do(func() {
		close(d.stop)
	})
	select {
	case <-d.done:
	case <-ctx.Done():
		d.logger.WarnContext(ctx, "event dispatcher close timed out", "pending", d.buf.len())
	}
	return d.sink.Close()
}

// Pending reports queued, undelivered events.
func (d *Dispatcher) Pending() int { return d.buf.len() }

// Dropped reports events discarded because the buffer overflowed.
func (d *Dispatcher) Dropped() int64 { return d.buf.droppedCount() }

func (d *Dispatcher) run() {
	defer close(d.done)
	for {
		select {
		case <-d.wake:
			d.drain()
		case <-d.stop:
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		batch := d.buf.dequeueBatch(batchSize)
		if len(batch) == 0 {
			return
		}
		for _, event := range batch {
			d.deliver(event)
		}
	}
}

func (d *Dispatcher) deliver(event AdminProvisioned) {
	if d.breaker.IsOpen() && d.now().Sub(d.lastProbe) < d.probeInterval {
		d.logger.Info("event sink unavailable, event logged only",
			"event_id", event.EventID,
			"username", event.Username,
			"admin_role", event.AdminRole,
		)
		return
	}
	if d.breaker.IsOpen() {
		d.lastProbe = d.now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.publishTimeout)
	defer cancel()

	if err := d.sink.Publish(ctx, event); err != nil {
		_, change := d.breaker.RecordFailure()
		if change.Opened {
			d.lastProbe = d.now()
			d.logger.Error("event sink circuit opened", "error", err)
		}
		d.logger.Warn("failed to publish admin event",
			"event_id", event.EventID,
			"username", event.Username,
			"error", err,
		)
		return
	}
	if _, change := d.breaker.RecordSuccess(); change.Closed {
		d.logger.Info("event sink circuit closed")
	}
}
