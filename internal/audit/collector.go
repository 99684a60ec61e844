package audit

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/teamtrack/teamtrack/internal/logger"
)

// BatchInserter persists a batch of events.
type BatchInserter interface {
	BatchInsert(ctx context.Context, events []Event) error
}

// Observer receives buffer and flush measurements. *metrics.Metrics satisfies it.
type Observer interface {
	SetAuditBufferSize(n int)
	IncAuditEvent()
	ObserveAuditFlush(elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) SetAuditBufferSize(int)                 {}
func (nopObserver) IncAuditEvent()                         {}
func (nopObserver) ObserveAuditFlush(time.Duration, error) {}

// Collector buffers events and flushes them to the store when the buffer
// reaches batchSize or every flushInterval, whichever comes first. It is safe
// for concurrent use.
type Collector struct {
	store         BatchInserter
	buffer        []Event
	mu            sync.Mutex
	batchSize     int
	flushInterval time.Duration
	clock         clockwork.Clock
	observer      Observer
	log           *logger.Logger
	done          chan struct{}
	stopOnce      sync.Once
}

type Option func(*Collector)

func WithClock(clock clockwork.Clock) Option {
	return func(c *Collector) { c.clock = clock }
}

func WithObserver(o Observer) Option {
	return func(c *Collector) { c.observer = o }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Collector) { c.log = l }
}

func NewCollector(store BatchInserter, batchSize int, flushInterval time.Duration, opts ...Option) *Collector {
	if batchSize <= 0 {
		batchSize = 1
	}
	c := &Collector{
		store:         store,
		buffer:        make([]Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		clock:         clockwork.NewRealClock(),
		observer:      nopObserver{},
		log:           logger.Nop(),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start flushes on a timer until Stop is called or ctx is cancelled. It blocks.
func (c *Collector) Start(ctx context.Context) {
	ticker := c.clock.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			c.flush()
		case <-ctx.Done():
			c.flush()
			return
		case <-c.done:
			c.flush()
			return
		}
	}
}

// Record adds an event to the buffer, stamping CreatedAt when unset.
func (c *Collector) Record(e Event) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = c.clock.Now().UTC()
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, e)
	size := len(c.buffer)
	c.mu.Unlock()

	c.observer.IncAuditEvent()
	c.observer.SetAuditBufferSize(size)

	if size >= c.batchSize {
		c.flush()
	}
}

// Pending returns the number of buffered events.
func (c *Collector) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}

// flush drains the buffer into the store. Errors are logged and the batch is
// dropped.
func (c *Collector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make([]Event, 0, c.batchSize)
	c.mu.Unlock()

	c.observer.SetAuditBufferSize(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := c.clock.Now()
	err := c.store.BatchInsert(ctx, batch)
	c.observer.ObserveAuditFlush(c.clock.Since(start), err)
	if err != nil {
		c.log.Error().Err(err).Int("count", len(batch)).Msg("failed to flush audit events")
	}
}

// Stop makes Start return after a final flush. Safe to call more than once.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
