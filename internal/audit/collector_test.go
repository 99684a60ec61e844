package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore records all batches that were inserted.
type mockStore struct {
	mu      sync.Mutex
	batches [][]Event
	err     error
}

func (m *mockStore) BatchInsert(_ context.Context, events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := make([]Event, len(events))
	copy(cp, events)
	m.batches = append(m.batches, cp)
	return nil
}

func (m *mockStore) totalInserted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

type recordingObserver struct {
	mu      sync.Mutex
	events  int
	flushes int
	errs    int
	size    int
}

func (o *recordingObserver) SetAuditBufferSize(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.size = n
}

func (o *recordingObserver) IncAuditEvent() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events++
}

func (o *recordingObserver) ObserveAuditFlush(_ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushes++
	if err != nil {
		o.errs++
	}
}

func sampleEvent(action string) Event {
	return Event{
		Action:       action,
		ResourceType: "team",
		ResourceID:   "1",
		ActorID:      2,
		ActorEmail:   "bobpeeters@teamtrack.be",
	}
}

func TestCollector_RecordAddsToBuffer(t *testing.T) {
	ms := &mockStore{}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 12, 17, 9, 0, 0, 0, time.UTC))
	c := NewCollector(ms, 100, time.Hour, WithClock(clock))

	c.Record(sampleEvent(ActionTeamCreate))
	c.Record(sampleEvent(ActionTeamUpdate))

	assert.Equal(t, 2, c.Pending())
	assert.Equal(t, 0, ms.totalInserted())

	c.mu.Lock()
	stamped := c.buffer[0].CreatedAt
	c.mu.Unlock()
	assert.Equal(t, clock.Now().UTC(), stamped)
}

func TestCollector_FlushOnBatchSize(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		records   int
		wantFlush int
	}{
		{"exact batch size triggers flush", 3, 3, 3},
		{"under batch size does not flush", 5, 3, 0},
		{"double batch size triggers two flushes", 2, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &mockStore{}
			c := NewCollector(ms, tt.batchSize, time.Hour)

			for i := 0; i < tt.records; i++ {
				c.Record(sampleEvent(ActionGameCreate))
			}

			assert.Equal(t, tt.wantFlush, ms.totalInserted())
		})
	}
}

func TestCollector_StopDoesFinalFlush(t *testing.T) {
	ms := &mockStore{}
	c := NewCollector(ms, 100, time.Hour)

	done := make(chan struct{})
	go func() {
		c.Start(context.Background())
		close(done)
	}()

	c.Record(sampleEvent(ActionGameCreate))
	c.Record(sampleEvent(ActionGameUpdate))
	c.Record(sampleEvent(ActionGameDelete))

	c.Stop()
	c.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.Equal(t, 3, ms.totalInserted())
}

func TestCollector_TimerFlush(t *testing.T) {
	ms := &mockStore{}
	clock := clockwork.NewFakeClock()
	c := NewCollector(ms, 100, 5*time.Second, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	c.Record(sampleEvent(ActionRegister))
	clock.Advance(5 * time.Second)

	require.Eventually(t, func() bool { return ms.totalInserted() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestCollector_ContextCancelFlushes(t *testing.T) {
	ms := &mockStore{}
	c := NewCollector(ms, 100, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	c.Record(sampleEvent(ActionUserUpdate))
	cancel()
	<-done

	assert.Equal(t, 1, ms.totalInserted())
}

func TestCollector_ObserverAndFlushError(t *testing.T) {
	ms := &mockStore{err: errors.New("connection refused")}
	obs := &recordingObserver{}
	c := NewCollector(ms, 2, time.Hour, WithObserver(obs))

	c.Record(sampleEvent(ActionPlayerAdd))
	assert.Equal(t, 1, obs.size)

	c.Record(sampleEvent(ActionPlayerRemove))

	assert.Equal(t, 2, obs.events)
	assert.Equal(t, 1, obs.flushes)
	assert.Equal(t, 1, obs.errs)
	assert.Equal(t, 0, obs.size)
	// A failed batch is dropped, not retried.
	assert.Equal(t, 0, c.Pending())
}
