package janitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lifestyle/internal/logging"
)

type fakePurger struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakePurger) Purge(_ context.Context, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, at)
	return 1, f.err
}

func (f *fakePurger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestRun_PurgesEveryPeriodUntilCanceled(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	old := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = old })

	p := &fakePurger{}
	j := New(p, 5*time.Millisecond, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return p.count() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, fixed.UTC(), p.calls[0])
	assert.Equal(t, time.UTC, p.calls[0].Location())
}

func TestRun_KeepsGoingAfterErrors(t *testing.T) {
	p := &fakePurger{err: errors.New("db down")}
	j := New(p, 2*time.Millisecond, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	require.Eventually(t, func() bool { return p.count() >= 3 }, time.Second, time.Millisecond)
}

func TestRun_DisabledPeriodReturns(t *testing.T) {
	p := &fakePurger{}
	New(p, 0, logging.Nop()).Run(context.Background())
	assert.Zero(t, p.count())
}
