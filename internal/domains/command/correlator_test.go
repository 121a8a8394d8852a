package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/liftsign/controlplane/pkg/Logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCorrelator(t *testing.T) *Correlator {
	t.Helper()
	return NewCorrelator(Logger.New(true))
}

func TestBeginWaitConflict(t *testing.T) {
	c := newTestCorrelator(t)

	p, err := c.BeginWait("dev_1")
	require.NoError(t, err)
	require.NotNil(t, p)

	_, err = c.BeginWait("dev_1")
	assert.ErrorIs(t, err, ErrRequestPending)

	// Other devices are unaffected.
	_, err = c.BeginWait("dev_2")
	assert.NoError(t, err)
}

func TestAwaitResultTimeoutFreesSlot(t *testing.T) {
	c := newTestCorrelator(t)

	p, err := c.BeginWait("dev_1")
	require.NoError(t, err)

	start := time.Now()
	_, err = c.AwaitResult(context.Background(), p, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrAwaitTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// The entry is gone: a new BeginWait succeeds immediately.
	_, err = c.BeginWait("dev_1")
	assert.NoError(t, err)
	assert.Equal(t, 1, c.PendingCount())
}

func TestResolveDeliversPromptly(t *testing.T) {
	c := newTestCorrelator(t)

	p, err := c.BeginWait("dev_1")
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		ok := c.Resolve("dev_1", p.ReqID, Result{SnapshotURL: "http://oss/snap.jpg"})
		if !ok {
			t.Error("first resolve should match the pending entry")
		}
	}()

	res, err := c.AwaitResult(context.Background(), p, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://oss/snap.jpg", res.SnapshotURL)

	// Duplicate resolve after removal is a no-op, not an error.
	assert.False(t, c.Resolve("dev_1", p.ReqID, Result{SnapshotURL: "http://other"}))
	assert.Equal(t, 0, c.PendingCount())
}

func TestResolveByDeviceFallback(t *testing.T) {
	c := newTestCorrelator(t)

	p, err := c.BeginWait("dev_1")
	require.NoError(t, err)

	// No req_id on the callback: the device-key shim matches the pending
	// request for this device.
	go c.Resolve("dev_1", "", Result{SnapshotURL: "u"})

	res, err := c.AwaitResult(context.Background(), p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "u", res.SnapshotURL)
}

func TestResolveStaleReqIDIsDropped(t *testing.T) {
	c := newTestCorrelator(t)

	p1, err := c.BeginWait("dev_1")
	require.NoError(t, err)
	_, err = c.AwaitResult(context.Background(), p1, 20*time.Millisecond)
	require.ErrorIs(t, err, ErrAwaitTimeout)

	p2, err := c.BeginWait("dev_1")
	require.NoError(t, err)

	// The late callback still carries the timed-out request's id; it must
	// not be attributed to the newer request for the same device.
	assert.False(t, c.Resolve("dev_1", p1.ReqID, Result{SnapshotURL: "http://oss/stale.jpg"}))

	go c.Resolve("dev_1", p2.ReqID, Result{SnapshotURL: "http://oss/fresh.jpg"})
	res, err := c.AwaitResult(context.Background(), p2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://oss/fresh.jpg", res.SnapshotURL)
}

func TestResolveUnknownIsNoop(t *testing.T) {
	c := newTestCorrelator(t)
	assert.False(t, c.Resolve("dev_ghost", "req_ghost", Result{}))
}

func TestAwaitResultContextCancel(t *testing.T) {
	c := newTestCorrelator(t)

	p, err := c.BeginWait("dev_1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = c.AwaitResult(ctx, p, time.Minute)
	assert.True(t, errors.Is(err, context.Canceled))

	// Cancellation also cleans up the slot.
	_, err = c.BeginWait("dev_1")
	assert.NoError(t, err)
}

func TestConcurrentResolversOneWinner(t *testing.T) {
	c := newTestCorrelator(t)

	p, err := c.BeginWait("dev_1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	wins := make(chan int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if c.Resolve("dev_1", p.ReqID, Result{Status: "ok"}) {
				wins <- n
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "the signal must fire exactly once")

	res, err := c.AwaitResult(context.Background(), p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
}
