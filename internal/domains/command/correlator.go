package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// Common errors
var (
	ErrRequestPending = errors.New("a request is already pending for this device")
	ErrAwaitTimeout   = errors.New("timed out waiting for device response")
)

// Result carries whatever payload a device callback delivered for one request.
type Result struct {
	SnapshotURL string         `json:"snapshot_url,omitempty"`
	Output      string         `json:"result,omitempty"`
	Status      string         `json:"status,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Pending is one outstanding device operation awaiting its callback.
// The result slot is owned by the Correlator until done is closed; after
// that exactly one waiter reads it.
type Pending struct {
	DeviceID  string
	ReqID     string
	CreatedAt time.Time

	done   chan struct{}
	result Result
}

// Elapsed reports how long the request has been outstanding.
func (p *Pending) Elapsed() time.Duration {
	return time.Since(p.CreatedAt)
}

// Correlator matches outbound device commands to their asynchronous
// callbacks. It keeps at most one pending request per device; callbacks
// are matched by correlation id first and fall back to the device key
// when the gateway did not echo the id back.
type Correlator struct {
	mu       sync.Mutex
	byDevice map[string]*Pending
	byReqID  map[string]*Pending
	logger   *Logger.Logger
}

func NewCorrelator(logger *Logger.Logger) *Correlator {
	return &Correlator{
		byDevice: make(map[string]*Pending),
		byReqID:  make(map[string]*Pending),
		logger:   logger,
	}
}

// BeginWait registers a pending request for deviceID. It fails with
// ErrRequestPending while another request for the same device is
// outstanding, so two callers can never consume each other's result.
func (c *Correlator) BeginWait(deviceID string) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byDevice[deviceID]; exists {
		return nil, ErrRequestPending
	}

	p := &Pending{
		DeviceID:  deviceID,
		ReqID:     "req_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
		CreatedAt: time.Now(),
		done:      make(chan struct{}),
	}
	c.byDevice[deviceID] = p
	c.byReqID[p.ReqID] = p
	return p, nil
}

// Release removes the entry for p. Safe to call more than once; a newer
// pending request for the same device is left untouched.
func (c *Correlator) Release(p *Pending) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cur, ok := c.byDevice[p.DeviceID]; ok && cur == p {
		delete(c.byDevice, p.DeviceID)
	}
	delete(c.byReqID, p.ReqID)
}

// AwaitResult suspends the caller until the entry is resolved, the timeout
// elapses, or ctx is cancelled. The entry is released on every exit path.
func (c *Correlator) AwaitResult(ctx context.Context, p *Pending, timeout time.Duration) (Result, error) {
	defer c.Release(p)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		c.mu.Lock()
		res := p.result
		c.mu.Unlock()
		return res, nil
	case <-timer.C:
		c.logger.Warnf("snapshot wait timed out for device %s after %s (req %s)", p.DeviceID, p.Elapsed(), p.ReqID)
		return Result{}, ErrAwaitTimeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Resolve stores res on the matching pending entry and fires its signal.
// Resolving an unknown, already-resolved or already-released entry is a
// logged no-op: callbacks race with timeout cleanup and may be duplicated
// by the gateway.
func (c *Correlator) Resolve(deviceID, reqID string, res Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	var p *Pending
	if reqID != "" {
		// An explicit correlation id is authoritative: if its entry is gone
		// the callback is stale and must not land on a newer request for the
		// same device.
		p = c.byReqID[reqID]
	} else {
		// Compatibility shim: no correlation id on the callback, match the
		// pending request for this device. Cannot disambiguate if the
		// single-slot rule were ever relaxed.
		p = c.byDevice[deviceID]
	}
	if p == nil {
		c.logger.Debugf("unmatched callback for device %s (req %q), dropping", deviceID, reqID)
		return false
	}

	select {
	case <-p.done:
		c.logger.Debugf("duplicate callback for device %s (req %s), ignoring", deviceID, p.ReqID)
		return false
	default:
	}

	p.result = res
	close(p.done)
	return true
}

// PendingCount reports how many requests are outstanding, for diagnostics.
func (c *Correlator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byDevice)
}
