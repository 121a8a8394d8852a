package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/liftsign/controlplane/internal/gateway"
	"github.com/liftsign/controlplane/pkg/Logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDispatcher struct {
	err      error
	lastCmd  string
	lastID   string
	onDevice func(deviceID, cmdID string)
}

func (s *stubDispatcher) Send(ctx context.Context, deviceID, command string, data json.RawMessage, cmdID string) (gateway.Ack, error) {
	s.lastCmd = command
	s.lastID = cmdID
	if s.err != nil {
		return nil, s.err
	}
	if s.onDevice != nil {
		s.onDevice(deviceID, cmdID)
	}
	return gateway.Ack{"status": "ok"}, nil
}

func TestRequestSnapshotRoundTrip(t *testing.T) {
	logger := Logger.New(true)
	correlator := NewCorrelator(logger)

	// The stub "device" answers asynchronously through the callback path,
	// echoing the correlation id like the real gateway does.
	dispatcher := &stubDispatcher{
		onDevice: func(deviceID, cmdID string) {
			go func() {
				time.Sleep(10 * time.Millisecond)
				correlator.Resolve(deviceID, cmdID, Result{SnapshotURL: "http://oss/d1.jpg"})
			}()
		},
	}
	svc := NewService(correlator, dispatcher, logger)

	url, err := svc.RequestSnapshot(context.Background(), "dev_1", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://oss/d1.jpg", url)
	assert.Equal(t, "SNAPSHOT", dispatcher.lastCmd)
	assert.NotEmpty(t, dispatcher.lastID)

	hist := svc.ListCommands(10)
	require.Len(t, hist, 1)
	assert.Equal(t, CommandSuccess, hist[0].Status)
	assert.Equal(t, "http://oss/d1.jpg", hist[0].Result)
}

func TestRequestSnapshotDispatchFailureReleasesSlot(t *testing.T) {
	logger := Logger.New(true)
	correlator := NewCorrelator(logger)
	dispatcher := &stubDispatcher{err: gateway.ErrGatewayUnavailable}
	svc := NewService(correlator, dispatcher, logger)

	_, err := svc.RequestSnapshot(context.Background(), "dev_1", time.Second)
	assert.ErrorIs(t, err, ErrDispatchFailed)

	// No orphaned waiter: the slot must be reusable at once.
	assert.Equal(t, 0, correlator.PendingCount())
	_, err = correlator.BeginWait("dev_1")
	assert.NoError(t, err)
}

func TestRequestSnapshotTimeoutRecorded(t *testing.T) {
	logger := Logger.New(true)
	correlator := NewCorrelator(logger)
	svc := NewService(correlator, &stubDispatcher{}, logger)

	_, err := svc.RequestSnapshot(context.Background(), "dev_1", 30*time.Millisecond)
	assert.ErrorIs(t, err, ErrAwaitTimeout)

	hist := svc.ListCommands(10)
	require.Len(t, hist, 1)
	assert.Equal(t, CommandTimeout, hist[0].Status)
}

func TestSendCommandHistoryNewestFirst(t *testing.T) {
	logger := Logger.New(true)
	svc := NewService(NewCorrelator(logger), &stubDispatcher{}, logger)

	_, err := svc.SendCommand(context.Background(), "dev_1", "REBOOT", nil)
	require.NoError(t, err)
	_, err = svc.SendCommand(context.Background(), "dev_2", "SET_VOLUME", json.RawMessage(`{"level":5}`))
	require.NoError(t, err)

	hist := svc.ListCommands(10)
	require.Len(t, hist, 2)
	assert.Equal(t, "SET_VOLUME", hist[0].Action)
	assert.Equal(t, "REBOOT", hist[1].Action)
	assert.Equal(t, CommandSent, hist[0].Status)
}

func TestSendCommandGatewayDown(t *testing.T) {
	logger := Logger.New(true)
	svc := NewService(NewCorrelator(logger), &stubDispatcher{err: errors.New("connection refused")}, logger)

	_, err := svc.SendCommand(context.Background(), "dev_1", "REBOOT", nil)
	assert.ErrorIs(t, err, ErrDispatchFailed)

	hist := svc.ListCommands(1)
	require.Len(t, hist, 1)
	assert.Equal(t, CommandFailed, hist[0].Status)
}
