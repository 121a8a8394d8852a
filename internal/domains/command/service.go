package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liftsign/controlplane/internal/gateway"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// ErrDispatchFailed wraps a gateway failure that happened before the device
// could have seen the command.
var ErrDispatchFailed = errors.New("failed to dispatch command to gateway")

const historyLimit = 256

// Dispatcher is the outbound side of the gateway link.
type Dispatcher interface {
	Send(ctx context.Context, deviceID, command string, data json.RawMessage, cmdID string) (gateway.Ack, error)
}

// CommandStatus tracks one dispatched command for the admin frontend.
type CommandStatus string

const (
	CommandPending CommandStatus = "pending"
	CommandSent    CommandStatus = "sent"
	CommandSuccess CommandStatus = "success"
	CommandTimeout CommandStatus = "timeout"
	CommandFailed  CommandStatus = "failed"
)

// CommandRecord is one entry of the in-memory command history.
type CommandRecord struct {
	CmdID    string        `json:"cmd_id"`
	DeviceID string        `json:"device_id"`
	Action   string        `json:"action"`
	Status   CommandStatus `json:"status"`
	SentAt   time.Time     `json:"send_ts"`
	Result   string        `json:"result,omitempty"`
}

// CommandService drives device commands: fire-and-forget dispatch and the
// snapshot round trip through the correlator.
type CommandService interface {
	RequestSnapshot(ctx context.Context, deviceID string, timeout time.Duration) (string, error)
	SendCommand(ctx context.Context, deviceID, action string, data json.RawMessage) (*CommandRecord, error)
	ResolveCallback(deviceID, reqID string, res Result) bool
	ListCommands(limit int) []CommandRecord
}

type commandService struct {
	correlator *Correlator
	dispatcher Dispatcher
	logger     *Logger.Logger

	histMu  sync.Mutex
	history []CommandRecord // newest first
}

func NewService(correlator *Correlator, dispatcher Dispatcher, logger *Logger.Logger) CommandService {
	return &commandService{
		correlator: correlator,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RequestSnapshot implements CommandService. It registers a waiter, pushes a
// SNAPSHOT command carrying the correlation id, and suspends until the
// gateway callback resolves it or the timeout elapses.
func (s *commandService) RequestSnapshot(ctx context.Context, deviceID string, timeout time.Duration) (string, error) {
	p, err := s.correlator.BeginWait(deviceID)
	if err != nil {
		return "", err
	}

	if _, err := s.dispatcher.Send(ctx, deviceID, "SNAPSHOT", nil, p.ReqID); err != nil {
		// No orphaned waiters: the slot must be free for the next caller.
		s.correlator.Release(p)
		s.record(CommandRecord{CmdID: p.ReqID, DeviceID: deviceID, Action: "capture", Status: CommandFailed, SentAt: time.Now()})
		return "", fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	res, err := s.correlator.AwaitResult(ctx, p, timeout)
	if err != nil {
		status := CommandFailed
		if errors.Is(err, ErrAwaitTimeout) {
			status = CommandTimeout
		}
		s.record(CommandRecord{CmdID: p.ReqID, DeviceID: deviceID, Action: "capture", Status: status, SentAt: p.CreatedAt})
		return "", err
	}

	s.record(CommandRecord{
		CmdID:    p.ReqID,
		DeviceID: deviceID,
		Action:   "capture",
		Status:   CommandSuccess,
		SentAt:   p.CreatedAt,
		Result:   res.SnapshotURL,
	})
	s.logger.Infof("snapshot for device %s arrived after %s", deviceID, p.Elapsed())
	return res.SnapshotURL, nil
}

// SendCommand implements CommandService. Fire and forget: a successful
// gateway ack means delivered to the gateway, not executed by the device.
func (s *commandService) SendCommand(ctx context.Context, deviceID, action string, data json.RawMessage) (*CommandRecord, error) {
	rec := CommandRecord{
		CmdID:    "cmd_" + uuid.New().String(),
		DeviceID: deviceID,
		Action:   action,
		Status:   CommandPending,
		SentAt:   time.Now(),
	}

	if _, err := s.dispatcher.Send(ctx, deviceID, action, data, rec.CmdID); err != nil {
		rec.Status = CommandFailed
		s.record(rec)
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	rec.Status = CommandSent
	s.record(rec)
	s.logger.Infof("command %s dispatched to device %s", action, deviceID)
	return &rec, nil
}

// ResolveCallback implements CommandService.
func (s *commandService) ResolveCallback(deviceID, reqID string, res Result) bool {
	return s.correlator.Resolve(deviceID, reqID, res)
}

// ListCommands implements CommandService.
func (s *commandService) ListCommands(limit int) []CommandRecord {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]CommandRecord, limit)
	copy(out, s.history[:limit])
	return out
}

func (s *commandService) record(rec CommandRecord) {
	s.histMu.Lock()
	defer s.histMu.Unlock()

	s.history = append([]CommandRecord{rec}, s.history...)
	if len(s.history) > historyLimit {
		s.history = s.history[:historyLimit]
	}
}
