package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liftsign/controlplane/pkg/Logger"
)

// ErrGatewayUnavailable covers transport failures and non-2xx answers from
// the gateway's command ingestion endpoint. Callers use it to tell "never
// sent" apart from "sent but no answer".
var ErrGatewayUnavailable = errors.New("gateway unavailable")

// Ack is the optional JSON echo the gateway returns on accepted commands.
type Ack map[string]any

type sendRequest struct {
	DeviceID string          `json:"device_id"`
	Command  string          `json:"command"`
	Data     json.RawMessage `json:"data"`
	CmdID    string          `json:"cmd_id,omitempty"`
}

// Client delivers one-way instructions to the gateway holding the live
// device connections. Single attempt, short timeout, no retries.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *Logger.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *Logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Send pushes a command to the gateway. cmdID, when set, must round-trip
// through the gateway so the eventual callback can be matched precisely.
func (c *Client) Send(ctx context.Context, deviceID, command string, data json.RawMessage, cmdID string) (Ack, error) {
	if data == nil {
		data = json.RawMessage(`""`)
	}
	body, err := json.Marshal(sendRequest{
		DeviceID: deviceID,
		Command:  command,
		Data:     data,
		CmdID:    cmdID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var ack Ack
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		// Empty or non-JSON body still counts as accepted.
		return Ack{"status": "ok"}, nil
	}
	return ack, nil
}
