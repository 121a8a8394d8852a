// gatewaysim is a development stand-in for the gateway that owns live device
// connections. It authenticates device websockets against the shared redis
// token store, marks presence, relays control-plane commands to connected
// devices and forwards snapshot responses back as callbacks.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis"
	"github.com/gorilla/websocket"
	"github.com/liftsign/controlplane/internal/repository/tokenstore"
)

const presenceTTL = 90 * time.Second

type deviceMessage struct {
	Type     string          `json:"type"`
	DeviceID string          `json:"device_id"`
	ReqID    string          `json:"req_id,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type sendRequest struct {
	DeviceID string          `json:"device_id"`
	Command  string          `json:"command"`
	Data     json.RawMessage `json:"data"`
	CmdID    string          `json:"cmd_id,omitempty"`
}

type snapshotPayload struct {
	URL string `json:"url"`
}

// deviceConn wraps one device websocket. gorilla/websocket allows a single
// concurrent writer, and both the read loop (heartbeat pongs) and the
// /api/send handler write to the same connection, so every write goes
// through writeMu.
type deviceConn struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (d *deviceConn) writeJSON(v any) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	return d.conn.WriteJSON(v)
}

type manager struct {
	mu    sync.Mutex
	conns map[string]*deviceConn
}

func (m *manager) register(deviceID string, c *deviceConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.conns[deviceID]; ok {
		old.conn.Close()
	}
	m.conns[deviceID] = c
}

func (m *manager) unregister(deviceID string, c *deviceConn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.conns[deviceID]; ok && cur == c {
		delete(m.conns, deviceID)
	}
}

func (m *manager) get(deviceID string) (*deviceConn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conns[deviceID]
	return c, ok
}

type gatewaySim struct {
	manager      *manager
	tokens       *tokenstore.RedisTokenStore
	controlPlane string
	upgrader     websocket.Upgrader
}

func (g *gatewaySim) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device_id")
	token := r.URL.Query().Get("token")

	ok, err := g.tokens.CheckToken(deviceID, token)
	if err != nil || !ok {
		log.Printf("rejecting connection for %s: token invalid", deviceID)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}

	dc := &deviceConn{conn: conn}
	g.manager.register(deviceID, dc)
	g.tokens.SetOnline(deviceID, presenceTTL)
	log.Printf("device %s connected", deviceID)

	go g.readLoop(deviceID, dc)
}

func (g *gatewaySim) readLoop(deviceID string, dc *deviceConn) {
	defer func() {
		log.Printf("device %s disconnected", deviceID)
		g.manager.unregister(deviceID, dc)
		dc.conn.Close()
	}()

	for {
		var msg deviceMessage
		if err := dc.conn.ReadJSON(&msg); err != nil {
			return
		}

		// Any inbound frame refreshes the presence flag.
		g.tokens.SetOnline(deviceID, presenceTTL)

		switch msg.Type {
		case "heartbeat":
			dc.writeJSON(map[string]string{"type": "pong"})
		case "snapshot_response":
			g.forwardSnapshot(deviceID, msg)
		default:
			log.Printf("unknown message type %q from %s", msg.Type, deviceID)
		}
	}
}

// forwardSnapshot posts the device's snapshot result to the control plane's
// callback endpoint, carrying the correlation id through as req_id.
func (g *gatewaySim) forwardSnapshot(deviceID string, msg deviceMessage) {
	var payload snapshotPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("bad snapshot payload from %s: %v", deviceID, err)
		return
	}

	body, _ := json.Marshal(map[string]string{
		"device_id":    deviceID,
		"req_id":       msg.ReqID,
		"snapshot_url": payload.URL,
	})
	resp, err := http.Post(g.controlPlane+"/api/v1/devices/snapshot/callback", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("callback to control plane failed: %v", err)
		return
	}
	resp.Body.Close()
}

func (g *gatewaySim) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Only POST allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	dc, ok := g.manager.get(req.DeviceID)
	if !ok {
		http.Error(w, "Device Offline", http.StatusNotFound)
		return
	}

	err := dc.writeJSON(map[string]any{
		"type":    "command",
		"payload": req.Command,
		"data":    req.Data,
		"cmd_id":  req.CmdID,
	})
	if err != nil {
		http.Error(w, "Device Write Failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "cmd_id": req.CmdID})
}

func main() {
	var (
		addr         = flag.String("addr", ":8080", "listen address")
		redisAddr    = flag.String("redis", "127.0.0.1:6379", "redis address")
		controlPlane = flag.String("control-plane", "http://127.0.0.1:8000", "control plane base url")
	)
	flag.Parse()

	rc := redis.NewClient(&redis.Options{Addr: *redisAddr})
	sim := &gatewaySim{
		manager:      &manager{conns: map[string]*deviceConn{}},
		tokens:       tokenstore.NewRedisTokenStore(rc),
		controlPlane: *controlPlane,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	http.HandleFunc("/ws", sim.handleWebsocket)
	http.HandleFunc("/api/send", sim.handleSend)

	log.Printf("gateway simulator listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
