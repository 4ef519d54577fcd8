package services

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"macrolog/logger"
)

const wsWriteWait = 10 * time.Second

type WSClient struct {
	ProfileID uuid.UUID
	Conn      *websocket.Conn

	writeMu sync.Mutex
}

func (c *WSClient) write(msg []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.Conn.WriteMessage(websocket.TextMessage, msg)
}

// RealtimeHub tracks open websocket sessions per profile.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*WSClient]struct{}
	log     *logger.Logger
}

func NewRealtimeHub(log *logger.Logger) *RealtimeHub {
	return &RealtimeHub{
		clients: make(map[uuid.UUID]map[*WSClient]struct{}),
		log:     log.With("component", "RealtimeHub"),
	}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.ProfileID] == nil {
		h.clients[c.ProfileID] = make(map[*WSClient]struct{})
	}
	h.clients[c.ProfileID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.ProfileID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.ProfileID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// Connections reports the open sessions of a profile.
func (h *RealtimeHub) Connections(profileID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[profileID])
}

// Broadcast writes payload to every session of the profile. Sessions that
// fail to take the write are dropped.
func (h *RealtimeHub) Broadcast(profileID uuid.UUID, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("realtime payload not encodable", "error", err)
		return
	}
	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[profileID]))
	for c := range h.clients[profileID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(msg); err != nil {
			h.log.Debug("realtime write failed", "profile_id", profileID, "error", err)
			h.Unregister(c)
		}
	}
}

// ForwardLedger is the EventBus callback delivering events to local sessions.
func (h *RealtimeHub) ForwardLedger(ev LedgerEvent) {
	h.Broadcast(ev.ProfileID, ev)
}
