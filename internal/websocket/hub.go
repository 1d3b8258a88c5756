package websocket

import (
	"encoding/json"
	"sync"
)

// FinanceEvent is pushed to dashboard clients whenever a finance record of
// their society changes.
type FinanceEvent struct {
	Kind      string `json:"kind"`
	SocietyID string `json:"society_id"`
	RecordID  string `json:"record_id"`
	Action    string `json:"action"`
	Amount    string `json:"amount"`
	Category  string `json:"category,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(societyID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[societyID] == nil {
		h.clients[societyID] = make(map[*Client]struct{})
	}
	h.clients[societyID][client] = struct{}{}
}

func (h *Hub) Unregister(societyID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[societyID] == nil {
		return
	}
	delete(h.clients[societyID], client)
	if len(h.clients[societyID]) == 0 {
		delete(h.clients, societyID)
	}
}

func (h *Hub) BroadcastFinanceEvent(event FinanceEvent) {
	payload, _ := json.Marshal(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[event.SocietyID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}
