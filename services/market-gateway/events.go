package main

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The relay is a broadcast-only push channel; browsers connect from the
	// marketplace frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans completed-trade notifications out to connected WebSocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// Broadcast writes payload to every connected client. Delivery is best
// effort; a failed write drops the client.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.remove(conn)
		}
	}
}

func (h *Hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the connection and keeps it registered until the peer
// goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	h.add(conn)

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// tradeEventPayload is the slice of the TradeCompleted payload the index
// cares about.
type tradeEventPayload struct {
	BuyerID   string `json:"buyerId"`
	SellerID  string `json:"sellerId"`
	Units     int    `json:"units"`
	Timestamp string `json:"timestamp"`
}

// handleTradeEvent indexes a TradeCompleted event into Postgres and relays it
// to WebSocket subscribers. Both effects are best effort; the ledger already
// holds the authoritative record.
func (s *Service) handleTradeEvent(payload []byte) {
	var trade tradeEventPayload
	if err := json.Unmarshal(payload, &trade); err != nil {
		log.Printf("Discarding undecodable trade event: %v", err)
		return
	}

	if s.db != nil {
		_, err := s.db.Exec(`
			INSERT INTO market.trade_events (buyer_id, seller_id, units, traded_at, payload)
			VALUES ($1, $2, $3, $4, $5)`,
			trade.BuyerID, trade.SellerID, trade.Units, trade.Timestamp, payload)
		if err != nil {
			log.Printf("Failed to index trade event: %v", err)
		}
	}

	s.hub.Broadcast(payload)
}

func (s *Service) recentTrades() ([]tradeEventPayload, error) {
	rows, err := s.db.Query(`
		SELECT buyer_id, seller_id, units, traded_at
		FROM market.trade_events ORDER BY id DESC LIMIT 100`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []tradeEventPayload
	for rows.Next() {
		var t tradeEventPayload
		if err := rows.Scan(&t.BuyerID, &t.SellerID, &t.Units, &t.Timestamp); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
