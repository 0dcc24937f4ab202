package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub gerencia as conexões WebSocket; todo cliente recebe todos os snapshots
// last guarda o último envelope para quem conecta no meio da rodada
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	last  []byte

	OnConnect    func() // métricas
	OnDisconnect func()
	OnSent       func()
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		conns:    make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.add(conn)
	defer h.remove(conn)

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msg.Type == "ping" {
			b, _ := json.Marshal(ServerMsg{Type: "pong"})
			h.write(conn, b)
		}
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
	if h.OnConnect != nil {
		h.OnConnect()
	}
	if h.last != nil {
		h.writeLocked(conn, h.last)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		if h.OnDisconnect != nil {
			h.OnDisconnect()
		}
	}
}

func (h *Hub) write(conn *websocket.Conn, b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeLocked(conn, b)
}

// writeLocked exige h.mu: gorilla não aceita escritas concorrentes na mesma conexão
func (h *Hub) writeLocked(conn *websocket.Conn, b []byte) {
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		h.log.Warn("ws write failed", zap.Error(err))
		_ = conn.Close()
		return
	}
	if h.OnSent != nil {
		h.OnSent()
	}
}

// Broadcast envia o envelope já serializado para todos os clientes conectados
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	for c := range h.conns {
		h.writeLocked(c, msg)
	}
}

// Send implementa Sink para broadcast local (sem Redis)
func (h *Hub) Send(_ context.Context, msg []byte) error {
	h.Broadcast(msg)
	return nil
}

// Clients retorna o número de conexões abertas
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
