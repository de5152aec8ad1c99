package gossip

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ticketchain/core"
)

// Hub tracks every open peer WebSocket connection and dispatches
// inbound frames into the engine. Grounded on bc_agent.py's module-level
// allws set plus use_ws/broadcast; the mutex here guards only the
// connection set, never engine state, which stays single-goroutine per
// core.Engine's own contract.
type Hub struct {
	engine *core.Engine
	log    *zap.SugaredLogger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub constructs a Hub bound to engine.
func NewHub(engine *core.Engine, log *zap.SugaredLogger) *Hub {
	return &Hub{
		engine: engine,
		log:    log,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Broadcast implements core.Broadcaster: push block to every open peer.
func (h *Hub) Broadcast(block core.Block) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		go func(c *websocket.Conn) {
			if err := c.WriteJSON(block); err != nil {
				h.log.Debugw("broadcast write failed", "error", err)
			}
		}(c)
	}
}

// Serve registers conn and runs its inbound read loop until the
// connection closes or errors. Callers (the /ws handler and the
// outbound dialer in bootstrap.go) both hand their conn to Serve.
func (h *Hub) Serve(conn *websocket.Conn) {
	h.add(conn)
	defer h.remove(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := parseMessage(data)
		if err != nil {
			h.log.Debugw("dropping malformed peer message", "error", err)
			continue
		}
		switch {
		case msg.Missing != "":
			h.replyToMissing(conn, msg.Missing)
		case msg.Block != nil:
			h.admitFromPeer(conn, *msg.Block)
		}
	}
}

func (h *Hub) replyToMissing(conn *websocket.Conn, hash core.Hash) {
	block, ok := h.engine.GetBlock(hash)
	if !ok {
		return
	}
	if err := conn.WriteJSON(block); err != nil {
		h.log.Debugw("reply to missing request failed", "error", err)
	}
}

func (h *Hub) admitFromPeer(conn *websocket.Conn, block core.Block) {
	h.engine.Admit(block, func(missing core.Hash) {
		if err := conn.WriteJSON(newMissingMessage(missing)); err != nil {
			h.log.Debugw("missing-parent request failed", "error", err)
		}
	})
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Close shuts down every open peer connection, for graceful shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
}
