package gossip

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ticketchain/core"
)

// Bootstrap dials every host in hosts (shuffled, as bc_agent.py's
// asyncstartup does) and, on the first one that answers, pulls that
// peer's full /chain once before settling into the normal Hub.Serve
// read loop. Each dial runs in its own goroutine so one slow or dead
// peer never delays the others.
type Bootstrap struct {
	hub    *Hub
	engine *core.Engine
	log    *zap.SugaredLogger
	client *http.Client

	joinedOnce sync.Once
}

// NewBootstrap constructs a Bootstrap over hub/engine.
func NewBootstrap(hub *Hub, engine *core.Engine, log *zap.SugaredLogger) *Bootstrap {
	return &Bootstrap{
		hub:    hub,
		engine: engine,
		log:    log,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Start kicks off a background connection attempt to every host.
func (b *Bootstrap) Start(hosts []string) {
	shuffled := append([]string(nil), hosts...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	for _, host := range shuffled {
		go b.connect(host)
	}
}

func (b *Bootstrap) connect(host string) {
	url := fmt.Sprintf("ws://%s/ws", host)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		b.log.Debugw("peer did not respond", "host", host, "error", err)
		return
	}

	b.joinedOnce.Do(func() { b.pullChain(host) })
	b.hub.Serve(conn)
}

// pullChain fetches the peer's entire known chain over plain HTTP and
// feeds each block through the engine with a no-op missing callback,
// silently dropping anything that doesn't validate — mirroring
// bc_agent.py's asyncstartup, which discards add_block's errors on the
// initial chain pull.
func (b *Bootstrap) pullChain(host string) {
	resp, err := b.client.Get(fmt.Sprintf("http://%s/chain", host))
	if err != nil {
		b.log.Debugw("chain pull failed", "host", host, "error", err)
		return
	}
	defer resp.Body.Close()

	var chain map[string]core.Block
	if err := json.NewDecoder(resp.Body).Decode(&chain); err != nil {
		b.log.Debugw("chain pull decode failed", "host", host, "error", err)
		return
	}
	for _, block := range chain {
		b.engine.Admit(block, nil)
	}
}
