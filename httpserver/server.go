// Package httpserver exposes the chi-routed HTTP surface this protocol
// describes — chain/balance queries, local transfer submission, and the
// WebSocket upgrade gossip dials into. Grounded on
// walletserver/middleware/logger.go for the logrus access-log style and
// original_source/blockchain/bc_agent.py for the route contract itself.
package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"ticketchain/config"
	"ticketchain/core"
	"ticketchain/gossip"
)

// Server wires the engine, gossip hub, and node configuration into a
// chi.Router.
type Server struct {
	router chi.Router
	engine *core.Engine
	hub    *gossip.Hub
	pub    config.Public
	priv   *config.Private
	log    *logrus.Logger

	upgrader websocket.Upgrader
}

// New builds a Server ready to be passed to http.ListenAndServe.
func New(engine *core.Engine, hub *gossip.Hub, pub config.Public, priv *config.Private, log *logrus.Logger) *Server {
	s := &Server{
		engine: engine,
		hub:    hub,
		pub:    pub,
		priv:   priv,
		log:    log,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.accessLog)

	r.Get("/chain", s.handleChain)
	r.Get("/balances", s.handleBalances)
	r.Post("/getlive", s.handleGetLive)
	r.Post("/transfer", s.handleTransfer)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/view", s.handleView)
	r.Get("/", s.handleIndex)
	return r
}

// accessLog mirrors walletserver/middleware/logger.go's shape, swapped
// from a bare package-level logrus.Infof call to the Logger this server
// was built with so tests can capture output. Each request is stamped
// with a UUID the way core/rental_management.go and friends stamp their
// domain entities, so a transfer can be traced through the log even
// when several requests land in the same millisecond.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := uuid.New().String()
		next.ServeHTTP(w, r)
		s.log.Infof("[%s] %s %s %s", reqID, r.Method, r.RequestURI, time.Since(start))
	})
}
