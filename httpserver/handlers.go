package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"math/rand"
	"net/http"
	"time"

	"ticketchain/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleChain serves GET /chain: every block this agent has admitted,
// keyed by change-hash. JSON object keys are always strings, so the
// large integer hashes are naturally string-safe for browser JS clients
// without needing a separate post-hoc "fixer" pass over the JSON keys.
func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Chain())
}

// handleBalances serves GET /balances.
func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Balances())
}

// handleGetLive serves POST /getlive: the request body is the bare
// decimal change-hash to look up, matching
// original_source/blockchain/bc_agent.py's get_live, which reads the
// raw body as an integer rather than expecting a JSON envelope.
func (s *Server) handleGetLive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read request body")
		return
	}
	n, ok := new(big.Int).SetString(string(body), 10)
	if !ok {
		writeError(w, http.StatusBadRequest, "request body is not a decimal block id")
		return
	}
	hash := core.Hash(n.String())

	block, ok := s.engine.GetBlock(hash)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("No block %s in the blockchain", hash))
		return
	}
	if !s.engine.IsLive(hash) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Block %s is on a dead branch", hash))
		return
	}
	writeJSON(w, http.StatusOK, block)
}

type transferRequest struct {
	Dst  string `json:"dst"`
	N    int64  `json:"n"`
	Memo string `json:"memo"`
}

// handleTransfer serves POST /transfer: sign, admit, broadcast, and
// probe for persistence (core.Engine.Submit).
func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body")
		return
	}

	privExp, err := s.priv.PrivateExponent(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "no signing key on file for this account")
		return
	}
	pubUser, known := s.pub[user]
	if !known {
		writeError(w, http.StatusInternalServerError, "authenticated user is not in the public user table")
		return
	}
	modulus, err := pubUser.Modulus()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	result, err := s.engine.Submit(r.Context(), user, req.Dst, req.N, req.Memo, privExp, modulus, s.hub, rng)
	if err != nil {
		if _, internal := err.(*core.InternalError); internal {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plural := ""
	if result.Attempts > 1 {
		plural = "es"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"text":  fmt.Sprintf("Added to %d branch%s of blockchain", result.Attempts, plural),
		"block": string(result.Hash),
	})
}

// handleWebSocket serves GET /ws: accepts a peer's upgrade request and
// hands the connection to the gossip hub's read loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	go s.hub.Serve(conn)
}

// handleView serves GET /view: a JSON status summary in place of the
// reference's static HTML viewer page, which is out of scope here.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	head := s.engine.Head()
	writeJSON(w, http.StatusOK, map[string]any{
		"head":    head,
		"balance": s.engine.Balances(),
	})
}

// handleIndex serves GET /: Basic-auth gated, reporting only the
// authenticated identity. The reference's full browser UI is out of
// scope.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<html><body>Logged in as %s</body></html>", user)
}
