package httpserver

import "net/http"

// authenticate implements HTTP Basic authentication against the
// node's own passcode table, grounded on
// original_source/blockchain/bc_agent.py's basicauth. It returns the
// authenticated username, or ok=false if the request should be
// rejected with a 401 and a WWW-Authenticate challenge.
func (s *Server) authenticate(r *http.Request) (user string, ok bool) {
	u, p, hasAuth := r.BasicAuth()
	if !hasAuth {
		return "", false
	}
	want, known := s.priv.Passcodes[u]
	if !known || p != want {
		return "", false
	}
	return u, true
}

func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := s.authenticate(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", `Basic realm="ticketchain"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return user, true
}
