package http

import "net/http"

// ReadinessPing answers the client latency probe. It writes no body so the
// measured round trip is dominated by the network.
func ReadinessPing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
