package handle

import "net/http"

type health struct {
	OK bool  `json:"ok"`
	TS int64 `json:"ts"`
}

// Health reports liveness with the server time in Unix milliseconds.
func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, health{OK: true, TS: h.now().UnixMilli()})
}
