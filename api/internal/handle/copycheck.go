package handle

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"copy-check/api/internal/copycheck"
)

type usage struct {
	OK  bool   `json:"ok"`
	Use string `json:"use"`
}

// CopyCheck serves POST (the check itself), GET (a usage hint) and OPTIONS
// (CORS preflight) on /api/copy-check.
func (h *Handle) CopyCheck(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet:
		writeJSON(w, http.StatusOK, usage{OK: true, Use: "POST /api/copy-check"})
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS, GET")
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
		return
	}

	start := h.now()
	reqID := uuid.NewString()
	identity := ClientIdentity(r)
	w.Header().Set("X-Request-ID", reqID)

	log := h.log.With(zap.String("request_id", reqID), zap.String("identity", identity))

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			log.Info("request body too large", zap.Int64("limit", tooBig.Limit))
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}

	res, err := h.svc.Check(r.Context(), identity, body)
	if err != nil {
		var verr *copycheck.ValidationError
		switch {
		case errors.Is(err, copycheck.ErrRateLimited):
			log.Info("rate limited")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Rate limit exceeded"})
		case errors.As(err, &verr):
			log.Info("invalid request", zap.String("reason", verr.Reason))
			writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Reason})
		default:
			log.Error("copy check failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		}
		return
	}

	log.Info("copy check",
		zap.Int("status", res.Status),
		zap.String("path", res.Path),
		zap.String("outcome", res.Outcome.Kind.String()),
		zap.Int("attempts", res.Outcome.Attempts),
		zap.Int("flags", len(res.Output.Flags)),
		zap.Duration("latency", h.now().Sub(start)))
	writeJSON(w, res.Status, res.Output)
}
