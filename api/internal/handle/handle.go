package handle

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"copy-check/api/internal/copycheck"
)

const defaultMaxBodyBytes = 1 << 20

type Handle struct {
	svc           *copycheck.Service
	log           *zap.Logger
	allowedOrigin string
	maxBodyBytes  int64
	now           func() time.Time
}

type Options struct {
	// AllowedOrigin is echoed in Access-Control-Allow-Origin. Empty means
	// the request's own Origin, or * without one.
	AllowedOrigin string
	MaxBodyBytes  int64
	Logger        *zap.Logger
}

func New(svc *copycheck.Service, opts Options) *Handle {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	return &Handle{
		svc:           svc,
		log:           opts.Logger,
		allowedOrigin: opts.AllowedOrigin,
		maxBodyBytes:  opts.MaxBodyBytes,
		now:           time.Now,
	}
}

// Register mounts every route on mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/copy-check", h.CopyCheck)
	mux.HandleFunc("/api/health", h.Health)
	mux.HandleFunc("/healthz", h.Health)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
