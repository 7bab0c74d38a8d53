package in

import (
	"net/http"

	"go.uber.org/zap"

	presencein "worktrack/internal/modules/presence/port/in"
	"worktrack/internal/platform/httpx"
	"worktrack/internal/platform/logging"
)

type sightingRequest struct {
	BeaconID string `json:"beacon_id"`
}

// HTTPHandler accepts raw radio callbacks from an external scanner.
type HTTPHandler struct {
	usecase presencein.Usecase
	log     *zap.Logger
}

func NewHTTPHandler(usecase presencein.Usecase, logger *zap.Logger) HTTPHandler {
	return HTTPHandler{usecase: usecase, log: logging.OrNop(logger).Named("presence-http")}
}

func (h HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/beacon/seen", h.handleSeen)
	mux.HandleFunc("POST /api/beacon/exited", h.handleExited)
}

func (h HTTPHandler) handleSeen(w http.ResponseWriter, r *http.Request) {
	req := sightingRequest{}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if err := h.usecase.BeaconSeen(r.Context(), req.BeaconID); err != nil {
		h.log.Error("beacon sighting failed", zap.Error(err))
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h HTTPHandler) handleExited(w http.ResponseWriter, r *http.Request) {
	if err := h.usecase.RegionExited(r.Context()); err != nil {
		h.log.Error("region exit failed", zap.Error(err))
		httpx.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
