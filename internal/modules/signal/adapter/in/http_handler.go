package in

import (
	"net/http"

	"go.uber.org/zap"

	signalin "worktrack/internal/modules/signal/port/in"
	"worktrack/internal/platform/httpx"
	"worktrack/internal/platform/logging"
)

type HTTPHandler struct {
	usecase signalin.Usecase
	log     *zap.Logger
}

func NewHTTPHandler(usecase signalin.Usecase, logger *zap.Logger) HTTPHandler {
	return HTTPHandler{usecase: usecase, log: logging.OrNop(logger).Named("signals-http")}
}

func (h HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/signals", h.handleList)
	mux.HandleFunc("GET /api/signals/doctor", h.handleDoctor)
}

func (h HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sources, err := h.usecase.List(r.Context())
	if err != nil {
		h.log.Error("list signal sources", zap.Error(err))
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sources)
}

func (h HTTPHandler) handleDoctor(w http.ResponseWriter, r *http.Request) {
	results, err := h.usecase.Doctor(r.Context())
	if err != nil {
		h.log.Error("signal doctor", zap.Error(err))
		httpx.WriteError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, results)
}
