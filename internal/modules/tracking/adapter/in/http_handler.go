package in

import (
	"net/http"

	"go.uber.org/zap"

	trackingdto "worktrack/internal/modules/tracking/dto"
	trackingin "worktrack/internal/modules/tracking/port/in"
	"worktrack/internal/platform/httpx"
	"worktrack/internal/platform/logging"
)

type HTTPHandler struct {
	usecase trackingin.Usecase
	log     *zap.Logger
}

func NewHTTPHandler(usecase trackingin.Usecase, logger *zap.Logger) HTTPHandler {
	return HTTPHandler{usecase: usecase, log: logging.OrNop(logger).Named("tracking-http")}
}

func (h HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tracking", h.handleStatus)
	mux.HandleFunc("POST /api/events", h.handleEvent)
	mux.HandleFunc("POST /api/restore", h.handleRestore)
}

func (h HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.usecase.Status(r.Context())
	if err != nil {
		h.fail(w, "status", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}

func (h HTTPHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	input := trackingdto.EventInput{}
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, err)
		return
	}
	state, err := h.usecase.ProcessEvent(r.Context(), input)
	if err != nil {
		h.fail(w, "process event", err, zap.String("event", input.Type))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h HTTPHandler) handleRestore(w http.ResponseWriter, r *http.Request) {
	state, err := h.usecase.RestoreState(r.Context())
	if err != nil {
		h.fail(w, "restore state", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, state)
}

func (h HTTPHandler) fail(w http.ResponseWriter, op string, err error, fields ...zap.Field) {
	if httpx.StatusOf(err) >= http.StatusInternalServerError {
		h.log.Error(op+" failed", append(fields, zap.Error(err))...)
	}
	httpx.WriteError(w, err)
}
