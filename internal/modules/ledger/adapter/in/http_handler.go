package in

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	ledgerdto "worktrack/internal/modules/ledger/dto"
	ledgerin "worktrack/internal/modules/ledger/port/in"
	apperrors "worktrack/internal/platform/errors"
	"worktrack/internal/platform/httpx"
	"worktrack/internal/platform/logging"
)

const defaultListLimit = 20

type HTTPHandler struct {
	usecase ledgerin.Usecase
	loc     *time.Location
	log     *zap.Logger
}

func NewHTTPHandler(usecase ledgerin.Usecase, loc *time.Location, logger *zap.Logger) HTTPHandler {
	if loc == nil {
		loc = time.Local
	}
	return HTTPHandler{usecase: usecase, loc: loc, log: logging.OrNop(logger).Named("ledger-http")}
}

func (h HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", h.handleList)
	mux.HandleFunc("GET /api/sessions/active", h.handleActive)
	mux.HandleFunc("POST /api/notes/export", h.handleExport)
}

// handleList accepts from/to as YYYY-MM-DD (to inclusive) and limit.
func (h HTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	input := ledgerdto.ListSessionsInput{Limit: defaultListLimit}
	q := r.URL.Query()
	var err error
	if input.From, input.To, err = h.parseRange(q.Get("from"), q.Get("to")); err != nil {
		httpx.WriteError(w, err)
		return
	}
	if raw := q.Get("limit"); raw != "" {
		if input.Limit, err = strconv.Atoi(raw); err != nil {
			httpx.WriteError(w, apperrors.ErrInvalidInput)
			return
		}
	}
	sessions, err := h.usecase.ListSessions(r.Context(), input)
	if err != nil {
		h.fail(w, "list sessions", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, sessions)
}

func (h HTTPHandler) handleActive(w http.ResponseWriter, r *http.Request) {
	session, err := h.usecase.ActiveSession(r.Context())
	if err != nil {
		h.fail(w, "active session", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, session)
}

func (h HTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := h.parseRange(q.Get("from"), q.Get("to"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, -1)
	}
	out, err := h.usecase.ExportNotes(r.Context(), ledgerdto.ExportNotesInput{From: from, To: to})
	if err != nil {
		h.fail(w, "export notes", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// parseRange turns inclusive day strings into a half-open [from, to) range.
func (h HTTPHandler) parseRange(rawFrom, rawTo string) (time.Time, time.Time, error) {
	var from, to time.Time
	if rawFrom != "" {
		day, err := time.ParseInLocation("2006-01-02", rawFrom, h.loc)
		if err != nil {
			return from, to, apperrors.ErrInvalidInput
		}
		from = day
	}
	if rawTo != "" {
		day, err := time.ParseInLocation("2006-01-02", rawTo, h.loc)
		if err != nil {
			return from, to, apperrors.ErrInvalidInput
		}
		to = day.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func (h HTTPHandler) fail(w http.ResponseWriter, op string, err error) {
	if httpx.StatusOf(err) >= http.StatusInternalServerError {
		h.log.Error(op+" failed", zap.Error(err))
	}
	httpx.WriteError(w, err)
}
