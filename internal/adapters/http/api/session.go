package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/psychometrician/internal/app"
	"github.com/okian/psychometrician/internal/domain/adaptive"
	"github.com/okian/psychometrician/internal/domain/model"
)

// SessionHandler serves the questionnaire session endpoints.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// responseValue accepts a Likert answer as a JSON string or number.
type responseValue string

func (v *responseValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = responseValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("response must be a string or a number")
	}
	*v = responseValue(n.String())
	return nil
}

// respondRequest mirrors the OpenAPI schema for POST /session/responses.
type respondRequest struct {
	TicketID string        `json:"ticket_id"`
	Response responseValue `json:"response"`
}

func (r respondRequest) validate() error {
	switch {
	case strings.TrimSpace(r.TicketID) == "":
		return errors.New("missing ticket_id")
	case strings.TrimSpace(string(r.Response)) == "":
		return errors.New("missing response")
	}
	return nil
}

// nextResponse is the body of GET /session/next.
type nextResponse struct {
	Complete  bool                `json:"complete"`
	Selection *adaptive.Selection `json:"selection,omitempty"`
	Progress  service.Progress    `json:"progress"`
}

// HandleSession handles POST /session (start or restart) and GET /session
// (progress).
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		p, err := h.deps.StartSession(r.Context())
		if err != nil {
			writeError(w, NewKind("api.start_session", err))
			return
		}
		writeJSON(w, http.StatusCreated, p)
	case http.MethodGet:
		p, err := h.deps.Session(r.Context())
		if err != nil {
			writeError(w, NewKind("api.get_session", err))
			return
		}
		writeJSON(w, http.StatusOK, p)
	default:
		writeError(w, NewKind("api.session", ErrMethodNotAllowed))
	}
}

// HandleNext handles GET /session/next. An exhausted bank completes the
// session and is reported with complete set and no selection.
func (h *SessionHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	const op = "api.next_item"
	if r.Method != http.MethodGet {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	sel, err := h.deps.Next(r.Context())
	if err != nil && !errors.Is(err, adaptive.ErrBankExhausted) {
		writeError(w, NewKind(op, err))
		return
	}

	p, perr := h.deps.Session(r.Context())
	if perr != nil {
		writeError(w, NewKind(op, perr))
		return
	}

	resp := nextResponse{Complete: err != nil, Progress: p}
	if err == nil {
		resp.Selection = &sel
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleRespond handles POST /session/responses.
func (h *SessionHandler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	const op = "api.respond"
	if r.Method != http.MethodPost {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	var req respondRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.Respond(r.Context(), req.TicketID, model.Response(req.Response))
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleReport handles GET /session/report.
func (h *SessionHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.report"
	if r.Method != http.MethodGet {
		writeError(w, NewKind(op, ErrMethodNotAllowed))
		return
	}

	res, err := h.deps.Report(r.Context())
	if err != nil {
		writeError(w, NewKind(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
