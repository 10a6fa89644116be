package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"payoffchart/internal/export"
	"payoffchart/internal/model"
	"payoffchart/internal/payoff"
	"payoffchart/internal/session"
	"payoffchart/internal/termsheet"
)

type variantInfo struct {
	ID       model.Variant           `json:"id"`
	Label    string                  `json:"label"`
	Fields   []model.FieldDescriptor `json:"fields"`
	Defaults model.Params            `json:"defaults"`
}

type textRequest struct {
	Text string `json:"text"`
}

type variantRequest struct {
	Variant model.Variant `json:"variant"`
}

type chartRequest struct {
	Variant model.Variant             `json:"variant"`
	Params  map[model.Key]model.Value `json:"params"`
}

type chartResponse struct {
	model.Geometry
	Warnings []payoff.Violation `json:"warnings,omitempty"`
}

type sessionResponse struct {
	ID    string        `json:"id"`
	State session.State `json:"state"`
}

type sessionParseResponse struct {
	Result termsheet.Result `json:"result"`
	State  session.State    `json:"state"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	entries := s.reg.Entries()
	out := make([]variantInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, variantInfo{
			ID:       e.Variant,
			Label:    e.Label,
			Fields:   e.Schema.Fields,
			Defaults: e.Schema.Defaults.Clone(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := termsheet.Parse(req.Text)
	s.metrics.ObserveParse(err)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// handleChart renders a variant's defaults overlaid with the request's
// params without touching any session.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var req chartRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	store, err := session.NewStore(s.reg, req.Variant)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if err := store.Edit(rawEdits(req.Params)); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeChart(w, r, store.Variant(), store.Params(), store.Geometry())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := decodeJSON(r, &req, true); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, state, err := s.sessions.Create(req.Variant)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: state})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var state session.State
	err := s.sessions.With(id, func(st *session.Store) error {
		state = st.Snapshot()
		return nil
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: state})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(chi.URLParam(r, "id")) {
		s.writeError(w, http.StatusNotFound, session.ErrSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSwitchVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutateSession(w, r, func(st *session.Store) error {
		return st.Switch(req.Variant)
	})
}

func (s *Server) handleEditParams(w http.ResponseWriter, r *http.Request) {
	var edits map[model.Key]model.Value
	if err := decodeJSON(r, &edits, false); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mutateSession(w, r, func(st *session.Store) error {
		return st.Edit(rawEdits(edits))
	})
}

func (s *Server) handleSessionParse(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(r, &req, false); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	var resp sessionParseResponse
	err := s.sessions.With(id, func(st *session.Store) error {
		res, err := st.ParseAndApply(req.Text)
		s.metrics.ObserveParse(err)
		if err != nil {
			return err
		}
		resp = sessionParseResponse{Result: res, State: st.Snapshot()}
		return nil
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionChart(w http.ResponseWriter, r *http.Request) {
	var (
		v model.Variant
		p model.Params
		g model.Geometry
	)
	err := s.sessions.With(chi.URLParam(r, "id"), func(st *session.Store) error {
		v, p, g = st.Variant(), st.Params(), st.Geometry()
		return nil
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeChart(w, r, v, p, g)
}

// mutateSession applies fn to the addressed session and answers with the new state.
func (s *Server) mutateSession(w http.ResponseWriter, r *http.Request, fn func(*session.Store) error) {
	id := chi.URLParam(r, "id")
	var state session.State
	err := s.sessions.With(id, func(st *session.Store) error {
		if err := fn(st); err != nil {
			return err
		}
		state = st.Snapshot()
		return nil
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: state})
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, v model.Variant, p model.Params, g model.Geometry) {
	resp := chartResponse{Geometry: g}
	if s.strictFor(r) {
		resp.Warnings = payoff.Check(v, p)
	}

	format := export.FromAccept(r.Header.Get("Accept"))
	var buf bytes.Buffer
	if err := export.Encode(&buf, format, resp); err != nil {
		s.log.Error().Err(err).Str("variant", string(v)).Msg("Failed to encode chart")
		s.writeError(w, http.StatusInternalServerError, "encode chart: "+err.Error())
		return
	}
	s.metrics.ObserveChart(string(v))
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Error().Err(err).Msg("Failed to write chart")
	}
}

func (s *Server) strictFor(r *http.Request) bool {
	if q := r.URL.Query().Get("strict"); q != "" {
		if b, err := strconv.ParseBool(q); err == nil {
			return b
		}
	}
	return s.strict
}

// writeFailure maps domain errors to status codes.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	var (
		parseErr *termsheet.ParseError
		fieldErr *session.FieldError
	)
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrUnknownVariant),
		errors.Is(err, session.ErrUnknownField),
		errors.As(err, &parseErr),
		errors.As(err, &fieldErr):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("Request failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if allowEmpty && errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func rawEdits(values map[model.Key]model.Value) map[model.Key]string {
	out := make(map[model.Key]string, len(values))
	for k, v := range values {
		out[k] = v.String()
	}
	return out
}
