package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/handle"
	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/viewer"
)

// Sessions serves the quiz player. viewers may be nil when page rendering
// is disabled; references then only carry a document link.
type Sessions struct {
	Service *session.Service
	Handles *handle.Service
	Lookup  viewer.Lookup
	Viewers *viewer.Registry
}

type startResponse struct {
	SessionID string       `json:"session_id"`
	Handle    string       `json:"handle"`
	View      session.View `json:"view"`
}

// Mount registers the routes below /sessions.
func (h *Sessions) Mount(r chi.Router) {
	r.Post("/", h.start)
	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.Handles.Require("id"))
		r.Get("/", h.get)
		r.Delete("/", h.delete)
		r.Put("/answers/{q}", h.answer)
		r.Post("/next", h.next)
		r.Post("/submit", h.submit)
		r.Post("/retry", h.retry)
		r.Get("/score", h.score)
		r.Post("/reference/{q}", h.reference)
		if h.Viewers != nil {
			r.Get("/viewer", h.viewerState)
			r.Post("/viewer/next", h.viewerTurn(true))
			r.Post("/viewer/prev", h.viewerTurn(false))
			r.Get("/viewer/frame", h.viewerFrame)
			r.Delete("/viewer", h.viewerClose)
		}
	})
}

func (h *Sessions) issue(w http.ResponseWriter, status int, v session.View) {
	tok, err := h.Handles.Issue(v.ID)
	if err != nil {
		http.Error(w, "issue handle", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, startResponse{SessionID: v.ID, Handle: tok, View: v})
}

func (h *Sessions) start(w http.ResponseWriter, r *http.Request) {
	var req session.StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	v, err := h.Service.Start(r.Context(), req)
	if err != nil {
		if v.State == session.StateFailed {
			failWithView(w, err, v)
			return
		}
		fail(w, err)
		return
	}
	h.issue(w, http.StatusCreated, v)
}

func (h *Sessions) get(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.View(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Sessions) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.Viewers != nil {
		h.Viewers.Drop(id)
	}
	if !h.Service.Delete(id) {
		fail(w, session.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reply writes the view after an action, including the unchanged view when
// the action was refused.
func reply(w http.ResponseWriter, v session.View, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		fail(w, err)
	case err != nil:
		failWithView(w, err, v)
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func questionParam(r *http.Request) (int, bool) {
	q, err := strconv.Atoi(chi.URLParam(r, "q"))
	return q, err == nil
}

func (h *Sessions) answer(w http.ResponseWriter, r *http.Request) {
	q, ok := questionParam(r)
	if !ok {
		http.Error(w, "bad question index", http.StatusBadRequest)
		return
	}
	var req struct {
		Option *int `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Option == nil {
		http.Error(w, "option required", http.StatusBadRequest)
		return
	}
	v, err := h.Service.Select(chi.URLParam(r, "id"), q, *req.Option)
	reply(w, v, err)
}

func (h *Sessions) next(w http.ResponseWriter, r *http.Request) {
	v, err := h.Service.Next(chi.URLParam(r, "id"))
	reply(w, v, err)
}

func (h *Sessions) submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	v, err := h.Service.Submit(chi.URLParam(r, "id"), req.Confirm)
	reply(w, v, err)
}

// retry answers with a new session id and handle; the old ones stop working.
func (h *Sessions) retry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := h.Service.Retry(id)
	if err != nil {
		fail(w, err)
		return
	}
	if h.Viewers != nil {
		h.Viewers.Drop(id)
	}
	h.issue(w, http.StatusCreated, v)
}

func (h *Sessions) score(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Service.Score(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Sessions) reference(w http.ResponseWriter, r *http.Request) {
	q, ok := questionParam(r)
	if !ok {
		http.Error(w, "bad question index", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	topic, page, err := h.Service.Reference(id, q)
	if err != nil {
		fail(w, err)
		return
	}
	url, err := h.Lookup.URL(topic, page)
	if err != nil {
		fail(w, err)
		return
	}
	body := map[string]any{"topic": topic, "page": page, "url": url}
	if h.Viewers != nil {
		v, _ := h.Viewers.Get(id, true)
		body["viewer"] = v.Open(r.Context(), topic, page)
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Sessions) viewerState(w http.ResponseWriter, r *http.Request) {
	v, ok := h.Viewers.Get(chi.URLParam(r, "id"), false)
	if !ok {
		writeJSON(w, http.StatusOK, viewer.Status{State: viewer.StateClosed})
		return
	}
	writeJSON(w, http.StatusOK, v.State())
}

func (h *Sessions) viewerTurn(forward bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := h.Viewers.Get(chi.URLParam(r, "id"), false)
		if !ok {
			fail(w, viewer.ErrClosed)
			return
		}
		turn := v.Prev
		if forward {
			turn = v.Next
		}
		st, err := turn()
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func (h *Sessions) viewerFrame(w http.ResponseWriter, r *http.Request) {
	v, ok := h.Viewers.Get(chi.URLParam(r, "id"), false)
	if !ok {
		fail(w, viewer.ErrClosed)
		return
	}
	f, ok := v.Frame()
	if !ok {
		http.Error(w, "no frame rendered yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Page", strconv.Itoa(f.Page))
	_, _ = w.Write(f.Image)
}

func (h *Sessions) viewerClose(w http.ResponseWriter, r *http.Request) {
	h.Viewers.Drop(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
