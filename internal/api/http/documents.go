package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/viewer"
)

// MountDocuments serves the reference PDFs: GET /{topic}.
func MountDocuments(r chi.Router, l viewer.Lookup) {
	r.Get("/{topic}", func(w http.ResponseWriter, r *http.Request) {
		topic, err := strconv.Atoi(chi.URLParam(r, "topic"))
		if err != nil || topic <= 0 {
			http.Error(w, "bad topic", http.StatusBadRequest)
			return
		}
		rc, err := l.Open(topic)
		if err != nil {
			fail(w, err)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = io.Copy(w, rc)
	})
}

// TopicsHandler lists the configured topics with their question counts.
func TopicsHandler(svc *session.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"topics": svc.Topics(r.Context())})
	}
}
