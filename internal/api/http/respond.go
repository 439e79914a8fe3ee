package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/viewer"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var ue *session.UnansweredError
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, viewer.ErrNoDocument):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBadRequest),
		errors.Is(err, session.ErrQuestionRange),
		errors.Is(err, session.ErrOptionRange):
		return http.StatusBadRequest
	case errors.As(err, &ue),
		errors.Is(err, session.ErrNotActive),
		errors.Is(err, session.ErrSubmitted),
		errors.Is(err, session.ErrNotSubmitted),
		errors.Is(err, session.ErrLocked),
		errors.Is(err, session.ErrPassed),
		errors.Is(err, session.ErrNotReached),
		errors.Is(err, session.ErrUnanswered),
		errors.Is(err, session.ErrNotSequential),
		errors.Is(err, session.ErrLastQuestion),
		errors.Is(err, session.ErrNothingToRetry),
		errors.Is(err, session.ErrNotRevealed),
		errors.Is(err, session.ErrNoReference),
		errors.Is(err, viewer.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, bank.ErrNoQuestions), errors.Is(err, exam.ErrEmptyExam):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fail(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

// failWithView reports err alongside the session as it stands, so a client
// can redraw without another round trip.
func failWithView(w http.ResponseWriter, err error, v session.View) {
	body := map[string]any{"error": err.Error(), "view": v}
	var ue *session.UnansweredError
	if errors.As(err, &ue) {
		body["unanswered"] = ue.Count
	}
	writeJSON(w, statusFor(err), body)
}
