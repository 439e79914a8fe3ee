package bank

import (
	"errors"
	"fmt"
)

var (
	ErrNoQuestions   = errors.New("no questions available")
	ErrMalformedBank = errors.New("malformed question bank")
	ErrTopicNotFound = errors.New("topic not found")
)

// Question is one multiple-choice item as stored in a topic file.
// Topic is stamped by the loader and never read from the file.
type Question struct {
	Prompt  string   `json:"pregunta"`
	Options []string `json:"opciones"`
	Correct int      `json:"respuesta_correcta"`
	Page    *int     `json:"pagina,omitempty"`

	Topic int `json:"-"`
}

func (q Question) Validate() error {
	if len(q.Options) < 2 {
		return fmt.Errorf("question %q: needs at least 2 options, has %d", q.Prompt, len(q.Options))
	}
	if q.Correct < 0 || q.Correct >= len(q.Options) {
		return fmt.Errorf("question %q: respuesta_correcta %d out of range [0,%d)", q.Prompt, q.Correct, len(q.Options))
	}
	if q.Page != nil && *q.Page < 1 {
		return fmt.Errorf("question %q: pagina must be >= 1", q.Prompt)
	}
	return nil
}

// HasReference reports whether the question points into its topic's document.
func (q Question) HasReference() bool { return q.Page != nil }

// Topic summarises one bank.
type Topic struct {
	ID        int    `json:"id"`
	Title     string `json:"title,omitempty"`
	Questions int    `json:"questions"`
}
