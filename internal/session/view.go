package session

import (
	"github.com/mind-engage/mindengage-quiz/internal/grading"
)

type Mark string

const (
	MarkNone    Mark = ""
	MarkCorrect Mark = "correct" // the right option
	MarkWrong   Mark = "wrong"   // the user's wrong pick
	MarkMuted   Mark = "muted"   // any other option once revealed
)

type OptionView struct {
	Position int    `json:"position"`
	Letter   string `json:"letter"`
	Text     string `json:"text"`
	Index    int    `json:"index"` // original index, the value to answer with
	Selected bool   `json:"selected"`
	Mark     Mark   `json:"mark,omitempty"`
}

type QuestionView struct {
	Index    int          `json:"index"`
	Prompt   string       `json:"prompt"`
	Options  []OptionView `json:"options"`
	Answered bool         `json:"answered"`
	Revealed bool         `json:"revealed"`
	Outcome  string       `json:"outcome,omitempty"`
	Topic    int          `json:"topic,omitempty"`
	Page     *int         `json:"page,omitempty"`
}

// Summary is a scored result with its presentation hints.
type Summary struct {
	grading.Result
	Passed  bool            `json:"passed"`
	Percent float64         `json:"percent"`
	Verdict grading.Verdict `json:"verdict"`
}

func Summarize(r grading.Result) Summary {
	return Summary{Result: r, Passed: r.Passed(), Percent: r.Percent(), Verdict: r.Verdict()}
}

// View is everything a front end needs to draw the session.
type View struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Mode       Mode           `json:"mode"`
	Layout     Layout         `json:"layout"`
	State      State          `json:"state"`
	Failure    string         `json:"failure,omitempty"`
	Total      int            `json:"total"`
	Answered   int            `json:"answered"`
	Unanswered int            `json:"unanswered"`
	Current    *int           `json:"current,omitempty"`
	Progress   float64        `json:"progress,omitempty"`
	IsLast     bool           `json:"is_last,omitempty"`
	CanAdvance bool           `json:"can_advance,omitempty"`
	Questions  []QuestionView `json:"questions"`
	Result     *Summary       `json:"result,omitempty"`
}

// View renders the session as plain data. Sequential sessions expose only
// the current question until they are submitted.
func (s *Session) View() View {
	v := View{
		ID:         s.ID,
		Kind:       s.Options.Kind,
		Mode:       s.Options.Mode,
		Layout:     s.Options.Layout,
		State:      s.State,
		Failure:    s.Failure,
		Total:      len(s.Questions),
		Answered:   len(s.Answers),
		Unanswered: s.Unanswered(),
		Questions:  []QuestionView{},
	}
	if s.Result != nil {
		sum := Summarize(*s.Result)
		v.Result = &sum
	}
	if len(s.Questions) == 0 {
		return v
	}

	if s.sequential() && s.State == StateActive {
		cur := s.Current
		_, answered := s.Answers[cur]
		v.Current = &cur
		v.Progress = float64(cur+1) / float64(len(s.Questions)) * 100
		v.IsLast = cur == len(s.Questions)-1
		v.CanAdvance = answered
		v.Questions = append(v.Questions, s.questionView(cur))
		return v
	}
	for i := range s.Questions {
		v.Questions = append(v.Questions, s.questionView(i))
	}
	return v
}

func (s *Session) questionView(i int) QuestionView {
	q := s.Questions[i]
	chosen, answered := s.Answers[i]
	revealed := s.Revealed(i)

	qv := QuestionView{
		Index:    i,
		Prompt:   q.Prompt,
		Answered: answered,
		Revealed: revealed,
		Options:  make([]OptionView, 0, len(q.Options)),
	}
	if revealed {
		qv.Outcome = s.Outcome(i).String()
		qv.Topic = q.Topic
		qv.Page = q.Page
	}
	for pos, orig := range s.Orders[i] {
		ov := OptionView{
			Position: pos,
			Letter:   string(rune('A' + pos)),
			Text:     q.Options[orig],
			Index:    orig,
			Selected: answered && chosen == orig,
		}
		if revealed {
			switch {
			case orig == q.Correct:
				ov.Mark = MarkCorrect
			case ov.Selected:
				ov.Mark = MarkWrong
			case s.sequential():
				ov.Mark = MarkMuted
			}
		}
		qv.Options = append(qv.Options, ov)
	}
	return qv
}
