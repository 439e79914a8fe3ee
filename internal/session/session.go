package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/shuffle"
)

type Mode string

const (
	ModePractice Mode = "practice" // feedback on every selection
	ModeExam     Mode = "exam"     // feedback withheld until submit
)

type Layout string

const (
	LayoutSequential Layout = "sequential" // one question at a time
	LayoutBatch      Layout = "batch"      // every question on one page
)

type State string

const (
	StateLoading   State = "loading"
	StateActive    State = "active"
	StateSubmitted State = "submitted"
	StateFailed    State = "failed"
)

type Kind string

const (
	KindTopic    Kind = "topic"    // one topic, sequential practice
	KindComplete Kind = "complete" // all topics on one page
	KindExam     Kind = "exam"     // assembled exam with penalty
	KindRetry    Kind = "retry"    // incorrect answers of a submitted session
)

var (
	ErrNotActive      = errors.New("session is not active")
	ErrSubmitted      = errors.New("session already submitted")
	ErrNotSubmitted   = errors.New("session has not been submitted")
	ErrQuestionRange  = errors.New("question index out of range")
	ErrOptionRange    = errors.New("option index out of range")
	ErrLocked         = errors.New("question already answered")
	ErrPassed         = errors.New("question already passed")
	ErrNotReached     = errors.New("question not reached yet")
	ErrUnanswered     = errors.New("current question has no answer")
	ErrNotSequential  = errors.New("session does not navigate sequentially")
	ErrLastQuestion   = errors.New("last question reached, submit to finish")
	ErrNothingToRetry = errors.New("no incorrect answers to retry")
	ErrNotRevealed    = errors.New("answer not revealed yet")
	ErrNoReference    = errors.New("question has no reference page")
)

// UnansweredError is returned by Submit when questions are still blank and
// the caller has not confirmed.
type UnansweredError struct{ Count int }

func (e *UnansweredError) Error() string {
	return fmt.Sprintf("%d question(s) unanswered, confirm to submit", e.Count)
}

type Options struct {
	Kind         Kind
	Mode         Mode
	Layout       Layout
	StrictLinear bool    // sequential: answered questions cannot be revisited
	Penalty      float64 // deducted per wrong answer on submit
}

// Session owns the question list and the answers given to it.
type Session struct {
	ID        string
	Options   Options
	State     State
	Failure   string
	Questions []bank.Question
	Orders    [][]int     // per question: display position -> original option index
	Answers   map[int]int // question index -> original option index
	Current   int
	Result    *grading.Result
	CreatedAt time.Time

	revealed []bool
	rng      shuffle.Source
}

func New(id string, opts Options, rng shuffle.Source) *Session {
	if opts.Layout == "" {
		opts.Layout = LayoutBatch
	}
	if opts.Mode == "" {
		opts.Mode = ModePractice
	}
	return &Session{
		ID:        id,
		Options:   opts,
		State:     StateLoading,
		Answers:   map[int]int{},
		CreatedAt: time.Now(),
		rng:       rng,
	}
}

// Activate installs the questions in the given order and fixes the option
// order of each one for the lifetime of the session.
func (s *Session) Activate(questions []bank.Question) error {
	if s.State != StateLoading {
		return fmt.Errorf("activate: session is %s", s.State)
	}
	if len(questions) == 0 {
		s.Fail(bank.ErrNoQuestions)
		return bank.ErrNoQuestions
	}
	s.Questions = questions
	s.Orders = make([][]int, len(questions))
	for i, q := range questions {
		s.Orders[i] = shuffle.Order(s.rng, len(q.Options))
	}
	s.revealed = make([]bool, len(questions))
	s.Answers = map[int]int{}
	s.Current = 0
	s.State = StateActive
	return nil
}

func (s *Session) Fail(err error) {
	s.State = StateFailed
	if err != nil {
		s.Failure = err.Error()
	}
}

func (s *Session) active() error {
	switch s.State {
	case StateActive:
		return nil
	case StateSubmitted:
		return ErrSubmitted
	default:
		return ErrNotActive
	}
}

func (s *Session) sequential() bool { return s.Options.Layout == LayoutSequential }

// SelectAnswer records option (an original option index) for question q.
// In practice mode the question is revealed and locked right away.
func (s *Session) SelectAnswer(q, option int) error {
	if err := s.active(); err != nil {
		return err
	}
	if q < 0 || q >= len(s.Questions) {
		return ErrQuestionRange
	}
	if option < 0 || option >= len(s.Questions[q].Options) {
		return ErrOptionRange
	}
	if s.Options.Mode == ModePractice && s.revealed[q] {
		return ErrLocked
	}
	if s.sequential() {
		if q > s.Current {
			return ErrNotReached
		}
		if s.Options.StrictLinear && q < s.Current {
			return ErrPassed
		}
	}
	s.Answers[q] = option
	if s.Options.Mode == ModePractice {
		s.revealed[q] = true
	}
	return nil
}

// Next moves a sequential session forward once the current question has an
// answer. On the last question a practice session is submitted.
func (s *Session) Next() error {
	if err := s.active(); err != nil {
		return err
	}
	if !s.sequential() {
		return ErrNotSequential
	}
	if _, ok := s.Answers[s.Current]; !ok {
		return ErrUnanswered
	}
	if s.Current < len(s.Questions)-1 {
		s.Current++
		return nil
	}
	if s.Options.Mode == ModeExam {
		return ErrLastQuestion
	}
	_, err := s.Submit(true)
	return err
}

// Unanswered counts questions without a recorded answer.
func (s *Session) Unanswered() int { return len(s.Questions) - len(s.Answers) }

// Submit scores the session and reveals every question. Blank questions
// need confirm; without it the session stays active.
func (s *Session) Submit(confirm bool) (grading.Result, error) {
	if err := s.active(); err != nil {
		return grading.Result{}, err
	}
	if n := s.Unanswered(); n > 0 && !confirm {
		return grading.Result{}, &UnansweredError{Count: n}
	}
	res := grading.Score(s.Questions, s.Answers, s.Options.Penalty)
	s.Result = &res
	for i := range s.revealed {
		s.revealed[i] = true
	}
	s.State = StateSubmitted
	return res, nil
}

// Outcome judges question q against the recorded answer.
func (s *Session) Outcome(q int) grading.Outcome {
	a, ok := s.Answers[q]
	return grading.Judge(s.Questions[q], a, ok)
}

// Revealed reports whether the correct answer of q may be shown.
func (s *Session) Revealed(q int) bool {
	if q < 0 || q >= len(s.revealed) {
		return false
	}
	return s.State == StateSubmitted || s.revealed[q]
}

// RetryIncorrect starts a fresh session over the questions answered wrongly.
// Blank questions are not carried over.
func (s *Session) RetryIncorrect(id string, rng shuffle.Source) (*Session, error) {
	if s.State != StateSubmitted {
		return nil, ErrNotSubmitted
	}
	var wrong []bank.Question
	for i, q := range s.Questions {
		if s.Outcome(i) == grading.Incorrect {
			wrong = append(wrong, q)
		}
	}
	if len(wrong) == 0 {
		return nil, ErrNothingToRetry
	}
	shuffle.Shuffle(rng, wrong)

	opts := s.Options
	opts.Kind = KindRetry
	next := New(id, opts, rng)
	if err := next.Activate(wrong); err != nil {
		return nil, err
	}
	return next, nil
}

// Reference returns the topic document and page backing question q.
// It is only available once the answer is revealed.
func (s *Session) Reference(q int) (topic, page int, err error) {
	if q < 0 || q >= len(s.Questions) {
		return 0, 0, ErrQuestionRange
	}
	if !s.Revealed(q) {
		return 0, 0, ErrNotRevealed
	}
	qu := s.Questions[q]
	if !qu.HasReference() {
		return 0, 0, ErrNoReference
	}
	return qu.Topic, *qu.Page, nil
}
