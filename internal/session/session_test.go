package session

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/grading"
	"github.com/mind-engage/mindengage-quiz/internal/shuffle"
)

func questions(n int) []bank.Question {
	qs := make([]bank.Question, n)
	for i := range qs {
		page := i + 1
		qs[i] = bank.Question{
			Prompt:  fmt.Sprintf("q%d", i),
			Options: []string{"a", "b", "c", "d"},
			Correct: i % 4,
			Page:    &page,
			Topic:   i%3 + 1,
		}
	}
	return qs
}

func start(t *testing.T, opts Options, n int) *Session {
	t.Helper()
	s := New("s1", opts, shuffle.NewSource(11))
	if err := s.Activate(questions(n)); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return s
}

func wrongOption(q bank.Question) int { return (q.Correct + 1) % len(q.Options) }

func TestActivate_EmptyFails(t *testing.T) {
	s := New("s", Options{}, shuffle.NewSource(1))
	if err := s.Activate(nil); !errors.Is(err, bank.ErrNoQuestions) {
		t.Fatalf("err = %v", err)
	}
	if s.State != StateFailed || s.Failure == "" {
		t.Fatalf("state = %s failure = %q", s.State, s.Failure)
	}
}

func TestActivate_FixesOptionOrder(t *testing.T) {
	s := start(t, Options{Mode: ModeExam}, 5)
	first := s.View()
	for i := 0; i < 3; i++ {
		again := s.View()
		for qi := range first.Questions {
			for pos := range first.Questions[qi].Options {
				if first.Questions[qi].Options[pos].Index != again.Questions[qi].Options[pos].Index {
					t.Fatalf("option order changed between views")
				}
			}
		}
	}
	for qi, order := range s.Orders {
		if len(order) != len(s.Questions[qi].Options) {
			t.Fatalf("order %d has %d entries", qi, len(order))
		}
	}
	if first.Questions[0].Options[0].Letter != "A" || first.Questions[0].Options[3].Letter != "D" {
		t.Fatalf("letters = %+v", first.Questions[0].Options)
	}
}

func TestPractice_RevealsAndLocks(t *testing.T) {
	s := start(t, Options{Mode: ModePractice, Layout: LayoutBatch}, 3)
	q := s.Questions[1]
	if err := s.SelectAnswer(1, wrongOption(q)); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !s.Revealed(1) || s.Revealed(0) {
		t.Fatalf("practice should reveal only the answered question")
	}
	if err := s.SelectAnswer(1, q.Correct); !errors.Is(err, ErrLocked) {
		t.Fatalf("second select err = %v, want ErrLocked", err)
	}
	if s.Answers[1] != wrongOption(q) {
		t.Fatalf("locked answer was overwritten")
	}

	qv := s.View().Questions[1]
	if qv.Outcome != "incorrect" || qv.Topic != q.Topic || qv.Page == nil {
		t.Fatalf("question view = %+v", qv)
	}
	marks := map[Mark]int{}
	for _, o := range qv.Options {
		marks[o.Mark]++
		if o.Index == q.Correct && o.Mark != MarkCorrect {
			t.Fatalf("correct option not marked: %+v", o)
		}
		if o.Selected && o.Mark != MarkWrong {
			t.Fatalf("wrong pick not marked: %+v", o)
		}
	}
	if marks[MarkCorrect] != 1 || marks[MarkWrong] != 1 {
		t.Fatalf("marks = %v", marks)
	}
	if hidden := s.View().Questions[0]; hidden.Topic != 0 || hidden.Outcome != "" {
		t.Fatalf("unrevealed question leaks its topic/outcome: %+v", hidden)
	}
}

func TestExam_SelectionIsSilentAndOverwrites(t *testing.T) {
	s := start(t, Options{Mode: ModeExam, Layout: LayoutBatch, Penalty: 0.33}, 4)
	if err := s.SelectAnswer(2, 0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.SelectAnswer(2, 3); err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if s.Answers[2] != 3 {
		t.Fatalf("answer = %d, want overwrite to 3", s.Answers[2])
	}
	if s.Revealed(2) {
		t.Fatal("exam mode must not reveal before submit")
	}
	selected := 0
	for _, o := range s.View().Questions[2].Options {
		if o.Selected {
			selected++
			if o.Index != 3 {
				t.Fatalf("wrong option selected: %+v", o)
			}
		}
		if o.Mark != MarkNone {
			t.Fatalf("mark leaked before submit: %+v", o)
		}
	}
	if selected != 1 {
		t.Fatalf("%d options selected, want 1", selected)
	}
}

func TestSelectAnswer_Ranges(t *testing.T) {
	s := start(t, Options{Mode: ModeExam}, 2)
	if err := s.SelectAnswer(5, 0); !errors.Is(err, ErrQuestionRange) {
		t.Fatalf("err = %v", err)
	}
	if err := s.SelectAnswer(0, 4); !errors.Is(err, ErrOptionRange) {
		t.Fatalf("err = %v", err)
	}
	if err := s.SelectAnswer(0, -1); !errors.Is(err, ErrOptionRange) {
		t.Fatalf("err = %v", err)
	}
}

func TestSubmit_RequiresConfirmationForBlanks(t *testing.T) {
	s := start(t, Options{Mode: ModeExam, Penalty: 0.33}, 5)
	_ = s.SelectAnswer(0, s.Questions[0].Correct)
	_ = s.SelectAnswer(1, wrongOption(s.Questions[1]))

	_, err := s.Submit(false)
	var ue *UnansweredError
	if !errors.As(err, &ue) || ue.Count != 3 {
		t.Fatalf("err = %v, want 3 unanswered", err)
	}
	if s.State != StateActive || s.Result != nil {
		t.Fatalf("declined submit changed state to %s", s.State)
	}

	res, err := s.Submit(true)
	if err != nil {
		t.Fatalf("confirmed submit: %v", err)
	}
	if res.Correct != 1 || res.Incorrect != 1 || res.Blank != 3 {
		t.Fatalf("result = %+v", res)
	}
	if s.State != StateSubmitted {
		t.Fatalf("state = %s", s.State)
	}
	for i := range s.Questions {
		if !s.Revealed(i) {
			t.Fatalf("question %d not revealed after submit", i)
		}
	}
	if got := s.View().Questions[4].Outcome; got != "blank" {
		t.Fatalf("blank outcome = %q", got)
	}

	if err := s.SelectAnswer(2, 0); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("select after submit err = %v", err)
	}
	if _, err := s.Submit(true); !errors.Is(err, ErrSubmitted) {
		t.Fatalf("double submit err = %v", err)
	}
}

func TestSubmit_AllAnsweredNeedsNoConfirmation(t *testing.T) {
	s := start(t, Options{Mode: ModeExam}, 2)
	_ = s.SelectAnswer(0, 0)
	_ = s.SelectAnswer(1, 0)
	if _, err := s.Submit(false); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestNext_Sequential(t *testing.T) {
	s := start(t, Options{Mode: ModePractice, Layout: LayoutSequential, StrictLinear: true}, 3)

	if err := s.Next(); !errors.Is(err, ErrUnanswered) {
		t.Fatalf("next without answer err = %v", err)
	}
	if err := s.SelectAnswer(1, 0); !errors.Is(err, ErrNotReached) {
		t.Fatalf("answering ahead err = %v", err)
	}
	_ = s.SelectAnswer(0, s.Questions[0].Correct)
	if err := s.Next(); err != nil || s.Current != 1 {
		t.Fatalf("next: err %v current %d", err, s.Current)
	}
	if err := s.SelectAnswer(0, 1); !errors.Is(err, ErrPassed) && !errors.Is(err, ErrLocked) {
		t.Fatalf("revisit err = %v", err)
	}

	v := s.View()
	if len(v.Questions) != 1 || v.Questions[0].Index != 1 || v.Current == nil || *v.Current != 1 {
		t.Fatalf("sequential view = %+v", v)
	}
	if v.CanAdvance || v.IsLast {
		t.Fatalf("flags wrong: %+v", v)
	}

	_ = s.SelectAnswer(1, wrongOption(s.Questions[1]))
	_ = s.Next()
	if !s.View().IsLast {
		t.Fatal("expected last question")
	}
	_ = s.SelectAnswer(2, s.Questions[2].Correct)
	if err := s.Next(); err != nil {
		t.Fatalf("finishing next: %v", err)
	}
	if s.State != StateSubmitted || s.Result.Correct != 2 || s.Result.Incorrect != 1 {
		t.Fatalf("state %s result %+v", s.State, s.Result)
	}
	if len(s.View().Questions) != 3 {
		t.Fatal("submitted sequential session should list every question")
	}
}

func TestNext_StrictLinearBlocksExamRevisit(t *testing.T) {
	s := start(t, Options{Mode: ModeExam, Layout: LayoutSequential, StrictLinear: true}, 2)
	_ = s.SelectAnswer(0, 0)
	_ = s.Next()
	if err := s.SelectAnswer(0, 1); !errors.Is(err, ErrPassed) {
		t.Fatalf("err = %v, want ErrPassed", err)
	}

	free := start(t, Options{Mode: ModeExam, Layout: LayoutSequential}, 2)
	_ = free.SelectAnswer(0, 0)
	_ = free.Next()
	if err := free.SelectAnswer(0, 1); err != nil {
		t.Fatalf("non-strict revisit: %v", err)
	}
}

func TestNext_ExamLastQuestion(t *testing.T) {
	s := start(t, Options{Mode: ModeExam, Layout: LayoutSequential}, 1)
	_ = s.SelectAnswer(0, 0)
	if err := s.Next(); !errors.Is(err, ErrLastQuestion) {
		t.Fatalf("err = %v", err)
	}
	if s.State != StateActive {
		t.Fatalf("state = %s", s.State)
	}
}

func TestNext_BatchRejected(t *testing.T) {
	s := start(t, Options{Mode: ModeExam, Layout: LayoutBatch}, 2)
	if err := s.Next(); !errors.Is(err, ErrNotSequential) {
		t.Fatalf("err = %v", err)
	}
}

func TestRetryIncorrect(t *testing.T) {
	s := start(t, Options{Kind: KindExam, Mode: ModeExam, Layout: LayoutBatch, Penalty: 0.33}, 15)
	wrong := map[string]bool{}
	for i, q := range s.Questions {
		switch {
		case i < 4:
			_ = s.SelectAnswer(i, wrongOption(q))
			wrong[q.Prompt] = true
		case i < 12:
			_ = s.SelectAnswer(i, q.Correct)
		}
	}
	if _, err := s.RetryIncorrect("s2", shuffle.NewSource(3)); !errors.Is(err, ErrNotSubmitted) {
		t.Fatalf("retry before submit err = %v", err)
	}
	res, _ := s.Submit(true)
	if res.Incorrect != 4 || res.Blank != 3 {
		t.Fatalf("result = %+v", res)
	}

	next, err := s.RetryIncorrect("s2", shuffle.NewSource(3))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if len(next.Questions) != 4 {
		t.Fatalf("retry has %d questions, want 4", len(next.Questions))
	}
	for _, q := range next.Questions {
		if !wrong[q.Prompt] {
			t.Fatalf("retry picked %s which was not answered wrongly", q.Prompt)
		}
	}
	if len(next.Answers) != 0 || next.State != StateActive || next.Options.Kind != KindRetry {
		t.Fatalf("retry session = state %s answers %v kind %s", next.State, next.Answers, next.Options.Kind)
	}
	if next.Options.Mode != ModeExam || next.Options.Penalty != 0.33 {
		t.Fatalf("retry lost its options: %+v", next.Options)
	}
}

func TestRetryIncorrect_NothingWrong(t *testing.T) {
	s := start(t, Options{Mode: ModeExam}, 2)
	_ = s.SelectAnswer(0, s.Questions[0].Correct)
	_, _ = s.Submit(true)
	if _, err := s.RetryIncorrect("s2", shuffle.NewSource(1)); !errors.Is(err, ErrNothingToRetry) {
		t.Fatalf("err = %v", err)
	}
}

func TestReference(t *testing.T) {
	s := start(t, Options{Mode: ModePractice}, 2)
	s.Questions[1].Page = nil

	if _, _, err := s.Reference(0); !errors.Is(err, ErrNotRevealed) {
		t.Fatalf("err = %v", err)
	}
	_ = s.SelectAnswer(0, 0)
	topic, page, err := s.Reference(0)
	if err != nil || topic != s.Questions[0].Topic || page != *s.Questions[0].Page {
		t.Fatalf("reference = %d/%d err %v", topic, page, err)
	}
	_ = s.SelectAnswer(1, 0)
	if _, _, err := s.Reference(1); !errors.Is(err, ErrNoReference) {
		t.Fatalf("err = %v", err)
	}
	if _, _, err := s.Reference(7); !errors.Is(err, ErrQuestionRange) {
		t.Fatalf("err = %v", err)
	}
}

func TestView_ResultSummary(t *testing.T) {
	s := start(t, Options{Mode: ModeExam, Penalty: 0.33}, 10)
	for i, q := range s.Questions {
		_ = s.SelectAnswer(i, q.Correct)
	}
	_, _ = s.Submit(false)
	v := s.View()
	if v.Result == nil || !v.Result.Passed || v.Result.FinalScore != 10 || v.Result.Verdict != grading.VerdictExcellent {
		t.Fatalf("result = %+v", v.Result)
	}
}
