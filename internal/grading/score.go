package grading

import (
	"math"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
)

const (
	// Scale is the top of the final score range.
	Scale = 10.0
	// PassMark is the presentation threshold on the 0..Scale range.
	PassMark = 5.0
)

// Result is the outcome of scoring a submitted set of answers.
type Result struct {
	Correct    int     `json:"correct"`
	Incorrect  int     `json:"incorrect"`
	Blank      int     `json:"blank"`
	Total      int     `json:"total"`
	Penalty    float64 `json:"penalty"`
	RawPoints  float64 `json:"raw_points"`
	FinalScore float64 `json:"final_score"`
}

// Outcome classifies a single question after submission.
type Outcome int

const (
	Blank Outcome = iota
	Correct
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "blank"
	}
}

// Judge compares a stored answer (original option index) with the key.
func Judge(q bank.Question, answer int, answered bool) Outcome {
	switch {
	case !answered:
		return Blank
	case answer == q.Correct:
		return Correct
	default:
		return Incorrect
	}
}

// Score counts answers against questions. Unanswered questions are blank
// and carry no penalty; raw points never drop below zero.
func Score(questions []bank.Question, answers map[int]int, penalty float64) Result {
	res := Result{Total: len(questions), Penalty: penalty}
	for i, q := range questions {
		a, ok := answers[i]
		switch Judge(q, a, ok) {
		case Correct:
			res.Correct++
		case Blank:
			res.Blank++
		}
	}
	res.Incorrect = res.Total - res.Correct - res.Blank
	res.RawPoints = math.Max(0, float64(res.Correct)-float64(res.Incorrect)*penalty)
	if res.Total > 0 {
		res.FinalScore = res.RawPoints / float64(res.Total) * Scale
	}
	return res
}

func (r Result) Passed() bool { return r.FinalScore >= PassMark }

// Percent is the share of correct answers, 0..100.
func (r Result) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

type Verdict string

const (
	VerdictExcellent      Verdict = "excellent"
	VerdictImproving      Verdict = "improving"
	VerdictKeepPractising Verdict = "keep_practising"
)

// Verdict buckets a practice run by its percentage of correct answers.
func (r Result) Verdict() Verdict {
	switch p := r.Percent(); {
	case p >= 80:
		return VerdictExcellent
	case p >= 50:
		return VerdictImproving
	default:
		return VerdictKeepPractising
	}
}
