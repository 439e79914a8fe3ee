package exam

import (
	"errors"
	"fmt"
)

// Config describes how a graded exam is put together and scored.
type Config struct {
	TotalQuestions     int     `json:"total_questions"`
	TopicCount         int     `json:"topic_count"`
	WrongAnswerPenalty float64 `json:"wrong_answer_penalty"` // points deducted per wrong answer
}

func DefaultConfig() Config {
	return Config{TotalQuestions: 15, TopicCount: 6, WrongAnswerPenalty: 0.33}
}

func (c Config) Validate() error {
	if c.TotalQuestions <= 0 {
		return errors.New("total_questions must be positive")
	}
	if c.TopicCount <= 0 {
		return errors.New("topic_count must be positive")
	}
	if c.WrongAnswerPenalty < 0 || c.WrongAnswerPenalty > 1 {
		return fmt.Errorf("wrong_answer_penalty %.2f outside [0,1]", c.WrongAnswerPenalty)
	}
	return nil
}

// Topics lists the topic identifiers 1..TopicCount.
func (c Config) Topics() []int {
	out := make([]int, c.TopicCount)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
