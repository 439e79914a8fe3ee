package exam

import (
	"context"
	"errors"
	"sort"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/shuffle"
)

var ErrEmptyExam = errors.New("exam has no questions")

// PoolLoader is the part of bank.Loader the assembler needs.
type PoolLoader interface {
	LoadPools(ctx context.Context, topics []int) map[int][]bank.Question
}

// Assemble picks one mandatory question from every non-empty topic, then
// fills up to targetSize from the leftovers of all topics. When the leftovers
// cannot cover the remainder the exam keeps only the mandatory questions.
// The result is shuffled so topics are interleaved.
func Assemble(rng shuffle.Source, pools map[int][]bank.Question, targetSize int) ([]bank.Question, error) {
	topics := make([]int, 0, len(pools))
	for t := range pools {
		topics = append(topics, t)
	}
	sort.Ints(topics)

	var selected, reserve []bank.Question
	for _, t := range topics {
		pool := pools[t]
		if len(pool) == 0 {
			continue
		}
		mixed := shuffle.Shuffled(rng, pool)
		selected = append(selected, mixed[0])
		reserve = append(reserve, mixed[1:]...)
	}

	needed := targetSize - len(selected)
	if needed > 0 && len(reserve) >= needed {
		shuffle.Shuffle(rng, reserve)
		selected = append(selected, reserve[:needed]...)
	}

	if len(selected) == 0 {
		return nil, ErrEmptyExam
	}
	shuffle.Shuffle(rng, selected)
	return selected, nil
}

// Build loads the configured topics and assembles an exam from them.
func Build(ctx context.Context, l PoolLoader, cfg Config, rng shuffle.Source) ([]bank.Question, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return Assemble(rng, l.LoadPools(ctx, cfg.Topics()), cfg.TotalQuestions)
}
