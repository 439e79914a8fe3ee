package bank

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

// Fetcher retrieves the raw questions of one topic.
type Fetcher interface {
	FetchTopic(ctx context.Context, topic int) ([]Question, error)
}

// DefaultFetchLimit bounds how many topics are fetched at once.
const DefaultFetchLimit = 4

type Loader struct {
	fetcher Fetcher
	Limit   int // concurrent fetches; <= 0 means unbounded
}

func NewLoader(f Fetcher) *Loader { return &Loader{fetcher: f, Limit: DefaultFetchLimit} }

// LoadPools fetches every topic concurrently. A topic that fails to load
// contributes an empty pool; the other fetches are left to finish.
func (l *Loader) LoadPools(ctx context.Context, topics []int) map[int][]Question {
	results := make([][]Question, len(topics))
	var g errgroup.Group
	if l.Limit > 0 {
		g.SetLimit(l.Limit)
	}
	for i, topic := range topics {
		g.Go(func() error {
			qs, err := l.fetcher.FetchTopic(ctx, topic)
			if err != nil {
				// Logged, not returned: a failed topic must not cancel or
				// hide its siblings.
				log.Printf("bank: topic %d unavailable: %v", topic, err)
				return nil
			}
			results[i] = stamp(topic, qs)
			return nil
		})
	}
	g.Wait()

	pools := make(map[int][]Question, len(topics))
	for i, topic := range topics {
		pools[topic] = results[i]
	}
	return pools
}

// Load returns the questions of all topics in topic order.
func (l *Loader) Load(ctx context.Context, topics []int) ([]Question, error) {
	pools := l.LoadPools(ctx, topics)
	var all []Question
	for _, topic := range topics {
		all = append(all, pools[topic]...)
	}
	if len(all) == 0 {
		return nil, ErrNoQuestions
	}
	return all, nil
}

func stamp(topic int, qs []Question) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			log.Printf("bank: topic %d: skipping %v", topic, err)
			continue
		}
		q.Topic = topic
		out = append(out, q)
	}
	return out
}
