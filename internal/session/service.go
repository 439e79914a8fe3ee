package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/shuffle"
)

var ErrBadRequest = errors.New("invalid session request")

// Loader is the part of bank.Loader sessions are started from.
type Loader interface {
	exam.PoolLoader
	Load(ctx context.Context, topics []int) ([]bank.Question, error)
}

type StartRequest struct {
	Kind  Kind `json:"kind"`
	Mode  Mode `json:"mode,omitempty"`
	Topic int  `json:"topic,omitempty"`
}

// DefaultTTL matches the lifetime of a session handle.
const DefaultTTL = 8 * time.Hour

// Service starts sessions and applies user actions to stored ones.
type Service struct {
	loader  Loader
	cfg     exam.Config
	store   Store
	NewID   func() string
	NewRand func() shuffle.Source
	TTL     time.Duration // sessions older than this are evicted by Sweep
	Now     func() time.Time
}

func NewService(l Loader, cfg exam.Config, store Store) *Service {
	return &Service{
		loader:  l,
		cfg:     cfg,
		store:   store,
		NewID:   uuid.NewString,
		NewRand: func() shuffle.Source { return shuffle.NewSource(0) },
		TTL:     DefaultTTL,
		Now:     time.Now,
	}
}

func (svc *Service) Config() exam.Config { return svc.cfg }

func (svc *Service) options(req StartRequest) (Options, error) {
	switch req.Kind {
	case KindTopic:
		if req.Topic <= 0 {
			return Options{}, fmt.Errorf("%w: topic is required", ErrBadRequest)
		}
		return Options{Kind: KindTopic, Mode: ModePractice, Layout: LayoutSequential, StrictLinear: true}, nil
	case KindComplete:
		opts := Options{Kind: KindComplete, Mode: ModePractice, Layout: LayoutBatch}
		switch req.Mode {
		case "", ModePractice:
		case ModeExam:
			opts.Mode = ModeExam
			opts.Penalty = svc.cfg.WrongAnswerPenalty
		default:
			return Options{}, fmt.Errorf("%w: unknown mode %q", ErrBadRequest, req.Mode)
		}
		return opts, nil
	case KindExam:
		return Options{Kind: KindExam, Mode: ModeExam, Layout: LayoutBatch, Penalty: svc.cfg.WrongAnswerPenalty}, nil
	default:
		return Options{}, fmt.Errorf("%w: unknown kind %q", ErrBadRequest, req.Kind)
	}
}

// Start loads questions for the request and stores the active session.
// A load that yields nothing returns the failed session's view and an error.
func (svc *Service) Start(ctx context.Context, req StartRequest) (View, error) {
	opts, err := svc.options(req)
	if err != nil {
		return View{}, err
	}
	rng := svc.NewRand()
	s := New(svc.NewID(), opts, rng)
	s.CreatedAt = svc.Now()

	var qs []bank.Question
	switch opts.Kind {
	case KindTopic:
		qs, err = svc.loader.Load(ctx, []int{req.Topic})
		shuffle.Shuffle(rng, qs)
	case KindComplete:
		qs, err = svc.loader.Load(ctx, svc.cfg.Topics())
		shuffle.Shuffle(rng, qs)
	case KindExam:
		qs, err = exam.Build(ctx, svc.loader, svc.cfg, rng)
	}
	if err == nil {
		err = s.Activate(qs)
	}
	if err != nil {
		s.Fail(err)
		log.Printf("session %s: %s start failed: %v", s.ID, opts.Kind, err)
		return s.View(), err
	}

	svc.store.Put(s)
	return s.View(), nil
}

func (svc *Service) View(id string) (View, error) {
	var v View
	err := svc.store.Update(id, func(s *Session) error {
		v = s.View()
		return nil
	})
	return v, err
}

// apply runs fn on the session and returns the resulting view. The view is
// filled in even when fn fails so callers can show the unchanged state.
func (svc *Service) apply(id string, fn func(s *Session) error) (View, error) {
	var v View
	err := svc.store.Update(id, func(s *Session) error {
		err := fn(s)
		v = s.View()
		return err
	})
	return v, err
}

func (svc *Service) Select(id string, q, option int) (View, error) {
	return svc.apply(id, func(s *Session) error { return s.SelectAnswer(q, option) })
}

func (svc *Service) Next(id string) (View, error) {
	return svc.apply(id, func(s *Session) error { return s.Next() })
}

func (svc *Service) Submit(id string, confirm bool) (View, error) {
	return svc.apply(id, func(s *Session) error {
		_, err := s.Submit(confirm)
		return err
	})
}

func (svc *Service) Score(id string) (Summary, error) {
	var sum Summary
	err := svc.store.Update(id, func(s *Session) error {
		if s.Result == nil {
			return ErrNotSubmitted
		}
		sum = Summarize(*s.Result)
		return nil
	})
	return sum, err
}

// Retry replaces a submitted session with one over its incorrect answers.
// The old id stops resolving in the same step.
func (svc *Service) Retry(id string) (View, error) {
	var next *Session
	err := svc.store.Replace(id, func(s *Session) (*Session, error) {
		var err error
		next, err = s.RetryIncorrect(svc.NewID(), svc.NewRand())
		if err != nil {
			return nil, err
		}
		next.CreatedAt = svc.Now()
		return next, nil
	})
	if err != nil {
		return View{}, err
	}
	return next.View(), nil
}

func (svc *Service) Reference(id string, q int) (topic, page int, err error) {
	err = svc.store.Update(id, func(s *Session) error {
		var err error
		topic, page, err = s.Reference(q)
		return err
	})
	return topic, page, err
}

func (svc *Service) Delete(id string) bool { return svc.store.Delete(id) }

// Sweep evicts sessions older than TTL and returns their ids.
func (svc *Service) Sweep() []string {
	if svc.TTL <= 0 {
		return nil
	}
	return svc.store.Expire(svc.Now().Add(-svc.TTL))
}

// RunSweeper calls Sweep every interval until ctx is done. onEvict, when
// set, is called with each evicted id.
func (svc *Service) RunSweeper(ctx context.Context, interval time.Duration, onEvict func(id string)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			gone := svc.Sweep()
			if len(gone) > 0 {
				log.Printf("session: evicted %d expired session(s)", len(gone))
			}
			if onEvict != nil {
				for _, id := range gone {
					onEvict(id)
				}
			}
		}
	}
}

// Topics summarises the configured topics from the current bank contents.
func (svc *Service) Topics(ctx context.Context) []bank.Topic {
	topics := svc.cfg.Topics()
	pools := svc.loader.LoadPools(ctx, topics)
	out := make([]bank.Topic, 0, len(topics))
	for _, t := range topics {
		out = append(out, bank.Topic{ID: t, Questions: len(pools[t])})
	}
	return out
}
