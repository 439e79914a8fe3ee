package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/mind-engage/mindengage-quiz/internal/api/http"
	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/handle"
	"github.com/mind-engage/mindengage-quiz/internal/session"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
	"github.com/mind-engage/mindengage-quiz/internal/viewer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bs, err := storage.NewFSStore(cfg.DataBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	fetcher, err := newFetcher(cfg, bs)
	if err != nil {
		log.Fatalf("bank source: %v", err)
	}

	svc := session.NewService(bank.NewLoader(fetcher), cfg.Exam(), session.NewInMemoryStore())
	lookup := viewer.Lookup{Store: bs, Pattern: cfg.DocumentKeyPattern, BaseURL: "/documents"}
	sessions := &api.Sessions{
		Service: svc,
		Handles: handle.NewService(cfg.HandleSecret, svc.TTL),
		Lookup:  lookup,
	}
	var onEvict func(id string)
	if cfg.EnableViewer {
		sessions.Viewers = viewer.NewRegistry(lookup, viewer.NewPopplerEngine(cfg.RenderDPI))
		onEvict = sessions.Viewers.Drop
	}
	// sessions outlive their handles by at most one sweep interval
	go svc.RunSweeper(context.Background(), time.Minute, onEvict)
	r := api.NewRouter(sessions, cfg.CORSOrigins())

	s := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("listening on %s (mode=%s, bank=%s, exam=%d/%d)",
		cfg.HTTPAddr, cfg.Mode, cfg.BankSource, cfg.ExamTotalQuestions, cfg.ExamTopicCount)
	log.Fatal(s.ListenAndServe())
}

func newFetcher(cfg config.Config, bs storage.BlobStore) (bank.Fetcher, error) {
	switch cfg.BankSource {
	case config.SourceHTTP:
		return bank.HTTPFetcher{
			Client:  &http.Client{Timeout: 15 * time.Second},
			BaseURL: cfg.BankBaseURL,
			Pattern: cfg.TopicKeyPattern,
		}, nil
	case config.SourceSQL:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		return bank.NewSQLStore(dbh), nil
	default:
		return bank.BlobFetcher{Store: bs, Pattern: cfg.TopicKeyPattern}, nil
	}
}
