// Command quizctl manages question banks: importing topic files into the
// SQL store and previewing assembled exams.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mind-engage/mindengage-quiz/internal/bank"
	"github.com/mind-engage/mindengage-quiz/internal/config"
	"github.com/mind-engage/mindengage-quiz/internal/db"
	"github.com/mind-engage/mindengage-quiz/internal/exam"
	"github.com/mind-engage/mindengage-quiz/internal/shuffle"
	"github.com/mind-engage/mindengage-quiz/internal/storage"
)

const usage = `usage:
  quizctl import -topic N -file bank.json|bank.xlsx [-title T] [-sheet S]
  quizctl topics
  quizctl assemble [-n 15] [-seed 0]`

func main() {
	log.SetFlags(0)
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("quizctl: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	switch args[0] {
	case "import":
		return runImport(ctx, cfg, args[1:], out)
	case "topics":
		return runTopics(ctx, cfg, out)
	case "assemble":
		return runAssemble(ctx, cfg, args[1:], out)
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func openStore(ctx context.Context, cfg config.Config) (*bank.SQLStore, func(), error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return bank.NewSQLStore(dbh), func() { dbh.Close() }, nil
}

func runImport(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	topic := fs.Int("topic", 0, "topic number")
	file := fs.String("file", "", "question bank (.json or .xlsx)")
	title := fs.String("title", "", "topic title")
	sheet := fs.String("sheet", "", "xlsx sheet (default: first)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topic <= 0 || *file == "" {
		return errors.New("import: -topic and -file are required")
	}

	var qs []bank.Question
	var err error
	if *sheet != "" {
		f, ferr := os.Open(*file)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		qs, err = bank.ReadXLSX(f, *sheet)
	} else {
		qs, err = bank.ReadFile(*file)
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", *file, err)
	}
	if *title == "" {
		*title = fmt.Sprintf("Tema %d", *topic)
	}

	store, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	if err := store.PutTopic(ctx, *topic, *title, qs); err != nil {
		return err
	}
	fmt.Fprintf(out, "imported %d questions into topic %d (%s)\n", len(qs), *topic, *title)
	return nil
}

func runTopics(ctx context.Context, cfg config.Config, out io.Writer) error {
	store, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()
	topics, err := store.ListTopics(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOPIC\tTITLE\tQUESTIONS")
	for _, t := range topics {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", t.ID, t.Title, t.Questions)
	}
	return tw.Flush()
}

type assembledQuestion struct {
	Topic int `json:"tema"`
	bank.Question
}

func runAssemble(ctx context.Context, cfg config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("assemble", flag.ContinueOnError)
	n := fs.Int("n", cfg.ExamTotalQuestions, "exam size")
	seed := fs.Int64("seed", 0, "shuffle seed (0: random)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ec := cfg.Exam()
	ec.TotalQuestions = *n
	if err := ec.Validate(); err != nil {
		return err
	}

	var fetcher bank.Fetcher
	switch cfg.BankSource {
	case config.SourceSQL:
		store, closeDB, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDB()
		fetcher = store
	case config.SourceHTTP:
		fetcher = bank.HTTPFetcher{BaseURL: cfg.BankBaseURL, Pattern: cfg.TopicKeyPattern}
	default:
		bs, err := storage.NewFSStore(cfg.DataBasePath)
		if err != nil {
			return err
		}
		fetcher = bank.BlobFetcher{Store: bs, Pattern: cfg.TopicKeyPattern}
	}

	qs, err := exam.Build(ctx, bank.NewLoader(fetcher), ec, shuffle.NewSource(*seed))
	if err != nil {
		return err
	}
	view := make([]assembledQuestion, len(qs))
	for i, q := range qs {
		view[i] = assembledQuestion{Topic: q.Topic, Question: q}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
