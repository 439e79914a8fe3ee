package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mind-engage/mindengage-quiz/internal/exam"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// BankSource selects where topic question files are read from.
type BankSource string

const (
	SourceFS   BankSource = "fs"
	SourceHTTP BankSource = "http"
	SourceSQL  BankSource = "sql"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	BankSource         BankSource
	DataBasePath       string // blob root holding alumnos/ and pdfs/
	BankBaseURL        string // for the http source
	TopicKeyPattern    string
	DocumentKeyPattern string

	DBDriver string
	DBDSN    string

	HandleSecret string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	ExamTotalQuestions int
	ExamTopicCount     int
	ExamWrongPenalty   float64

	EnableViewer bool
	RenderDPI    int
}

// Load reads a .env file when one exists and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("config: .env ignored: %v", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	mode := Mode(envOr("MODE", string(ModeOffline)))
	def := exam.DefaultConfig()
	c := Config{
		Mode:               mode,
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		BankSource:         BankSource(envOr("BANK_SOURCE", string(SourceFS))),
		DataBasePath:       envOr("DATA_BASE_PATH", "./data"),
		BankBaseURL:        envOr("BANK_BASE_URL", ""),
		TopicKeyPattern:    envOr("TOPIC_KEY_PATTERN", "alumnos/tema%d.json"),
		DocumentKeyPattern: envOr("DOCUMENT_KEY_PATTERN", "pdfs/Tema%d.pdf"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		HandleSecret:       envOr("HANDLE_SECRET", "dev-secret-change-me"),
		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://quiz.mindengage.ai"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
		EnableViewer:       envBool("ENABLE_VIEWER", true),
	}

	var err error
	if c.ExamTotalQuestions, err = envInt("EXAM_TOTAL_QUESTIONS", def.TotalQuestions); err != nil {
		return c, err
	}
	if c.ExamTopicCount, err = envInt("EXAM_TOPIC_COUNT", def.TopicCount); err != nil {
		return c, err
	}
	if c.ExamWrongPenalty, err = envFloat("EXAM_WRONG_PENALTY", def.WrongAnswerPenalty); err != nil {
		return c, err
	}
	if c.RenderDPI, err = envInt("RENDER_DPI", 110); err != nil {
		return c, err
	}

	if c.Mode == ModeOnline && os.Getenv("HANDLE_SECRET") == "" {
		return c, errors.New("config: HANDLE_SECRET is required in online mode")
	}

	switch c.BankSource {
	case SourceFS, SourceSQL:
	case SourceHTTP:
		if c.BankBaseURL == "" {
			return c, errors.New("config: BANK_BASE_URL is required for the http bank source")
		}
	default:
		return c, fmt.Errorf("config: unknown BANK_SOURCE %q", c.BankSource)
	}
	if err := c.Exam().Validate(); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func (c Config) Exam() exam.Config {
	return exam.Config{
		TotalQuestions:     c.ExamTotalQuestions,
		TopicCount:         c.ExamTopicCount,
		WrongAnswerPenalty: c.ExamWrongPenalty,
	}
}

func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return n, nil
}
func envFloat(k string, def float64) (float64, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", k, err)
	}
	return f, nil
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
