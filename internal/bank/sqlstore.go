package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps imported question banks in sqlite or postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// PutTopic replaces the whole bank of a topic.
func (s *SQLStore) PutTopic(ctx context.Context, topic int, title string, qs []Question) error {
	for _, q := range qs {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO topics (id,title,created_at) VALUES ($1,$2,$3)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title`,
		topic, title, time.Now().Unix()); err != nil {
		return fmt.Errorf("upsert topic %d: %w", topic, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE topic_id=$1`, topic); err != nil {
		return fmt.Errorf("clear topic %d: %w", topic, err)
	}
	for i, q := range qs {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		var page sql.NullInt64
		if q.Page != nil {
			page = sql.NullInt64{Int64: int64(*q.Page), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO questions (topic_id,position,prompt,options_json,correct,page)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			topic, i, q.Prompt, string(opts), q.Correct, page); err != nil {
			return fmt.Errorf("insert question %d of topic %d: %w", i, topic, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) FetchTopic(ctx context.Context, topic int) ([]Question, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM topics WHERE id=$1`, topic).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT prompt,options_json,correct,page FROM questions
		WHERE topic_id=$1 ORDER BY position`, topic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var (
			q    Question
			opts string
			page sql.NullInt64
		)
		if err := rows.Scan(&q.Prompt, &opts, &q.Correct, &page); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("%w: topic %d options: %v", ErrMalformedBank, topic, err)
		}
		if page.Valid {
			p := int(page.Int64)
			q.Page = &p
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListTopics(ctx context.Context) ([]Topic, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.title, COUNT(q.position)
		FROM topics t LEFT JOIN questions q ON q.topic_id = t.id
		GROUP BY t.id, t.title ORDER BY t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Topic
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.Title, &t.Questions); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
