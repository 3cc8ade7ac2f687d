package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// Store persists the question sequence in Postgres, one row per question,
// ordered by position. Position is rewritten on every save so the stored
// order always equals acceptance order.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore ensures the schema and returns the store.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	query := `
		CREATE TABLE IF NOT EXISTS questions (
			position    integer PRIMARY KEY,
			question_id text    NOT NULL UNIQUE,
			payload     jsonb   NOT NULL
		)
	`
	if _, err := pool.Exec(ctx, query); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Load reads all stored questions in position order.
func (s *Store) Load(ctx context.Context) ([]entities.Question, error) {
	rows, err := s.pool.Query(ctx, `SELECT payload FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []entities.Question
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}

		var q entities.Question
		if err := json.Unmarshal(payload, &q); err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// Save replaces the whole table with the given sequence in one transaction.
func (s *Store) Save(ctx context.Context, questions []entities.Question) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	if len(questions) > 0 {
		batch := &pgx.Batch{}
		for i, q := range questions {
			payload, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			batch.Queue(
				`INSERT INTO questions (position, question_id, payload) VALUES ($1, $2, $3)`,
				i, q.ID, payload,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for range questions {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert question: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close batch: %w", err)
		}
	}

	return tx.Commit(ctx)
}
