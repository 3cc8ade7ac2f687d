package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	glebarez "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// questionRow stores one question as a JSON payload, ordered by position.
// Insertion order is what "oldest" means during eviction, so the position is
// written explicitly on every save.
type questionRow struct {
	Position   int    `gorm:"primaryKey;autoIncrement:false"`
	QuestionID string `gorm:"size:64;uniqueIndex;not null"`
	Payload    string `gorm:"not null"`
}

func (questionRow) TableName() string { return "questions" }

// Store persists the question sequence in a local SQLite database.
type Store struct {
	db *gorm.DB
}

// New opens (or creates) the database file and migrates the schema.
func New(path string) (*Store, error) {
	db, err := gorm.Open(glebarez.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&questionRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// Load reads all stored questions in position order.
func (s *Store) Load(ctx context.Context) ([]entities.Question, error) {
	var rows []questionRow
	if err := s.db.WithContext(ctx).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	questions := make([]entities.Question, 0, len(rows))
	for _, row := range rows {
		var q entities.Question
		if err := json.Unmarshal([]byte(row.Payload), &q); err != nil {
			return nil, fmt.Errorf("decode question %s: %w", row.QuestionID, err)
		}
		questions = append(questions, q)
	}

	return questions, nil
}

// Save replaces all stored rows with the given sequence in one transaction.
func (s *Store) Save(ctx context.Context, questions []entities.Question) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&questionRow{}).Error; err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}

		if len(questions) == 0 {
			return nil
		}

		rows := make([]questionRow, 0, len(questions))
		for i, q := range questions {
			payload, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			rows = append(rows, questionRow{
				Position:   i,
				QuestionID: q.ID,
				Payload:    string(payload),
			})
		}

		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
}
