package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// Store persists the question sequence as one JSON document on disk.
// It is the default storage driver.
type Store struct {
	path   string
	logger *zap.Logger
}

func New(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the stored sequence. A missing file and malformed content both
// yield an empty sequence; malformed content is logged.
func (s *Store) Load(_ context.Context) ([]entities.Question, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var questions []entities.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		s.logger.Warn("malformed question file, treating as empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return nil, nil
	}

	return questions, nil
}

// Save writes the whole sequence via a temp file and rename, so a failed
// write cannot leave a truncated document behind.
func (s *Store) Save(_ context.Context, questions []entities.Question) error {
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}

	return nil
}
