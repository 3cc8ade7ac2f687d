package bank

import (
	"context"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// Store is the persistence collaborator. The whole question sequence is
// loaded and saved wholesale; implementations decide how it is laid out.
type Store interface {
	Load(ctx context.Context) ([]entities.Question, error)
	Save(ctx context.Context, questions []entities.Question) error
}
