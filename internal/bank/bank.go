package bank

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

const (
	// Capacity is the maximum number of stored questions, enforced only at
	// insertion time.
	Capacity = 5000

	// EvictionChunk is how many of the oldest questions are removed when an
	// insertion would exceed Capacity.
	EvictionChunk = 50
)

// ErrPersistence reports a failed save. The in-memory sequence has already
// been updated and stays authoritative for the running process; the next
// load may revert to the last durably saved version.
var ErrPersistence = errors.New("bank: persistence failure")

// ErrStaleBatch reports that the bank changed between staging and commit, so
// the eviction plan the user confirmed no longer matches what would actually
// be evicted. The bank is left unchanged; the caller must re-stage.
var ErrStaleBatch = errors.New("bank: staged batch is stale")

// Bank owns the persisted question sequence. Insertion order is acceptance
// order and is the sole basis for "oldest" during eviction.
//
// All methods must be called from a single goroutine; mutations replace the
// sequence wholesale and persist it synchronously.
type Bank struct {
	store     Store
	logger    *zap.Logger
	questions []entities.Question
}

// New loads the stored sequence through the store. A load failure is logged
// and the bank starts empty rather than failing.
func New(ctx context.Context, store Store, logger *zap.Logger) *Bank {
	questions, err := store.Load(ctx)
	if err != nil {
		logger.Warn("failed to load question bank, starting empty", zap.Error(err))
		questions = nil
	}

	return &Bank{
		store:     store,
		logger:    logger,
		questions: questions,
	}
}

// Snapshot returns a deep copy of the current sequence.
func (b *Bank) Snapshot() []entities.Question {
	return entities.CloneAll(b.questions)
}

// Size returns the number of stored questions.
func (b *Bank) Size() int {
	return len(b.questions)
}

// Get returns the question with the given id.
func (b *Bank) Get(id string) (entities.Question, bool) {
	for _, q := range b.questions {
		if q.ID == id {
			return q.Clone(), true
		}
	}
	return entities.Question{}, false
}

// Counts reports how many questions are new, already practiced and marked.
func (b *Bank) Counts() (newCount, practicedCount, markedCount int) {
	for _, q := range b.questions {
		if q.HasBeenPracticed {
			practicedCount++
		} else {
			newCount++
		}
		if q.IsMarked {
			markedCount++
		}
	}
	return newCount, practicedCount, markedCount
}

// StagedAdd is a pending insertion. Evicted lists the oldest questions that
// will be removed on commit; it is empty when the batch fits under Capacity.
// Discarding the batch means simply not committing it.
type StagedAdd struct {
	Incoming []entities.Question
	Evicted  []entities.Question
}

// StageAdd prepares an insertion without touching the bank. When the batch
// would push the size past Capacity, the oldest questions are slated for
// removal, in whole multiples of EvictionChunk, so the caller can ask for
// confirmation first and the committed bank never exceeds Capacity.
func (b *Bank) StageAdd(incoming []entities.Question) *StagedAdd {
	staged := &StagedAdd{Incoming: entities.CloneAll(incoming)}

	overflow := len(b.questions) + len(incoming) - Capacity
	if overflow > 0 {
		chunks := (overflow + EvictionChunk - 1) / EvictionChunk
		n := chunks * EvictionChunk
		if n > len(b.questions) {
			n = len(b.questions)
		}
		staged.Evicted = entities.CloneAll(b.questions[:n])
	}

	return staged
}

// CommitAdd applies a staged insertion as one replace-and-persist operation:
// evict the slated oldest questions, then append the incoming batch.
//
// The eviction plan is recomputed against the current sequence: the bank may
// have changed since staging. When the fresh plan still needs evictions and
// they differ from the confirmed ones, ErrStaleBatch is returned and nothing
// is applied. A batch that now fits without eviction commits regardless.
func (b *Bank) CommitAdd(ctx context.Context, staged *StagedAdd) error {
	fresh := b.StageAdd(staged.Incoming)
	if len(fresh.Evicted) > 0 && !sameIDs(fresh.Evicted, staged.Evicted) {
		return ErrStaleBatch
	}

	next := make([]entities.Question, 0, len(b.questions)-len(fresh.Evicted)+len(fresh.Incoming))
	next = append(next, b.questions[len(fresh.Evicted):]...)
	next = append(next, fresh.Incoming...)
	return b.replace(ctx, next)
}

// Delete removes the question with the given id. Unknown ids are a no-op.
func (b *Bank) Delete(ctx context.Context, id string) error {
	idx := b.index(id)
	if idx < 0 {
		return nil
	}

	next := make([]entities.Question, 0, len(b.questions)-1)
	next = append(next, b.questions[:idx]...)
	next = append(next, b.questions[idx+1:]...)
	return b.replace(ctx, next)
}

// SetNote sets the user note of a question. Unknown ids are a no-op.
func (b *Bank) SetNote(ctx context.Context, id, note string) error {
	return b.update(ctx, id, func(q *entities.Question) {
		q.UserNote = note
	})
}

// ToggleMark flips the marked flag of a question. Unknown ids are a no-op.
func (b *Bank) ToggleMark(ctx context.Context, id string) error {
	return b.update(ctx, id, func(q *entities.Question) {
		q.IsMarked = !q.IsMarked
	})
}

// MarkPracticed sets the practiced flag of a question. Idempotent; marking
// an already practiced question does not persist again.
func (b *Bank) MarkPracticed(ctx context.Context, id string) error {
	idx := b.index(id)
	if idx < 0 || b.questions[idx].HasBeenPracticed {
		return nil
	}

	return b.update(ctx, id, func(q *entities.Question) {
		q.HasBeenPracticed = true
	})
}

// update replaces the record with a modified copy and persists the sequence.
func (b *Bank) update(ctx context.Context, id string, fn func(q *entities.Question)) error {
	idx := b.index(id)
	if idx < 0 {
		return nil
	}

	updated := b.questions[idx].Clone()
	fn(&updated)

	next := append([]entities.Question(nil), b.questions...)
	next[idx] = updated
	return b.replace(ctx, next)
}

// replace installs the new sequence and saves it. A save failure is logged
// and reported, but the in-memory sequence keeps the new value.
func (b *Bank) replace(ctx context.Context, next []entities.Question) error {
	b.questions = next

	if err := b.store.Save(ctx, next); err != nil {
		b.logger.Error("failed to persist question bank",
			zap.Int("size", len(next)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return nil
}

func sameIDs(a, b []entities.Question) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return false
		}
	}
	return true
}

func (b *Bank) index(id string) int {
	for i, q := range b.questions {
		if q.ID == id {
			return i
		}
	}
	return -1
}
