package session

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// ErrNotAnswered rejects an advance on a question that has no recorded
// answer yet.
var ErrNotAnswered = errors.New("session: current question is not answered yet")

// Practicer is the slice of the bank the controller needs: advancing past a
// new question marks it practiced.
type Practicer interface {
	MarkPracticed(ctx context.Context, id string) error
}

// Controller drives a practice session: two independently shuffled decks
// (new, then review), one current question, and per-question scratch state
// (selected answer, eliminated options, elapsed time, note draft).
//
// All methods must be called from a single goroutine.
type Controller struct {
	bank Practicer
	rng  *rand.Rand

	phase      Phase
	position   int
	newDeck    []entities.Question
	reviewDeck []entities.Question

	answered       bool
	selectedAnswer string
	eliminated     map[string]struct{}
	elapsedSeconds int
	timerRunning   bool

	focusNewOnly bool
	analysisMode bool
	noteDraft    string
}

// New creates a controller. A nil rng gets a time-seeded source; tests pass
// a deterministic one.
func New(bank Practicer, rng *rand.Rand) *Controller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Controller{
		bank:       bank,
		rng:        rng,
		phase:      PhaseNew,
		eliminated: make(map[string]struct{}),
	}
}

// Sync applies a fresh bank snapshot.
//
// When the new/review counts match the held decks, the change is minor
// (a note or mark edit): deck entries are refreshed in place and order,
// position and scratch state survive. Any count change rebuilds both decks
// with fresh shuffles and resets the session.
func (c *Controller) Sync(snapshot []entities.Question) {
	var newQs, reviewQs []entities.Question
	for _, q := range snapshot {
		if q.HasBeenPracticed {
			reviewQs = append(reviewQs, q)
		} else {
			newQs = append(newQs, q)
		}
	}

	if len(newQs) == len(c.newDeck) && len(reviewQs) == len(c.reviewDeck) {
		byID := make(map[string]entities.Question, len(snapshot))
		for _, q := range snapshot {
			byID[q.ID] = q
		}
		// Matching counts can still hide a delete-plus-add; a deck entry
		// gone from the snapshot forces the full rebuild below.
		if covered(byID, c.newDeck) && covered(byID, c.reviewDeck) {
			refresh(c.newDeck, byID)
			refresh(c.reviewDeck, byID)
			c.syncNoteDraft()
			return
		}
	}

	c.newDeck = c.shuffled(newQs)
	c.reviewDeck = c.shuffled(reviewQs)
	c.position = 0
	if len(c.newDeck) > 0 {
		c.phase = PhaseNew
	} else {
		c.phase = PhaseReview
	}
	c.resetScratch()
}

// Current returns the question at the session cursor. The second result is
// false when the active deck is empty.
func (c *Controller) Current() (entities.Question, bool) {
	deck := c.activeDeck()
	if c.position < 0 || c.position >= len(deck) {
		return entities.Question{}, false
	}
	return deck[c.position].Clone(), true
}

// SelectAnswer records the answer for the current question and stops the
// timer. A no-op once an answer exists.
func (c *Controller) SelectAnswer(text string) {
	if c.answered {
		return
	}
	if _, ok := c.Current(); !ok {
		return
	}

	c.answered = true
	c.selectedAnswer = text
	c.timerRunning = false
}

// ToggleEliminated flips scratch elimination of an option. Only available
// before answering; never affects scoring.
func (c *Controller) ToggleEliminated(text string) {
	if c.answered {
		return
	}
	if _, eliminated := c.eliminated[text]; eliminated {
		delete(c.eliminated, text)
	} else {
		c.eliminated[text] = struct{}{}
	}
}

// Next advances past an answered question.
//
// In the New phase the current question is marked practiced first; at the end
// of the New deck the session switches to Review unless focus-new-only is on
// or there is nothing to review. The last review question is terminal.
// A persistence error from marking is returned after the advance is applied.
func (c *Controller) Next(ctx context.Context) error {
	cur, ok := c.Current()
	if !ok {
		return nil
	}
	if !c.answered {
		return ErrNotAnswered
	}

	var bankErr error

	switch c.phase {
	case PhaseNew:
		bankErr = c.bank.MarkPracticed(ctx, cur.ID)
		c.newDeck[c.position].HasBeenPracticed = true

		if c.position >= len(c.newDeck)-1 {
			if !c.focusNewOnly && len(c.reviewDeck) > 0 {
				c.phase = PhaseReview
				c.position = 0
				c.resetScratch()
			}
			// Otherwise terminal: stay on the last new question.
		} else {
			c.position++
			c.resetScratch()
		}

	case PhaseReview:
		if c.position < len(c.reviewDeck)-1 {
			c.position++
			c.resetScratch()
		}
		// Terminal on the last review question.
	}

	return bankErr
}

// ReshuffleReview reorders the review deck. Only available in the Review
// phase with more than one review question.
func (c *Controller) ReshuffleReview() {
	if c.phase != PhaseReview || len(c.reviewDeck) < 2 {
		return
	}

	c.reviewDeck = c.shuffled(c.reviewDeck)
	c.position = 0
	c.resetScratch()
}

// ToggleFocusNewOnly flips whether the session stops at the New/Review
// boundary. Decks are not rebuilt.
func (c *Controller) ToggleFocusNewOnly() {
	c.focusNewOnly = !c.focusNewOnly
}

// ToggleAnalysisMode flips whether the note affordance is exposed.
func (c *Controller) ToggleAnalysisMode() {
	c.analysisMode = !c.analysisMode
}

// Tick adds one second of elapsed time while the timer runs.
func (c *Controller) Tick() {
	if c.timerRunning {
		c.elapsedSeconds++
	}
}

func (c *Controller) Phase() Phase { return c.phase }
func (c *Controller) Position() int { return c.position }
func (c *Controller) DeckSize() int { return len(c.activeDeck()) }
func (c *Controller) NewCount() int { return len(c.newDeck) }
func (c *Controller) ReviewCount() int { return len(c.reviewDeck) }
func (c *Controller) Answered() bool { return c.answered }
func (c *Controller) SelectedAnswer() string { return c.selectedAnswer }
func (c *Controller) Elapsed() int { return c.elapsedSeconds }
func (c *Controller) TimerRunning() bool { return c.timerRunning }
func (c *Controller) FocusNewOnly() bool { return c.focusNewOnly }
func (c *Controller) AnalysisMode() bool { return c.analysisMode }
func (c *Controller) NoteDraft() string { return c.noteDraft }

// IsEliminated reports whether an option text is scratched out.
func (c *Controller) IsEliminated(text string) bool {
	_, ok := c.eliminated[text]
	return ok
}

// SetNoteDraft keeps the in-progress note text; it is written to the bank by
// the caller, not by the controller.
func (c *Controller) SetNoteDraft(text string) {
	c.noteDraft = text
}

func (c *Controller) activeDeck() []entities.Question {
	if c.phase == PhaseReview {
		return c.reviewDeck
	}
	return c.newDeck
}

// resetScratch clears per-question state and restarts the timer. The note
// draft follows the stored note of the question now under the cursor.
func (c *Controller) resetScratch() {
	c.answered = false
	c.selectedAnswer = ""
	c.eliminated = make(map[string]struct{})
	c.elapsedSeconds = 0
	_, hasCurrent := c.Current()
	c.timerRunning = hasCurrent
	c.syncNoteDraft()
}

func (c *Controller) syncNoteDraft() {
	if cur, ok := c.Current(); ok {
		c.noteDraft = cur.UserNote
	} else {
		c.noteDraft = ""
	}
}

// shuffled returns a uniformly shuffled copy of the input.
func (c *Controller) shuffled(in []entities.Question) []entities.Question {
	out := append([]entities.Question(nil), in...)
	c.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func covered(byID map[string]entities.Question, deck []entities.Question) bool {
	for i := range deck {
		if _, ok := byID[deck[i].ID]; !ok {
			return false
		}
	}
	return true
}

func refresh(deck []entities.Question, byID map[string]entities.Question) {
	for i := range deck {
		deck[i] = byID[deck[i].ID]
	}
}
