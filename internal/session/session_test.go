package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// practicerStub records practiced ids and can fail on demand.
type practicerStub struct {
	marked []string
	err    error
}

func (p *practicerStub) MarkPracticed(_ context.Context, id string) error {
	p.marked = append(p.marked, id)
	return p.err
}

func makeSnapshot(newCount, practicedCount int) []entities.Question {
	questions := make([]entities.Question, 0, newCount+practicedCount)
	for i := 0; i < newCount+practicedCount; i++ {
		questions = append(questions, entities.Question{
			ID:           fmt.Sprintf("id-%d", i),
			QuestionText: fmt.Sprintf("question %d", i),
			Options: []entities.Option{
				{Text: "a", IsCorrect: true},
				{Text: "b"},
			},
			Explanation:      "because",
			HasBeenPracticed: i >= newCount,
		})
	}
	return questions
}

func newTestSession(bank Practicer, snapshot []entities.Question) *Controller {
	c := New(bank, rand.New(rand.NewSource(1)))
	c.Sync(snapshot)
	return c
}

// answer selects the correct option of the current question.
func answer(t *testing.T, c *Controller) {
	t.Helper()
	cur, ok := c.Current()
	require.True(t, ok)
	correct, ok := cur.CorrectOption()
	require.True(t, ok)
	c.SelectAnswer(correct)
}

func TestSync_BuildsDecksByPracticedFlag(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(3, 2))

	assert.Equal(t, PhaseNew, c.Phase())
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 3, c.NewCount())
	assert.Equal(t, 2, c.ReviewCount())
	assert.Equal(t, 3, c.DeckSize())
	assert.True(t, c.TimerRunning())
}

func TestSync_StartsInReviewWhenNothingNew(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(0, 2))

	assert.Equal(t, PhaseReview, c.Phase())
	assert.Equal(t, 2, c.DeckSize())
}

func TestSync_MinorChangePreservesPositionAndScratch(t *testing.T) {
	snapshot := makeSnapshot(3, 0)
	bank := &practicerStub{}
	c := newTestSession(bank, snapshot)

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))
	require.Equal(t, 1, c.Position())

	c.ToggleEliminated("b")

	// Same counts: a note edit on the current question.
	cur, _ := c.Current()
	updated := entities.CloneAll(snapshot)
	for i := range updated {
		if updated[i].ID == cur.ID {
			updated[i].UserNote = "remember this"
		}
	}
	c.Sync(updated)

	assert.Equal(t, 1, c.Position())
	assert.True(t, c.IsEliminated("b"))
	assert.False(t, c.Answered())
	assert.Equal(t, "remember this", c.NoteDraft())
}

func TestSync_RebuildsWhenDeckQuestionReplaced(t *testing.T) {
	snapshot := makeSnapshot(3, 0)
	c := newTestSession(&practicerStub{}, snapshot)

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))
	require.Equal(t, 1, c.Position())

	// Delete plus add with matching counts: one deck id is gone from the
	// snapshot, so the decks must rebuild instead of refreshing in place.
	replaced := entities.CloneAll(snapshot)
	replaced[2] = entities.Question{
		ID:           "id-replacement",
		QuestionText: "replacement",
		Options: []entities.Option{
			{Text: "a", IsCorrect: true},
			{Text: "b"},
		},
		Explanation: "because",
	}
	c.Sync(replaced)

	assert.Equal(t, 0, c.Position())
	assert.False(t, c.Answered())

	var ids []string
	for i := 0; i < c.DeckSize(); i++ {
		cur, ok := c.Current()
		require.True(t, ok)
		ids = append(ids, cur.ID)
		answer(t, c)
		require.NoError(t, c.Next(context.Background()))
	}
	assert.NotContains(t, ids, "id-2")
	assert.Contains(t, ids, "id-replacement")
}

func TestSync_CountChangeRebuildsAndResets(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(3, 0))

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))
	require.Equal(t, 1, c.Position())

	// One question deleted: full rebuild.
	c.Sync(makeSnapshot(2, 0))

	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 2, c.NewCount())
	assert.False(t, c.Answered())
	assert.Equal(t, PhaseNew, c.Phase())
}

func TestNext_RequiresAnswer(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(2, 0))

	err := c.Next(context.Background())
	assert.ErrorIs(t, err, ErrNotAnswered)
	assert.Equal(t, 0, c.Position())
}

func TestNext_MarksNewQuestionPracticed(t *testing.T) {
	bank := &practicerStub{}
	c := newTestSession(bank, makeSnapshot(2, 0))

	cur, _ := c.Current()
	answer(t, c)
	require.NoError(t, c.Next(context.Background()))

	assert.Equal(t, []string{cur.ID}, bank.marked)
	assert.Equal(t, 1, c.Position())
	assert.False(t, c.Answered())
	assert.True(t, c.TimerRunning())
}

func TestNext_SwitchesToReviewAfterNewDeck(t *testing.T) {
	bank := &practicerStub{}
	c := newTestSession(bank, makeSnapshot(1, 2))

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))

	assert.Equal(t, PhaseReview, c.Phase())
	assert.Equal(t, 0, c.Position())
	assert.Equal(t, 2, c.DeckSize())
	assert.False(t, c.Answered())
}

func TestNext_TerminalOnLastReviewQuestion(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(0, 2))

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))
	require.Equal(t, 1, c.Position())

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))

	// Last review question is terminal: cursor and answer stay put.
	assert.Equal(t, 1, c.Position())
	assert.True(t, c.Answered())
}

func TestNext_TerminalOnLastNewWhenNoReview(t *testing.T) {
	bank := &practicerStub{}
	c := newTestSession(bank, makeSnapshot(1, 0))

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))

	assert.Equal(t, PhaseNew, c.Phase())
	assert.Equal(t, 0, c.Position())
	assert.True(t, c.Answered())
	assert.Len(t, bank.marked, 1)
}

func TestNext_FocusNewOnlyStopsAtBoundary(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(1, 3))
	c.ToggleFocusNewOnly()

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))

	assert.Equal(t, PhaseNew, c.Phase())
	assert.True(t, c.Answered())
}

func TestNext_ReturnsBankErrorAfterAdvancing(t *testing.T) {
	bankErr := errors.New("disk full")
	c := newTestSession(&practicerStub{err: bankErr}, makeSnapshot(2, 0))

	answer(t, c)
	err := c.Next(context.Background())

	assert.ErrorIs(t, err, bankErr)
	// The advance applied regardless.
	assert.Equal(t, 1, c.Position())
}

func TestNext_EmptyDeckIsNoop(t *testing.T) {
	c := newTestSession(&practicerStub{}, nil)

	assert.NoError(t, c.Next(context.Background()))
	assert.False(t, c.TimerRunning())
}

func TestSelectAnswer_FirstAnswerSticks(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(1, 0))

	c.SelectAnswer("a")
	c.SelectAnswer("b")

	assert.True(t, c.Answered())
	assert.Equal(t, "a", c.SelectedAnswer())
	assert.False(t, c.TimerRunning())
}

func TestToggleEliminated(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(1, 0))

	c.ToggleEliminated("b")
	assert.True(t, c.IsEliminated("b"))

	c.ToggleEliminated("b")
	assert.False(t, c.IsEliminated("b"))

	// Locked after answering.
	c.SelectAnswer("a")
	c.ToggleEliminated("b")
	assert.False(t, c.IsEliminated("b"))
}

func TestReshuffleReview(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(0, 3))

	answer(t, c)
	require.NoError(t, c.Next(context.Background()))
	require.Equal(t, 1, c.Position())

	c.ReshuffleReview()
	assert.Equal(t, 0, c.Position())
	assert.False(t, c.Answered())
}

func TestReshuffleReview_UnavailableInNewPhase(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(2, 3))

	answer(t, c)
	c.ReshuffleReview()

	assert.Equal(t, PhaseNew, c.Phase())
	assert.True(t, c.Answered())
}

func TestTick(t *testing.T) {
	c := newTestSession(&practicerStub{}, makeSnapshot(1, 0))

	c.Tick()
	c.Tick()
	assert.Equal(t, 2, c.Elapsed())

	// Timer stops at the answer.
	c.SelectAnswer("a")
	c.Tick()
	assert.Equal(t, 2, c.Elapsed())
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "New", PhaseNew.String())
	assert.Equal(t, "Review", PhaseReview.String())
	assert.Equal(t, "Phase(9)", Phase(9).String())
}
