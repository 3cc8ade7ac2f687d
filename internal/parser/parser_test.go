package parser

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// newTestParser returns a parser with a fixed seed and sequential ids so
// assertions do not depend on the clock.
func newTestParser() *Parser {
	n := 0
	return NewWithSource(rand.New(rand.NewSource(1)), func() string {
		n++
		return fmt.Sprintf("q-%d", n)
	})
}

func optionTexts(options []entities.Option) []string {
	texts := make([]string, 0, len(options))
	for _, o := range options {
		texts = append(texts, o.Text)
	}
	return texts
}

func correctText(t *testing.T, options []entities.Option) string {
	t.Helper()
	for _, o := range options {
		if o.IsCorrect {
			return o.Text
		}
	}
	t.Fatal("no correct option")
	return ""
}

func TestParse_SingleQuestion(t *testing.T) {
	p := newTestParser()

	questions, err := p.Parse("Столица Франции? ∆∆∆∆∆ $Париж\n€Лион §§§§ Париж — столица. ^^^^^")
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "q-1", q.ID)
	assert.Equal(t, "Столица Франции?", q.QuestionText)
	assert.Equal(t, "Париж — столица.", q.Explanation)

	require.Len(t, q.Options, 2)
	assert.ElementsMatch(t, []string{"Париж", "Лион"}, optionTexts(q.Options))
	assert.Equal(t, "Париж", correctText(t, q.Options))
}

func TestParse_MultipleQuestions(t *testing.T) {
	p := newTestParser()

	raw := "Q1 ∆∆∆∆∆ $A\n€B §§§§ E1 ^^^^^ ∆∆∆∆∆ Q2 ∆∆∆∆∆ €C\n$D\n¥E §§§§ E2 ^^^^^"

	questions, err := p.Parse(raw)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, "Q1", questions[0].QuestionText)
	assert.Len(t, questions[0].Options, 2)
	assert.Equal(t, "Q2", questions[1].QuestionText)
	assert.Len(t, questions[1].Options, 3)
	assert.Equal(t, "D", correctText(t, questions[1].Options))
}

func TestParse_UnescapesPunctuation(t *testing.T) {
	p := newTestParser()

	// The source escapes delimiter punctuation; \$ must act as a plain $.
	questions, err := p.Parse(`What? ∆∆∆∆∆ \$Yes\!` + "\n" + `€No §§§§ Done. ^^^^^`)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	assert.Equal(t, "Yes!", correctText(t, questions[0].Options))
}

func TestParse_DropsDuplicateSymbolLines(t *testing.T) {
	p := newTestParser()

	questions, err := p.Parse("Q ∆∆∆∆∆ $First\n$Second\n€Other §§§§ E ^^^^^")
	require.NoError(t, err)
	require.Len(t, questions, 1)

	require.Len(t, questions[0].Options, 2)
	assert.Equal(t, "First", correctText(t, questions[0].Options))
	assert.NotContains(t, optionTexts(questions[0].Options), "Second")
}

func TestParse_DropsUnrecognizedLines(t *testing.T) {
	p := newTestParser()

	questions, err := p.Parse("Q ∆∆∆∆∆ noise line\n$A\n¥B §§§§ E ^^^^^")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Len(t, questions[0].Options, 2)
}

func TestParse_SkipsInvalidPairs(t *testing.T) {
	p := newTestParser()

	// First pair has no correct option, second is fine.
	raw := "Q1 ∆∆∆∆∆ €A\n¥B §§§§ E1 ^^^^^ ∆∆∆∆∆ Q2 ∆∆∆∆∆ $C\n€D §§§§ E2 ^^^^^"

	questions, err := p.Parse(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Q2", questions[0].QuestionText)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{
			name: "empty input",
			raw:  "",
			want: ErrEmptyInput,
		},
		{
			name: "whitespace only",
			raw:  "   \n\t  ",
			want: ErrEmptyInput,
		},
		{
			name: "odd fragment count",
			raw:  "no delimiters at all",
			want: ErrMalformedStructure,
		},
		{
			name: "dangling question text",
			raw:  "Q1 ∆∆∆∆∆ $A\n€B §§§§ E ^^^^^ ∆∆∆∆∆ Q2",
			want: ErrMalformedStructure,
		},
		{
			name: "single option",
			raw:  "Q ∆∆∆∆∆ $A §§§§ E ^^^^^",
			want: ErrNoValidQuestions,
		},
		{
			name: "no correct option",
			raw:  "Q ∆∆∆∆∆ €A\n¥B §§§§ E ^^^^^",
			want: ErrNoValidQuestions,
		},
		{
			name: "missing explanation",
			raw:  "Q ∆∆∆∆∆ $A\n€B §§§§ ^^^^^",
			want: ErrNoValidQuestions,
		},
		{
			name: "missing options delimiter",
			raw:  "Q ∆∆∆∆∆ $A\n€B E ^^^^^",
			want: ErrNoValidQuestions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser()

			questions, err := p.Parse(tt.raw)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, questions)
		})
	}
}

func TestParse_DeterministicWithFixedSource(t *testing.T) {
	raw := "Q ∆∆∆∆∆ $A\n€B\n¥C\n¢D §§§§ E ^^^^^"

	first, err := newTestParser().Parse(raw)
	require.NoError(t, err)
	second, err := newTestParser().Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, optionTexts(first[0].Options), optionTexts(second[0].Options))
}

func TestNewQuestionID_Unique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewQuestionID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
