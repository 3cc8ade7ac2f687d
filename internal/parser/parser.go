package parser

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
)

// Input format contract with the upstream LLM-generated text source.
const (
	questionDelimiter    = "∆∆∆∆∆" // separates question text from its content block
	optionsDelimiter     = "§§§§"  // separates the options part from the explanation container
	explanationDelimiter = "^^^^^" // wraps the explanation inside its container
)

// Option correctness symbols. Each may be preceded by one escape marker.
const (
	correctSymbol = '$'
	escapeMarker  = '\\'
)

var incorrectSymbols = map[rune]struct{}{
	'€': {},
	'¥': {},
	'¢': {},
}

// escapedPunctuation matches a backslash followed by a single
// non-alphanumeric, non-whitespace character. LLMs tend to escape the
// delimiter punctuation; the backslash is collapsed before parsing.
var escapedPunctuation = regexp.MustCompile(`\\([^a-zA-Z0-9\s])`)

// Parser turns raw delimiter-separated text into question records.
// Randomness (option shuffling) and id generation are injectable so tests
// can assert exact output.
type Parser struct {
	rng   *rand.Rand
	newID func() string
}

// New creates a parser with time-seeded randomness and composite ids.
func New() *Parser {
	return &Parser{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		newID: NewQuestionID,
	}
}

// NewWithSource creates a parser with an explicit random source and id
// generator for deterministic output.
func NewWithSource(rng *rand.Rand, newID func() string) *Parser {
	return &Parser{rng: rng, newID: newID}
}

// NewQuestionID returns a fresh question id: unix milliseconds plus a random
// fragment, so ids stay unique within one parse batch and across batches.
func NewQuestionID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// Parse converts raw text into accepted questions.
//
// The call is all-or-nothing: on error nothing is returned. Pairs that fail
// validation are skipped without an error; only a completely empty result
// reports ErrNoValidQuestions.
func (p *Parser) Parse(raw string) ([]entities.Question, error) {
	text := escapedPunctuation.ReplaceAllString(raw, "$1")

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	fragments := splitNonBlank(text, questionDelimiter)
	if len(fragments) == 0 || len(fragments)%2 != 0 {
		return nil, ErrMalformedStructure
	}

	var questions []entities.Question
	for i := 0; i+1 < len(fragments); i += 2 {
		q, ok := p.parsePair(fragments[i], fragments[i+1])
		if !ok {
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf(
			"%w: expected \"question %s options %s explanation %s\" blocks",
			ErrNoValidQuestions, questionDelimiter, optionsDelimiter, explanationDelimiter,
		)
	}

	return questions, nil
}

// parsePair validates one (question text, content block) pair and builds a
// question from it. A false result means the pair contributes nothing.
func (p *Parser) parsePair(questionText, contentBlock string) (entities.Question, bool) {
	parts := splitNonBlank(contentBlock, optionsDelimiter)
	if len(parts) != 2 {
		return entities.Question{}, false
	}

	explanationParts := splitNonBlank(parts[1], explanationDelimiter)
	if len(explanationParts) != 1 {
		return entities.Question{}, false
	}

	question := strings.TrimSpace(questionText)
	explanation := strings.TrimSpace(explanationParts[0])
	if question == "" || explanation == "" {
		return entities.Question{}, false
	}

	options := p.parseOptions(parts[0])
	if len(options) < 2 {
		return entities.Question{}, false
	}
	hasCorrect := false
	for _, o := range options {
		if o.IsCorrect {
			hasCorrect = true
			break
		}
	}
	if !hasCorrect {
		return entities.Question{}, false
	}

	p.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return entities.Question{
		ID:           p.newID(),
		QuestionText: question,
		Options:      options,
		Explanation:  explanation,
	}, true
}

// parseOptions scans the option lines of one question. Lines that do not
// start with a recognized symbol are discarded, as is any line reusing a
// symbol already seen within the same question.
func (p *Parser) parseOptions(optionsPart string) []entities.Option {
	seen := make(map[rune]struct{})

	var options []entities.Option
	for _, line := range strings.Split(optionsPart, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		opt, symbol, ok := parseOptionLine(line)
		if !ok {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		options = append(options, opt)
	}

	return options
}

// parseOptionLine reads the correctness symbol from the start of a trimmed
// line. The symbol may be bare or preceded by one escape marker.
func parseOptionLine(line string) (entities.Option, rune, bool) {
	r, size := utf8.DecodeRuneInString(line)
	if r == escapeMarker {
		r2, size2 := utf8.DecodeRuneInString(line[size:])
		if isSymbol(r2) {
			return buildOption(r2, line[size+size2:]), r2, true
		}
		return entities.Option{}, 0, false
	}
	if isSymbol(r) {
		return buildOption(r, line[size:]), r, true
	}
	return entities.Option{}, 0, false
}

func buildOption(symbol rune, rest string) entities.Option {
	return entities.Option{
		Text:      strings.TrimSpace(rest),
		IsCorrect: symbol == correctSymbol,
	}
}

func isSymbol(r rune) bool {
	if r == correctSymbol {
		return true
	}
	_, ok := incorrectSymbols[r]
	return ok
}

// splitNonBlank splits s on sep and drops empty and whitespace-only
// fragments.
func splitNonBlank(s, sep string) []string {
	raw := strings.Split(s, sep)
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if strings.TrimSpace(f) == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
