package parser

import "errors"

// Sentinel errors for a whole parse call. Per-pair problems (missing
// delimiters inside a block, bad option lines, duplicate symbols, no correct
// option) are not reported individually; they silently shrink the result.
// Use errors.Is to check: errors.Is(err, parser.ErrNoValidQuestions).
var (
	ErrEmptyInput         = errors.New("parser: input is empty")
	ErrMalformedStructure = errors.New("parser: malformed structure, expected an even number of question/content blocks")
	ErrNoValidQuestions   = errors.New("parser: no valid questions found")
)
