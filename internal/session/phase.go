package session

import "fmt"

// Phase is the current half of a practice session: unpracticed questions
// first, then review of already practiced ones.
type Phase int

const (
	PhaseNew Phase = iota + 1
	PhaseReview
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "New"
	case PhaseReview:
		return "Review"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}
