package entities

// Option is a single answer choice of a multiple-choice question.
// Option texts inside one question do not have to be unique.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is one stored multiple-choice question.
//
// The ID is assigned at parse time and never changes. The option order is
// randomized once, when the question is created, and stays fixed afterwards.
type Question struct {
	ID               string   `json:"id"`
	QuestionText     string   `json:"questionText"`
	Options          []Option `json:"options"`
	Explanation      string   `json:"explanation"`
	UserNote         string   `json:"userNote,omitempty"`
	IsMarked         bool     `json:"isMarked,omitempty"`
	HasBeenPracticed bool     `json:"hasBeenPracticed,omitempty"`
}

// Clone returns a deep copy of the question. Stored questions are never
// mutated in place; mutations replace the record with an updated copy.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]Option(nil), q.Options...)
	return out
}

// CorrectOption returns the text of the first correct option.
func (q Question) CorrectOption() (string, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.Text, true
		}
	}
	return "", false
}

// CloneAll deep-copies a question sequence.
func CloneAll(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
