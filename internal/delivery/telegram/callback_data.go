package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionAnswer    = "ans"
	actionEliminate = "elim"
	actionNext      = "next"
	actionShuffle   = "shuffle"
	actionFocus     = "focus"
	actionAnalysis  = "analysis"
	actionMark      = "mark"
	actionNote      = "note"
	actionDelete    = "del"
	actionEvict     = "evict"
)

// Eviction sub-actions.
const (
	evictConfirm = "confirm"
	evictCancel  = "cancel"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildAnswerCallback builds callback data for answering with option index i.
func buildAnswerCallback(i int) string {
	return callbackData{Action: actionAnswer, Params: []string{strconv.Itoa(i)}}.encode()
}

// buildEliminateCallback builds callback data for toggling elimination of option index i.
func buildEliminateCallback(i int) string {
	return callbackData{Action: actionEliminate, Params: []string{strconv.Itoa(i)}}.encode()
}

func buildNextCallback() string { return actionNext }
func buildShuffleCallback() string { return actionShuffle }
func buildFocusCallback() string { return actionFocus }
func buildAnalysisCallback() string { return actionAnalysis }
func buildMarkCallback() string { return actionMark }
func buildNoteCallback() string { return actionNote }
func buildDeleteCallback() string { return actionDelete }

func buildEvictConfirmCallback() string {
	return callbackData{Action: actionEvict, Params: []string{evictConfirm}}.encode()
}

func buildEvictCancelCallback() string {
	return callbackData{Action: actionEvict, Params: []string{evictCancel}}.encode()
}
