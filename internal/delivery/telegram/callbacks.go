package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/mcq-bank-bot/internal/bank"
	"github.com/aliskhannn/mcq-bank-bot/internal/session"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	st := h.state(chatID)
	cd := decodeCallback(cb.Data)

	var (
		toast string
		err   error
	)

	if cd.Action == actionEvict {
		err = h.handleEvictCallback(ctx, st, chatID, cd)
	} else {
		toast, err = h.handlePracticeCallback(ctx, st, chatID, cd)
	}

	if err != nil {
		h.logger.Error("callback error",
			zap.String("data", cb.Data),
			zap.Error(err),
		)
	}

	// Remove the user's "clock".
	answer := tgbotapi.NewCallback(cb.ID, toast)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Error("callback answer error", zap.Error(err))
	}
}

// handlePracticeCallback applies one practice action to the chat's session
// and re-renders the card. The returned string is shown as a callback toast.
func (h *Handler) handlePracticeCallback(ctx context.Context, st *chatState, chatID int64, cd callbackData) (string, error) {
	if st.session == nil {
		return msgNoActiveSession, nil
	}

	s := st.session
	cur, ok := s.Current()
	if !ok {
		return msgDeckEmpty, nil
	}

	var toast string

	switch cd.Action {
	case actionAnswer:
		i, ok := optionIndex(cd, len(cur.Options))
		if !ok {
			h.logger.Debug("invalid answer callback", zap.String("data", cd.Raw))
			return "", nil
		}
		s.SelectAnswer(cur.Options[i].Text)

	case actionEliminate:
		i, ok := optionIndex(cd, len(cur.Options))
		if !ok {
			h.logger.Debug("invalid eliminate callback", zap.String("data", cd.Raw))
			return "", nil
		}
		s.ToggleEliminated(cur.Options[i].Text)

	case actionNext:
		wasAnswered := s.Answered()
		if err := s.Next(ctx); err != nil {
			switch {
			case errors.Is(err, session.ErrNotAnswered):
				return msgAnswerFirst, nil
			case errors.Is(err, bank.ErrPersistence):
				h.logger.Warn("practice progress saved in memory only", zap.Error(err))
			default:
				return "", err
			}
		}
		if wasAnswered && s.Answered() {
			// Nothing advanced: the session hit its terminal question.
			toast = msgSessionDone
		}

	case actionShuffle:
		s.ReshuffleReview()

	case actionFocus:
		s.ToggleFocusNewOnly()

	case actionAnalysis:
		s.ToggleAnalysisMode()

	case actionMark:
		if err := h.bank.ToggleMark(ctx, cur.ID); err != nil {
			h.logger.Warn("mark saved in memory only", zap.Error(err))
		}
		h.syncSession(st)

	case actionNote:
		if !s.AnalysisMode() {
			return "", nil
		}
		st.awaited = awaitedNote
		return "", h.send(newHTMLMessage(chatID, msgNotePrompt))

	case actionDelete:
		if err := h.bank.Delete(ctx, cur.ID); err != nil {
			h.logger.Warn("deletion saved in memory only", zap.Error(err))
		}
		h.syncSession(st)
		toast = msgQuestionDeleted

	default:
		return "", nil
	}

	return toast, h.updatePracticeCard(chatID, st)
}

// handleEvictCallback commits or discards the chat's pending import batch.
func (h *Handler) handleEvictCallback(ctx context.Context, st *chatState, chatID int64, cd callbackData) error {
	if st.pending == nil || len(cd.Params) != 1 {
		return nil
	}

	switch cd.Params[0] {
	case evictConfirm:
		staged := st.pending
		st.pending = nil

		if err := h.bank.CommitAdd(ctx, staged); err != nil {
			if errors.Is(err, bank.ErrStaleBatch) {
				return h.send(newHTMLMessage(chatID, msgImportStale))
			}
			h.logger.Warn("import saved in memory only", zap.Error(err))
		}
		h.syncSession(st)

		return h.send(newHTMLMessage(chatID, formatImportDone(len(staged.Incoming), len(staged.Evicted), h.bank.Size())))

	case evictCancel:
		st.pending = nil
		return h.send(newHTMLMessage(chatID, msgImportCancelled))
	}

	return nil
}

// optionIndex reads a single option index parameter and bounds-checks it
// against the current question.
func optionIndex(cd callbackData, optionCount int) (int, bool) {
	if len(cd.Params) != 1 {
		return 0, false
	}
	i, err := strconv.Atoi(cd.Params[0])
	if err != nil || i < 0 || i >= optionCount {
		return 0, false
	}
	return i, true
}
