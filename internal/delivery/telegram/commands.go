package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/mcq-bank-bot/internal/parser"
	"github.com/aliskhannn/mcq-bank-bot/internal/session"
)

// handlePractice starts a fresh practice session over the current bank.
func (h *Handler) handlePractice(st *chatState) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if h.bank.Size() == 0 {
			return h.send(newHTMLMessage(chatID, msgDeckEmpty))
		}

		st.session = session.New(h.bank, nil)
		st.session.Sync(h.bank.Snapshot())

		return h.sendPracticeCard(chatID, st)
	}
}

// handleImportText parses pasted bulk text and stages it into the bank.
// When the batch would evict old questions, the user confirms first.
func (h *Handler) handleImportText(st *chatState, raw string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		questions, err := h.parser.Parse(raw)
		if err != nil {
			switch {
			case errors.Is(err, parser.ErrEmptyInput):
				return h.send(newHTMLMessage(chatID, msgImportEmpty))
			case errors.Is(err, parser.ErrMalformedStructure):
				return h.send(newHTMLMessage(chatID, msgImportMalformed))
			case errors.Is(err, parser.ErrNoValidQuestions):
				return h.send(newHTMLMessage(chatID, msgImportNoValid))
			default:
				return err
			}
		}

		// A new import supersedes any batch still waiting for confirmation.
		st.pending = nil

		staged := h.bank.StageAdd(questions)
		if len(staged.Evicted) > 0 {
			st.pending = staged

			msg := newHTMLMessage(chatID, formatEvictionPrompt(staged))
			msg.ReplyMarkup = buildEvictionKeyboard()
			return h.send(msg)
		}

		if err := h.bank.CommitAdd(ctx, staged); err != nil {
			h.logger.Warn("import saved in memory only", zap.Error(err))
		}
		h.syncSession(st)

		return h.send(newHTMLMessage(chatID, formatImportDone(len(staged.Incoming), 0, h.bank.Size())))
	}
}

// handleNoteText stores the pasted note on the current practice question.
func (h *Handler) handleNoteText(st *chatState, text string) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if st.session == nil {
			return h.send(newHTMLMessage(chatID, msgNoActiveSession))
		}

		cur, ok := st.session.Current()
		if !ok {
			return h.send(newHTMLMessage(chatID, msgNoActiveSession))
		}

		if err := h.bank.SetNote(ctx, cur.ID, text); err != nil {
			h.logger.Warn("note saved in memory only", zap.Error(err))
		}
		st.session.SetNoteDraft(text)
		h.syncSession(st)

		return h.send(newHTMLMessage(chatID, msgNoteSaved))
	}
}

func (h *Handler) handleStats() HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		newCount, practicedCount, markedCount := h.bank.Counts()
		return h.send(newHTMLMessage(chatID, formatStats(h.bank.Size(), newCount, practicedCount, markedCount)))
	}
}

// handleCancel drops a pending eviction confirmation or an awaited input.
func (h *Handler) handleCancel(st *chatState, hadAwaited bool) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		if st.pending == nil && !hadAwaited {
			return h.send(newHTMLMessage(chatID, msgNothingToCancel))
		}

		st.pending = nil
		return h.send(newHTMLMessage(chatID, msgCancelled))
	}
}
