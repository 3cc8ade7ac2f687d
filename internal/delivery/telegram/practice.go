// practice.go renders the practice card: one question, its options and the
// post-answer explanation block.

package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/mcq-bank-bot/internal/session"
)

// sendPracticeCard posts a new practice card and remembers its message id so
// later actions can edit it in place.
func (h *Handler) sendPracticeCard(chatID int64, st *chatState) error {
	text, kb := renderPractice(st.session)

	msg := newHTMLMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = *kb
	}

	sent, err := h.bot.Send(msg)
	if err != nil {
		h.logger.Error("failed to send practice card", zap.Error(err))
		return err
	}

	st.messageID = sent.MessageID
	return nil
}

// updatePracticeCard edits the tracked card message after a state change.
func (h *Handler) updatePracticeCard(chatID int64, st *chatState) error {
	text, kb := renderPractice(st.session)

	edit := tgbotapi.NewEditMessageText(chatID, st.messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = kb

	return h.send(edit)
}

// renderPractice builds the card text and keyboard for the session cursor.
func renderPractice(s *session.Controller) (string, *tgbotapi.InlineKeyboardMarkup) {
	cur, ok := s.Current()
	if !ok {
		return msgDeckEmpty, nil
	}

	var b strings.Builder

	phaseLabel := "Новые"
	if s.Phase() == session.PhaseReview {
		phaseLabel = "Повторение"
	}
	fmt.Fprintf(&b, "<b>Вопрос %d/%d</b> · %s", s.Position()+1, s.DeckSize(), phaseLabel)
	if s.FocusNewOnly() {
		b.WriteString(" · только новые")
	}
	if cur.IsMarked {
		b.WriteString(" 🔖")
	}
	b.WriteString("\n\n")

	b.WriteString(escapeHTML(cur.QuestionText))
	b.WriteString("\n\n")

	for i, opt := range cur.Options {
		line := fmt.Sprintf("%d. %s", i+1, escapeHTML(opt.Text))
		switch {
		case s.Answered() && opt.IsCorrect:
			line = "✅ " + line
		case s.Answered() && opt.Text == s.SelectedAnswer():
			line = "❌ " + line
		case !s.Answered() && s.IsEliminated(opt.Text):
			line = "<s>" + line + "</s>"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if s.Answered() {
		fmt.Fprintf(&b, "\n⏱ %d сек.\n\n<i>%s</i>\n", s.Elapsed(), escapeHTML(cur.Explanation))
		if s.AnalysisMode() && s.NoteDraft() != "" {
			fmt.Fprintf(&b, "\n📝 %s\n", escapeHTML(s.NoteDraft()))
		}
	}

	kb := buildPracticeKeyboard(s, cur)
	return b.String(), &kb
}
