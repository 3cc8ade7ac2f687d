package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
	"github.com/aliskhannn/mcq-bank-bot/internal/session"
)

// buildPracticeKeyboard builds the action keyboard under the practice card.
// Before answering: one row per option (answer + eliminate toggle). After
// answering: the advance button. Toggles and annotation actions follow.
func buildPracticeKeyboard(s *session.Controller, cur entities.Question) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	if !s.Answered() {
		for i, opt := range cur.Options {
			elimLabel := "🚫"
			if s.IsEliminated(opt.Text) {
				elimLabel = "↩️"
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("%d. %s", i+1, truncate(opt.Text, 32)),
					buildAnswerCallback(i),
				),
				tgbotapi.NewInlineKeyboardButtonData(elimLabel, buildEliminateCallback(i)),
			))
		}
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Далее ▶️", buildNextCallback()),
		))
	}

	if s.Phase() == session.PhaseReview && s.ReviewCount() > 1 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔀 Перемешать", buildShuffleCallback()),
		))
	}

	focusLabel := "🎯 Только новые: выкл"
	if s.FocusNewOnly() {
		focusLabel = "🎯 Только новые: вкл"
	}
	analysisLabel := "🔍 Анализ: выкл"
	if s.AnalysisMode() {
		analysisLabel = "🔍 Анализ: вкл"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(focusLabel, buildFocusCallback()),
		tgbotapi.NewInlineKeyboardButtonData(analysisLabel, buildAnalysisCallback()),
	))

	if s.AnalysisMode() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Заметка", buildNoteCallback()),
		))
	}

	markLabel := "🔖 Отметить"
	if cur.IsMarked {
		markLabel = "🔖 Снять отметку"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(markLabel, buildMarkCallback()),
		tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", buildDeleteCallback()),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// buildEvictionKeyboard builds the confirmation keyboard for an import that
// evicts the oldest questions.
func buildEvictionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Продолжить", buildEvictConfirmCallback()),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", buildEvictCancelCallback()),
		),
	)
}
