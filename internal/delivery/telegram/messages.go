// messages.go contains message templates and formatting functions for Telegram.

package telegram

import (
	"fmt"
	"strings"

	"github.com/aliskhannn/mcq-bank-bot/internal/bank"
)

const (
	msgWelcome = "Привет! Я храню ваш банк вопросов и провожу тренировки.\n\n" +
		"/import — загрузить вопросы\n" +
		"/practice — начать тренировку\n" +
		"/stats — статистика банка\n" +
		"/help — помощь"
	msgHelp = "Команды:\n\n" +
		"/import — загрузить вопросы из текста\n" +
		"/practice — начать тренировку (сначала новые, затем повторение)\n" +
		"/stats — статистика банка\n" +
		"/cancel — отменить текущее действие\n\n" +
		"Во время тренировки отвечайте кнопками под вопросом. " +
		"До ответа варианты можно вычёркивать — это только пометка, на результат она не влияет."
	msgImportPrompt = "Пришлите текст с вопросами одним сообщением.\n\n" +
		"Формат: вопрос ∆∆∆∆∆ варианты §§§§ объяснение ^^^^^\n" +
		"Варианты — по одному на строке: $ — правильный, €, ¥, ¢ — неправильные."
	msgImportEmpty     = "Пустой текст — нечего импортировать."
	msgImportMalformed = "Неверная структура: блоки «вопрос ∆∆∆∆∆ содержимое» должны идти парами."
	msgImportNoValid   = "Не удалось распознать ни одного вопроса.\n" +
		"Ожидается формат: вопрос ∆∆∆∆∆ варианты §§§§ объяснение ^^^^^"
	msgImportCancelled = "Импорт отменён, банк не изменён."
	msgImportStale     = "Банк изменился, подтверждение устарело. Банк не изменён — запустите /import ещё раз."
	msgDeckEmpty       = "Банк вопросов пуст. Загрузите вопросы командой /import."
	msgSessionDone     = "Сессия завершена. /practice — начать заново."
	msgNoActiveSession = "Нет активной тренировки. /practice — начать."
	msgNotePrompt      = "Пришлите текст заметки одним сообщением."
	msgNoteSaved       = "Заметка сохранена."
	msgQuestionDeleted = "Вопрос удалён."
	msgAnswerFirst     = "Сначала выберите ответ."
	msgCancelled       = "Действие отменено."
	msgNothingToCancel = "Нечего отменять."
	msgUnknownCommand  = "Неизвестная команда. /help — список команд."
	msgInternalError   = "Что-то пошло не так. Попробуйте позже."
)

// evictionPreviewLimit caps how many evicted question texts are shown in the
// confirmation message; the staged batch itself always carries the full list.
const evictionPreviewLimit = 10

// formatImportDone reports a committed import.
func formatImportDone(accepted, evicted, bankSize int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Импортировано вопросов: <b>%d</b>.", accepted)
	if evicted > 0 {
		fmt.Fprintf(&b, "\nУдалено старых вопросов: <b>%d</b>.", evicted)
	}
	fmt.Fprintf(&b, "\nВсего в банке: <b>%d</b>.", bankSize)
	return b.String()
}

// formatEvictionPrompt asks the user to confirm an import that evicts the
// oldest questions.
func formatEvictionPrompt(staged *bank.StagedAdd) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Новых вопросов: <b>%d</b>. Банк переполнен: будут удалены "+
		"<b>%d</b> самых старых вопросов:\n\n", len(staged.Incoming), len(staged.Evicted))

	for i, q := range staged.Evicted {
		if i == evictionPreviewLimit {
			fmt.Fprintf(&b, "… и ещё %d\n", len(staged.Evicted)-evictionPreviewLimit)
			break
		}
		fmt.Fprintf(&b, "• %s\n", escapeHTML(truncate(q.QuestionText, 60)))
	}

	b.WriteString("\nПродолжить?")
	return b.String()
}

// formatStats reports bank totals.
func formatStats(size, newCount, practicedCount, markedCount int) string {
	return fmt.Sprintf(
		"Всего вопросов: <b>%d</b> (максимум %d)\nНовых: <b>%d</b>\nНа повторении: <b>%d</b>\nОтмеченных: <b>%d</b>",
		size, bank.Capacity, newCount, practicedCount, markedCount,
	)
}
