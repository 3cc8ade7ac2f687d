package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/mcq-bank-bot/internal/bank"
	"github.com/aliskhannn/mcq-bank-bot/internal/domain/entities"
	"github.com/aliskhannn/mcq-bank-bot/internal/session"
)

// Parser turns raw pasted text into question records.
type Parser interface {
	Parse(raw string) ([]entities.Question, error)
}

// BankService is the question bank surface the delivery layer drives.
type BankService interface {
	Snapshot() []entities.Question
	Size() int
	Counts() (newCount, practicedCount, markedCount int)
	StageAdd(incoming []entities.Question) *bank.StagedAdd
	CommitAdd(ctx context.Context, staged *bank.StagedAdd) error
	Delete(ctx context.Context, id string) error
	SetNote(ctx context.Context, id, note string) error
	ToggleMark(ctx context.Context, id string) error
	MarkPracticed(ctx context.Context, id string) error
}

// awaited marks which free-form message the chat is expected to send next.
type awaited int

const (
	awaitedNothing awaited = iota
	awaitedImport
	awaitedNote
)

// chatState holds per-chat practice session and modal input state.
type chatState struct {
	session   *session.Controller
	pending   *bank.StagedAdd
	awaited   awaited
	messageID int // practice card message, edited in place
}

type Handler struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
	parser Parser
	bank   BankService
	chats  map[int64]*chatState
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	logger *zap.Logger,
	parser Parser,
	bank BankService,
) *Handler {
	return &Handler{
		bot:    bot,
		logger: logger,
		parser: parser,
		bank:   bank,
		chats:  make(map[int64]*chatState),
	}
}

// Run processes updates and the one-second session timer on a single
// goroutine, so no two state transitions ever run concurrently.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.handleTick()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleTick() {
	for _, st := range h.chats {
		if st.session != nil {
			st.session.Tick()
		}
	}
}

func (h *Handler) state(chatID int64) *chatState {
	st, ok := h.chats[chatID]
	if !ok {
		st = &chatState{}
		h.chats[chatID] = st
	}
	return st
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID
	st := h.state(chatID)

	if update.Message.IsCommand() {
		hadAwaited := st.awaited != awaitedNothing
		st.awaited = awaitedNothing

		switch update.Message.Command() {
		case "start":
			_ = h.send(newHTMLMessage(chatID, msgWelcome))

		case "help":
			_ = h.send(newHTMLMessage(chatID, msgHelp))

		case "import":
			st.awaited = awaitedImport
			_ = h.send(newHTMLMessage(chatID, msgImportPrompt))

		case "practice":
			_ = h.withErrorHandling(h.handlePractice(st))(ctx, chatID)

		case "stats":
			_ = h.withErrorHandling(h.handleStats())(ctx, chatID)

		case "cancel":
			_ = h.withErrorHandling(h.handleCancel(st, hadAwaited))(ctx, chatID)

		default:
			_ = h.send(newHTMLMessage(chatID, msgUnknownCommand))
		}

		return
	}

	switch st.awaited {
	case awaitedImport:
		st.awaited = awaitedNothing
		_ = h.withErrorHandling(h.handleImportText(st, update.Message.Text))(ctx, chatID)

	case awaitedNote:
		st.awaited = awaitedNothing
		_ = h.withErrorHandling(h.handleNoteText(st, update.Message.Text))(ctx, chatID)

	default:
		_ = h.send(newHTMLMessage(chatID, msgUnknownCommand))
	}
}

// syncSession pushes a fresh bank snapshot into the chat's session, if any.
func (h *Handler) syncSession(st *chatState) {
	if st.session != nil {
		st.session.Sync(h.bank.Snapshot())
	}
}

func (h *Handler) sendError(chatID int64, text string) {
	_ = h.send(newHTMLMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}
