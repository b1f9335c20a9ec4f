package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"daily-tracker/internal/model"
	"daily-tracker/internal/repository"
	"daily-tracker/internal/service"
)

// Services are the operations the bot drives.
type Services struct {
	Users      *repository.UserRepository
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Routines   *service.RoutineService
	Aggregator *service.CompletionAggregator
	Reminders  *service.ReminderService
}

// sender is the part of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type inputKind int

const (
	inputNone inputKind = iota
	inputTask
	inputCategory
	inputRoutine
)

// Bot aggregates Telegram API with services.
type Bot struct {
	api    *tgbotapi.BotAPI
	client sender
	svc    Services
	log    *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending map[int64]inputKind
}

func New(token string, svc Services, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := newBot(api, svc, log)
	b.api = api
	b.log.Info("bot authorized", zap.String("account", api.Self.UserName))
	return b, nil
}

func newBot(client sender, svc Services, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		client:  client,
		svc:     svc,
		log:     log.Named("bot"),
		now:     time.Now,
		pending: make(map[int64]inputKind),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.api == nil {
		return errors.New("bot has no telegram connection")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	return nil
}

// handleUpdate gives every update its own read cache.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx = service.WithRequestCache(ctx)
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.log.Error("handle callback", zap.Error(err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.log.Error("handle message", zap.Error(err))
		}
	}
}

// SendDailyReports sends a summary to every Telegram user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.svc.Users.ListTelegramUsers(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if user.TelegramID == nil {
			continue
		}
		text, err := b.svc.Reminders.DailySummary(ctx, user, now)
		if err != nil {
			b.log.Error("build summary", zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		if err := b.sendText(*user.TelegramID, text); err != nil {
			b.log.Error("send summary", zap.Int64("telegram_id", *user.TelegramID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.svc.Users.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.client.Send(msg)
	return err
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.client.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Warn("callback ack", zap.Error(err))
	}
}

func (b *Bot) expect(chatID int64, kind inputKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[chatID] = kind
}

// takePending returns and clears what the chat was asked to type.
func (b *Bot) takePending(chatID int64) inputKind {
	b.mu.Lock()
	defer b.mu.Unlock()
	kind := b.pending[chatID]
	delete(b.pending, chatID)
	return kind
}
