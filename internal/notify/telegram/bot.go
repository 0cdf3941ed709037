// Package telegram is the Telegram notification channel. It also turns the
// /start and /predict commands into calls on the prediction session.
package telegram

import (
	"context"
	"errors"
	"fmt"

	"direction-bot/internal/notify"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/rs/zerolog/log"
)

const (
	welcomeText   = "Welcome to the trading bot!"
	predictAction = "predict"
)

type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) (tgbotapi.UpdatesChannel, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	AnswerCallbackQuery(config tgbotapi.CallbackConfig) (tgbotapi.APIResponse, error)
	StopReceivingUpdates()
}

// PredictFunc runs one prediction cycle, sending its messages to reply.
type PredictFunc func(ctx context.Context, reply notify.Notifier)

// Bot sends messages to a default chat and answers commands in the chat
// they came from.
type Bot struct {
	api    botAPI
	chatID int64
}

// NewBot connects to the Bot API with token. chatID is the default chat for
// Notify; zero disables unsolicited messages.
func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error creating bot: %w", err)
	}
	api.Buffer = 0
	return &Bot{api: api, chatID: chatID}, nil
}

// Notify sends text to the default chat.
func (b *Bot) Notify(ctx context.Context, text string) error {
	if b.chatID == 0 {
		return errors.New("telegram: no chat configured")
	}
	return b.send(ctx, b.chatID, text)
}

// Chat returns a Notifier bound to chatID.
func (b *Bot) Chat(chatID int64) notify.Notifier {
	return notify.Func(func(ctx context.Context, text string) error {
		return b.send(ctx, chatID, text)
	})
}

func (b *Bot) send(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Run polls for updates until ctx is done or the update channel closes.
func (b *Bot) Run(ctx context.Context, predict PredictFunc) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10

	updates, err := b.api.GetUpdatesChan(u)
	if err != nil {
		return err
	}
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, update, predict)
		case <-ctx.Done():
			log.Info().Msg("closing bot")
			return nil
		}
	}
}

func (b *Bot) handle(ctx context.Context, update tgbotapi.Update, predict PredictFunc) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery, predict)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID

	ev := log.Info().Int64("chat", chatID).Str("command", msg.Command())
	if msg.From != nil {
		ev = ev.Str("from", msg.From.UserName)
	}
	ev.Msg("command received")

	switch msg.Command() {
	case "start":
		if err := b.welcome(ctx, chatID); err != nil {
			log.Warn().Err(err).Int64("chat", chatID).Msg("could not send welcome")
		}
	case predictAction:
		predict(ctx, b.Chat(chatID))
	default:
		log.Debug().Str("command", msg.Command()).Msg("ignoring unknown command")
	}
}

// welcome greets chatID with the Predict button.
func (b *Bot) welcome(ctx context.Context, chatID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, welcomeText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Predict", predictAction),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// handleCallback answers a button press and runs the matching action in the
// chat that holds the button.
func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery, predict PredictFunc) {
	if _, err := b.api.AnswerCallbackQuery(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Warn().Err(err).Str("callback", q.ID).Msg("could not answer callback")
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}
	chatID := q.Message.Chat.ID

	switch q.Data {
	case predictAction:
		log.Info().Int64("chat", chatID).Msg("predict button pressed")
		predict(ctx, b.Chat(chatID))
	default:
		log.Debug().Str("data", q.Data).Msg("ignoring unknown callback")
	}
}
