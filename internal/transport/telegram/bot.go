package telegram

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sandevgo/snipbot/internal/config"
	"github.com/sandevgo/snipbot/internal/core"
	"github.com/sandevgo/snipbot/internal/service/inspect"
	"github.com/sandevgo/snipbot/internal/service/session"
	"github.com/sandevgo/snipbot/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const (
	toastOpened        = "Opening..."
	toastClosed        = "Closed"
	toastNotYours      = "This belongs to someone else"
	toastExpired       = "This has expired"
	toastSessionActive = "Close your open file first"
	toastFailed        = "Something went wrong"
)

type dispatcher interface {
	Dispatch(ctx context.Context, msg core.Message)
	Wait()
}

type activator interface {
	Activate(ctx context.Context, id string, by core.SessionKey) error
}

type closer interface {
	Close(ctx context.Context, id string, by core.SessionKey) error
}

type Handlers struct {
	Dispatcher dispatcher
	Router     core.CmdRouter
	Controls   activator
	Views      closer
}

type Bot struct {
	bot       *tele.Bot
	cfg       *config.TelegramConfig
	messenger *Messenger
	handlers  Handlers
}

// NewAPI connects to Telegram. The returned bot backs both the messenger and
// the update loop.
func NewAPI(cfg *config.TelegramConfig) (*tele.Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return b, nil
}

func NewBot(
	ctx context.Context,
	b *tele.Bot,
	cfg *config.TelegramConfig,
	messenger *Messenger,
	handlers Handlers,
) *Bot {
	ctx = log.With(ctx, "transport", "telegram")
	bot := &Bot{
		bot:       b,
		cfg:       cfg,
		messenger: messenger,
		handlers:  handlers,
	}

	// Use context from Signal with logger
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Middleware: only serve allowed chats
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !bot.chatAllowed(c.Chat()) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle(tele.OnText, bot.handleText)
	b.Handle(tele.OnDocument, bot.handleDocument)
	b.Handle(&tele.Btn{Unique: core.ActionOpen}, bot.handleOpen)
	b.Handle(&tele.Btn{Unique: core.ActionClose}, bot.handleClose)

	return bot
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("bot", b.bot.Me.Username).Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	b.handlers.Dispatcher.Wait()
	return nil
}

func (b *Bot) chatAllowed(chat *tele.Chat) bool {
	if chat == nil {
		return false
	}
	return len(b.cfg.AllowedChats) == 0 || slices.Contains(b.cfg.AllowedChats, chat.ID)
}

func (b *Bot) handleText(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	msg := toMessage(c.Message())

	if !msg.AuthorIsBot {
		if reply, ok := b.handlers.Router.Execute(ctx, msg.Key(), msg.Content); ok {
			if _, err := b.messenger.Send(ctx, msg.ChannelID, reply); err != nil {
				log.FromCtx(ctx).Warn().Err(err).Msg("failed to send command reply")
			}
			return nil
		}
	}

	b.handlers.Dispatcher.Dispatch(ctx, msg)
	return nil
}

func (b *Bot) handleDocument(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	b.handlers.Dispatcher.Dispatch(ctx, toMessage(c.Message()))
	return nil
}

func (b *Bot) handleOpen(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	err := b.handlers.Controls.Activate(ctx, c.Callback().Data, sessionKey(c))
	return c.Respond(&tele.CallbackResponse{Text: openToast(err)})
}

func (b *Bot) handleClose(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	err := b.handlers.Views.Close(ctx, c.Callback().Data, sessionKey(c))
	return c.Respond(&tele.CallbackResponse{Text: closeToast(err)})
}

func openToast(err error) string {
	switch {
	case err == nil:
		return toastOpened
	case errors.Is(err, session.ErrForeignActivation):
		return toastNotYours
	case errors.Is(err, session.ErrNotArmed):
		return toastExpired
	case errors.Is(err, session.ErrSessionActive):
		return toastSessionActive
	default:
		return toastFailed
	}
}

func closeToast(err error) string {
	switch {
	case err == nil:
		return toastClosed
	case errors.Is(err, inspect.ErrForeignClose):
		return toastNotYours
	case errors.Is(err, inspect.ErrViewClosed):
		return toastExpired
	default:
		return toastFailed
	}
}
