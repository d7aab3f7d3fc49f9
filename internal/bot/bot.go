// Package bot delivers matched items to a Telegram chat and lets allowed
// users manage feeds and rules from that chat.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"newswatch/internal/config"
	"newswatch/internal/fetcher"
	"newswatch/internal/model"
	"newswatch/internal/scheduler"
	"newswatch/internal/storage"
	"newswatch/internal/trigger"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RuleSource exposes the active rule set and its reload.
type RuleSource interface {
	Load() trigger.RuleSet
	Reload() error
	Path() string
}

// Checker runs a poll cycle on demand.
type Checker interface {
	Check(ctx context.Context) (scheduler.Summary, error)
}

// Bot is the Telegram bot that handles user commands and sends notifications.
type Bot struct {
	api     telegramAPI
	store   storage.Storage
	cfg     *config.Config
	rules   RuleSource
	checker Checker
	fetcher *fetcher.Fetcher
	limiter *rate.Limiter
	log     *slog.Logger
}

// New creates a Bot with the given Telegram token, storage, and config.
func New(token string, store storage.Storage, cfg *config.Config, rules RuleSource, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:     api,
		store:   store,
		cfg:     cfg,
		rules:   rules,
		fetcher: fetcher.New(http.DefaultClient),
		// Telegram allows roughly 20 messages per second.
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		log:     log,
	}, nil
}

// SetChecker wires the poll loop used by /check.
func (b *Bot) SetChecker(c Checker) {
	b.checker = c
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		if !b.cfg.IsUserAllowed(update.CallbackQuery.From.ID) {
			return
		}
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	if !b.cfg.IsUserAllowed(update.Message.From.ID) {
		b.reply(update.Message.Chat.ID, "Access denied.")
		return
	}
	b.handleCommand(ctx, update.Message)
}

// Notify sends one message per matched item to the configured chat.
func (b *Bot) Notify(ctx context.Context, items []model.Item) error {
	for _, item := range items {
		if err := b.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		b.SendMessage(b.cfg.TelegramChatID, FormatNotification(item, b.cfg.Location))
	}
	b.log.Info("sent notifications", "chat_id", b.cfg.TelegramChatID, "count", len(items))
	return nil
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "feeds", "list":
		b.handleFeeds(ctx, chatID)
	case "add":
		b.handleAdd(ctx, chatID, args)
	case cmdRemove:
		b.handleRemove(ctx, chatID, args)
	case cmdPause:
		b.handleSetActive(ctx, chatID, args, false)
	case cmdResume:
		b.handleSetActive(ctx, chatID, args, true)
	case "rules":
		b.handleRules(chatID)
	case "reload":
		b.handleReload(chatID)
	case "check":
		b.handleCheck(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}
