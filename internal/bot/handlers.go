package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newswatch/internal/model"
	"newswatch/internal/storage"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to newswatch!

Matching news items from your feeds are posted here.
Rules live in the trigger file on the server; edit it and send /reload.

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Feeds:
/feeds - show all feeds
/add <url> - add a feed
/remove <id> - delete a feed
/pause <id> - stop polling a feed
/resume <id> - resume polling a feed

Rules:
/rules - show the active rules
/reload - recompile the trigger file
/check - poll all feeds now`)
}

func (b *Bot) handleFeeds(ctx context.Context, chatID int64) {
	feeds, err := b.store.ListFeeds(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	if len(feeds) == 0 {
		b.reply(chatID, FormatFeedList(feeds))
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatFeedList(feeds))
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = feedKeyboard(feeds)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send feed list", "error", err)
	}
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args string) {
	url, err := ParseURLArg(args)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("%v\nUsage: /add <url>", err))
		return
	}

	feed, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to fetch feed: %v", err))
		return
	}

	f := &model.Feed{Name: feed.Title, URL: url, IsActive: true}
	if err := b.store.CreateFeed(ctx, f); err != nil {
		b.reply(chatID, fmt.Sprintf("Failed to save feed: %v", err))
		return
	}

	b.reply(chatID, fmt.Sprintf("Feed added: #%d %s\nURL: %s", f.ID, f.Name, f.URL))
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, args string) {
	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /remove <id>")
		return
	}

	feed, ok := b.lookupFeed(ctx, chatID, id)
	if !ok {
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Delete #%d \"%s\"? This cannot be undone.", id, feed.Name))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, delete", fmt.Sprintf("%s:%d", cbDelete, id)),
			tgbotapi.NewInlineKeyboardButtonData("Cancel", cbNoop+":0"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send delete confirmation", "error", err)
	}
}

func (b *Bot) deleteFeed(ctx context.Context, chatID, id int64) {
	feed, ok := b.lookupFeed(ctx, chatID, id)
	if !ok {
		return
	}
	if err := b.store.DeleteFeed(ctx, id); err != nil {
		b.reply(chatID, fmt.Sprintf("Error deleting feed: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d \"%s\" deleted.", id, feed.Name))
}

func (b *Bot) handleSetActive(ctx context.Context, chatID int64, args string, active bool) {
	id, err := ParseIDArg(args)
	if err != nil {
		if active {
			b.reply(chatID, "Usage: /resume <id>")
		} else {
			b.reply(chatID, "Usage: /pause <id>")
		}
		return
	}
	b.setActive(ctx, chatID, id, active)
}

func (b *Bot) setActive(ctx context.Context, chatID, id int64, active bool) {
	feed, ok := b.lookupFeed(ctx, chatID, id)
	if !ok {
		return
	}

	feed.IsActive = active
	if err := b.store.UpdateFeed(ctx, feed); err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Feed #%d \"%s\" %s.", id, feed.Name, statusLabel(active)))
}

func (b *Bot) handleRules(chatID int64) {
	b.reply(chatID, FormatRules(b.rules.Load(), b.rules.Path()))
}

func (b *Bot) handleReload(chatID int64) {
	if err := b.rules.Reload(); err != nil {
		b.log.Warn("reload rules", "error", err)
		b.reply(chatID, fmt.Sprintf("Reload failed, previous rules kept:\n%v", err))
		return
	}
	rules := b.rules.Load()
	b.log.Info("rules reloaded", "rules", len(rules))
	b.reply(chatID, fmt.Sprintf("Reloaded %d rule(s).", len(rules)))
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64) {
	if b.checker == nil {
		b.reply(chatID, "Polling is not available.")
		return
	}
	sum, err := b.checker.Check(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Check failed: %v", err))
		return
	}
	b.reply(chatID, FormatSummary(sum))
}

func (b *Bot) lookupFeed(ctx context.Context, chatID, id int64) (*model.Feed, bool) {
	feed, err := b.store.GetFeed(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		b.reply(chatID, fmt.Sprintf("Feed #%d not found.", id))
		return nil, false
	}
	if err != nil {
		b.reply(chatID, fmt.Sprintf("Error: %v", err))
		return nil, false
	}
	return feed, true
}
