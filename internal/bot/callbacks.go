package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newswatch/internal/model"
)

const (
	cmdRemove = "remove"
	cmdPause  = "pause"
	cmdResume = "resume"

	cbDelete = "delete"
	cbNoop   = "noop"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID

	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	action, idStr, ok := strings.Cut(cb.Data, ":")
	if !ok {
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return
	}

	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cmdRemove:
		b.handleRemove(ctx, chatID, idStr)
	case cbDelete:
		b.deleteFeed(ctx, chatID, id)
	case cmdPause:
		b.setActive(ctx, chatID, id, false)
	case cmdResume:
		b.setActive(ctx, chatID, id, true)
	}
}

func feedKeyboard(feeds []model.Feed) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(feeds))
	for _, f := range feeds {
		toggle := tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Pause #%d", f.ID), fmt.Sprintf("%s:%d", cmdPause, f.ID))
		if !f.IsActive {
			toggle = tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Resume #%d", f.ID), fmt.Sprintf("%s:%d", cmdResume, f.ID))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			toggle,
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Remove #%d", f.ID), fmt.Sprintf("%s:%d", cmdRemove, f.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
