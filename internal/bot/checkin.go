package bot

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/service"
)

func toInlineKeyboard(grid [][]service.Button) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(grid))
	for _, row := range grid {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) handleCheckin(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireMember(ctx, msg)
	if err != nil || user == nil {
		return err
	}

	view, err := b.checkin.Open(ctx, user, b.config.Timezone)
	if err != nil {
		return err
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, service.RenderText(view))
	reply.ReplyMarkup = toInlineKeyboard(service.RenderKeyboard(view))
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) answerCallback(id, toast string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, toast)); err != nil {
		log.Printf("callback ack: %v", err)
	}
}

// isNotModified matches Telegram's rejection of a no-op message edit.
// A refresh with no underlying change hits this path; it is an
// expected outcome, not a failure.
func isNotModified(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}

// handleCallback decodes an action token, applies it against current
// persisted state, and re-renders the message. Unparseable tokens get
// a bare acknowledgement.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	intent, err := service.ParseIntent(cb.Data)
	if err != nil {
		log.Printf("[info] drop callback from %d: %v", cb.From.ID, err)
		b.answerCallback(cb.ID, "")
		return nil
	}

	user, err := b.users.FindByTelegramID(ctx, cb.From.ID)
	if err != nil || user.HouseholdID == nil {
		b.answerCallback(cb.ID, "")
		return nil
	}

	view, err := b.checkin.Open(ctx, user, b.config.Timezone)
	if err != nil {
		b.answerCallback(cb.ID, "Error ❌")
		return err
	}
	if err := b.checkin.Apply(ctx, view, intent); err != nil {
		b.answerCallback(cb.ID, "Error ❌")
		return err
	}

	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	var toast string
	var editErr error
	switch intent.Kind {
	case service.IntentRefresh:
		toast = "Up to date ✅"
		markup := toInlineKeyboard(service.RenderKeyboard(view))
		_, editErr = b.api.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, markup))
	case service.IntentOverview:
		markup := toInlineKeyboard(service.RenderOverviewKeyboard(view))
		_, editErr = b.api.Request(tgbotapi.NewEditMessageTextAndMarkup(
			chatID, messageID, service.RenderOverviewText(view), markup))
	default:
		switch intent.Kind {
		case service.IntentSetValue:
			toast = "Saved ✅"
		case service.IntentBulkSetBooleans:
			toast = "All set ✅"
		}
		markup := toInlineKeyboard(service.RenderKeyboard(view))
		_, editErr = b.api.Request(tgbotapi.NewEditMessageTextAndMarkup(
			chatID, messageID, service.RenderText(view), markup))
	}

	if editErr != nil {
		if isNotModified(editErr) {
			if toast == "" {
				toast = "Up to date ✅"
			}
			b.answerCallback(cb.ID, toast)
			return nil
		}
		log.Printf("edit check-in message for %d: %v", cb.From.ID, editErr)
		b.answerCallback(cb.ID, "Error ❌")
		return nil
	}

	b.answerCallback(cb.ID, toast)
	return nil
}
