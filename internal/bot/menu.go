package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bottom-menu pages.
const (
	menuMain      = "main"
	menuDaily     = "daily"
	menuWeekly    = "weekly"
	menuFamily    = "family"
	menuReminders = "reminders"
	menuSetup     = "setup"
)

// Button labels. These are the exact strings the router matches on.
const (
	btnDaily     = "Daily ✅"
	btnWeekly    = "Weekly 📅"
	btnFamily    = "Family 👨‍👩‍👧"
	btnReminders = "Reminders ⏰"
	btnSetup     = "Setup ⚙️"

	btnCheckin = "📝 Check-in"
	btnToday   = "📊 Today"
	btnSummary = "📈 Summary"
	btnStreaks = "🔥 Streaks"

	btnWeeklyStart  = "📅 Weekly"
	btnWeeklyShow   = "📄 Weekly show"
	btnWeeklyCancel = "🛑 Weekly cancel"

	btnFamilySummary = "👨‍👩‍👧 Family summary"

	btnRemindersOn  = "🔔 Reminders on"
	btnRemindersOff = "🔕 Reminders off"
	btnSetReminder  = "⏰ Set reminder"
	btnCancel       = "✖️ Cancel"

	btnInvite = "➕ Invite"
	btnJoin   = "🔗 Join"
	btnHelp   = "❓ Help"

	btnHome = "🏠 Home"
	btnBack = "⬅️ Back"
)

func rows(labels ...[]string) [][]tgbotapi.KeyboardButton {
	out := make([][]tgbotapi.KeyboardButton, 0, len(labels))
	for _, row := range labels {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		out = append(out, buttons)
	}
	return out
}

// menuKeyboard builds the bottom reply keyboard for a menu page.
func menuKeyboard(menu string) tgbotapi.ReplyKeyboardMarkup {
	var layout [][]tgbotapi.KeyboardButton
	switch menu {
	case menuDaily:
		layout = rows(
			[]string{btnCheckin, btnToday},
			[]string{btnSummary, btnStreaks},
			[]string{btnHome, btnBack},
		)
	case menuWeekly:
		layout = rows(
			[]string{btnWeeklyStart, btnWeeklyShow},
			[]string{btnWeeklyCancel},
			[]string{btnHome, btnBack},
		)
	case menuFamily:
		layout = rows(
			[]string{btnFamilySummary},
			[]string{btnHome, btnBack},
		)
	case menuReminders:
		layout = rows(
			[]string{btnRemindersOn, btnRemindersOff},
			[]string{btnSetReminder, btnCancel},
			[]string{btnHome, btnBack},
		)
	case menuSetup:
		layout = rows(
			[]string{btnInvite, btnJoin},
			[]string{btnHelp},
			[]string{btnHome, btnBack},
		)
	default:
		layout = rows(
			[]string{btnDaily, btnWeekly},
			[]string{btnFamily, btnReminders},
			[]string{btnSetup},
		)
	}

	kb := tgbotapi.NewReplyKeyboard(layout...)
	kb.ResizeKeyboard = true
	return kb
}

// goToMenu switches the session's menu page and shows its keyboard.
func (b *Bot) goToMenu(userID, chatID int64, menu, title string) error {
	b.setMenu(userID, menu)
	return b.sendWithMenu(chatID, title, menu)
}

// routeMenuText dispatches free text that is not wizard input. Unknown
// text is silently ignored.
func (b *Bot) routeMenuText(ctx context.Context, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.Text)
	userID := msg.From.ID
	chatID := msg.Chat.ID

	switch text {
	// Global actions.
	case btnHelp:
		return b.handleHelp(msg)
	case btnHome, btnBack:
		return b.goToMenu(userID, chatID, menuMain, "🏠 Main")

	// Page navigation.
	case btnDaily:
		return b.goToMenu(userID, chatID, menuDaily, "✅ Daily")
	case btnWeekly:
		return b.goToMenu(userID, chatID, menuWeekly, "📅 Weekly")
	case btnFamily:
		return b.goToMenu(userID, chatID, menuFamily, "👨‍👩‍👧 Family")
	case btnReminders:
		return b.goToMenu(userID, chatID, menuReminders, "⏰ Reminders")
	case btnSetup:
		return b.goToMenu(userID, chatID, menuSetup, "⚙️ Setup")

	// Daily actions.
	case btnCheckin:
		return b.handleCheckin(ctx, msg)
	case btnToday:
		return b.handleToday(ctx, msg)
	case btnSummary:
		return b.handleSummary(ctx, msg)
	case btnStreaks:
		return b.handleStreaks(ctx, msg)

	// Weekly actions.
	case btnWeeklyStart:
		return b.handleWeeklyStart(ctx, msg)
	case btnWeeklyShow:
		return b.handleWeeklyShow(ctx, msg)
	case btnWeeklyCancel:
		return b.handleWeeklyCancel(msg)

	// Family actions.
	case btnFamilySummary:
		return b.handleFamilySummary(ctx, msg)

	// Reminders actions.
	case btnRemindersOn:
		return b.handleRemindersToggle(ctx, msg, true)
	case btnRemindersOff:
		return b.handleRemindersToggle(ctx, msg, false)
	case btnSetReminder:
		return b.handleReminderWizardStart(msg)
	case btnCancel:
		return b.handleCancel(msg)

	// Setup actions.
	case btnInvite:
		return b.handleInvite(ctx, msg)
	case btnJoin:
		return b.handleJoinWizardStart(msg)
	}

	return nil
}
