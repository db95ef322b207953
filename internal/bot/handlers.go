package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/service"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "menu":
		return b.handleMenu(msg)
	case "checkin":
		return b.handleCheckin(ctx, msg)
	case "today":
		return b.handleToday(ctx, msg)
	case "summary":
		return b.handleSummary(ctx, msg)
	case "streaks":
		return b.handleStreaks(ctx, msg)
	case "weekly":
		return b.handleWeeklyStart(ctx, msg)
	case "weekly_cancel":
		return b.handleWeeklyCancel(msg)
	case "weekly_show":
		return b.handleWeeklyShow(ctx, msg)
	case "family_summary":
		return b.handleFamilySummary(ctx, msg)
	case "set_reminder":
		return b.handleSetReminder(ctx, msg)
	case "reminders_on":
		return b.handleRemindersToggle(ctx, msg, true)
	case "reminders_off":
		return b.handleRemindersToggle(ctx, msg, false)
	case "invite":
		return b.handleInvite(ctx, msg)
	case "join":
		return b.handleJoinCommand(ctx, msg)
	case "cancel":
		return b.handleCancel(msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	household, err := b.households.Ensure(ctx, defaultHouseholdName)
	if err != nil {
		return err
	}

	user, created, err := b.users.Register(ctx, msg.From.ID, msg.Chat.ID, household.ID,
		b.config.Timezone, msg.From.FirstName, msg.From.UserName)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("👋 Welcome back, %s!", user.FirstName)
	if created {
		text = fmt.Sprintf("👋 Hi %s! You’re registered.", user.FirstName)
		log.Printf("[info] registered user %d", user.ID)
	}

	b.setMenu(msg.From.ID, menuMain)
	return b.sendWithMenu(msg.Chat.ID, text, menuMain)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID,
		"📌 Commands (or use the bottom menu; /menu to show it)\n"+
			"\n"+
			"Daily\n"+
			"  /checkin  – daily checklist (tap buttons)\n"+
			"  /today    – today status (read-only)\n"+
			"  /summary  – last 7 days (tracked vs success)\n"+
			"  /streaks  – current streaks\n"+
			"\n"+
			"Weekly\n"+
			"  /weekly        – weekly check-in\n"+
			"  /weekly_cancel – cancel weekly check-in\n"+
			"  /weekly_show   – show this week entry\n"+
			"\n"+
			"Family\n"+
			"  /family_summary – household summary\n"+
			"\n"+
			"Reminders\n"+
			"  /set_reminder HH:MM – set your daily reminder time\n"+
			"  /reminders_on       – enable reminders\n"+
			"  /reminders_off      – disable reminders\n"+
			"\n"+
			"Setup\n"+
			"  /start   – register or reconnect\n"+
			"  /invite  – create invite code\n"+
			"  /join <code> – join household\n"+
			"\n"+
			"  /help – this help")
}

func (b *Bot) handleMenu(msg *tgbotapi.Message) error {
	menu := b.currentMenu(msg.From.ID)
	return b.sendWithMenu(msg.Chat.ID, "📌 Menu", menu)
}

func (b *Bot) handleInvite(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireUser(ctx, msg)
	if err != nil || user == nil {
		return err
	}
	if user.HouseholdID == nil {
		return b.sendText(msg.Chat.ID, "❌ You are not linked to a household. Use /start first.")
	}

	code, err := service.GenerateInviteCode()
	if err != nil {
		return err
	}
	if _, err := b.households.CreateInvite(ctx, *user.HouseholdID, code); err != nil {
		return err
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"✅ Invite code created:\n\n`%s`\n\nSend it to a family member and ask them to run:\n`/join %s`",
		code, code))
	reply.ParseMode = tgbotapi.ModeMarkdown
	_, err = b.api.Send(reply)
	return err
}

func (b *Bot) handleJoinCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Usage: /join JOIN-XXXXXX")
	}

	req := service.JoinRequest{
		TelegramID: msg.From.ID,
		ChatID:     msg.Chat.ID,
		FirstName:  msg.From.FirstName,
		Username:   msg.From.UserName,
	}
	result, err := b.wizard.HandleJoin(ctx, req, args)
	if err != nil {
		return err
	}

	b.setMenu(msg.From.ID, menuMain)
	return b.sendWithMenu(msg.Chat.ID, result.Reply, menuMain)
}

func (b *Bot) handleSetReminder(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireUser(ctx, msg)
	if err != nil || user == nil {
		return err
	}

	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Usage: /set_reminder HH:MM (e.g. /set_reminder 21:30)")
	}

	hhmm := service.ParseClock(args)
	if hhmm == "" {
		return b.sendText(msg.Chat.ID,
			"Invalid time. Examples: /set_reminder 21:30, /set_reminder 9:05, /set_reminder 2130")
	}

	if err := b.users.SetReminderTime(ctx, user.ID, hhmm); err != nil {
		return err
	}
	b.rebuildReminders(ctx)

	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Reminder time set to %s", hhmm))
}

func (b *Bot) handleRemindersToggle(ctx context.Context, msg *tgbotapi.Message, enabled bool) error {
	user, err := b.requireUser(ctx, msg)
	if err != nil || user == nil {
		return err
	}

	if err := b.users.SetRemindersEnabled(ctx, user.ID, enabled); err != nil {
		return err
	}
	b.rebuildReminders(ctx)

	if enabled {
		return b.sendText(msg.Chat.ID, "🔔 Reminders enabled")
	}
	return b.sendText(msg.Chat.ID, "🔕 Reminders disabled")
}

// rebuildReminders runs the full-rebuild-on-change strategy; failures
// are logged, never surfaced to the user whose preference change
// already persisted.
func (b *Bot) rebuildReminders(ctx context.Context) {
	if b.reminders == nil {
		return
	}
	if err := b.reminders.RebuildAll(ctx); err != nil {
		log.Printf("rebuild reminders: %v", err)
	}
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireMember(ctx, msg)
	if err != nil || user == nil {
		return err
	}
	text, err := b.summary.TodayText(ctx, user, b.config.Timezone)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleSummary(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireMember(ctx, msg)
	if err != nil || user == nil {
		return err
	}
	text, err := b.summary.WeekSummaryText(ctx, user, b.config.Timezone)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStreaks(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireMember(ctx, msg)
	if err != nil || user == nil {
		return err
	}
	text, err := b.summary.StreaksText(ctx, user, b.config.Timezone)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleFamilySummary(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireMember(ctx, msg)
	if err != nil || user == nil {
		return err
	}
	text, err := b.summary.FamilySummaryText(ctx, user, b.config.Timezone)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleWeeklyStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireUser(ctx, msg)
	if err != nil || user == nil {
		return err
	}

	state, prompt := b.wizard.StartWeekly(user)
	b.setWizard(msg.From.ID, state)
	return b.sendText(msg.Chat.ID, prompt)
}

func (b *Bot) handleWeeklyCancel(msg *tgbotapi.Message) error {
	b.clearWizard(msg.From.ID)
	return b.sendText(msg.Chat.ID, "✅ Weekly check-in cancelled.")
}

func (b *Bot) handleWeeklyShow(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.requireUser(ctx, msg)
	if err != nil || user == nil {
		return err
	}

	weekStart := b.wizard.CurrentWeekStart(user)
	entry, err := b.weekly.Find(ctx, user.ID, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b.sendText(msg.Chat.ID, fmt.Sprintf(
				"📭 No weekly check-in saved for week starting %s.\nUse /weekly", weekStart))
		}
		return err
	}

	return b.sendText(msg.Chat.ID, service.WeeklyShowText(entry))
}

func (b *Bot) handleReminderWizardStart(msg *tgbotapi.Message) error {
	state, prompt := b.wizard.StartReminder()
	b.setWizard(msg.From.ID, state)
	return b.sendWithMenu(msg.Chat.ID, prompt, menuReminders)
}

func (b *Bot) handleJoinWizardStart(msg *tgbotapi.Message) error {
	state, prompt := b.wizard.StartJoin()
	b.setWizard(msg.From.ID, state)
	return b.sendWithMenu(msg.Chat.ID, prompt, menuSetup)
}

// handleCancel serves the reminders-page Cancel button and /cancel:
// it aborts whichever wizard is active.
func (b *Bot) handleCancel(msg *tgbotapi.Message) error {
	state := b.activeWizard(msg.From.ID)
	if state == nil {
		return b.sendWithMenu(msg.Chat.ID, "Nothing to cancel.", b.currentMenu(msg.From.ID))
	}

	b.clearWizard(msg.From.ID)
	switch state.Kind {
	case service.WizardWeekly:
		return b.sendText(msg.Chat.ID, "✅ Weekly check-in cancelled.")
	case service.WizardReminder:
		return b.sendWithMenu(msg.Chat.ID, "✅ Cancelled reminder setup.", menuReminders)
	case service.WizardJoin:
		return b.sendWithMenu(msg.Chat.ID, "✅ Cancelled join.", menuSetup)
	default:
		return b.sendWithMenu(msg.Chat.ID, "Nothing to cancel.", b.currentMenu(msg.From.ID))
	}
}

// handleWizardInput feeds free text to the active wizard. Precedence
// when dispatching is weekly, then reminder, then join.
func (b *Bot) handleWizardInput(ctx context.Context, msg *tgbotapi.Message, state *service.WizardState) error {
	var result service.WizardResult
	var err error

	switch state.Kind {
	case service.WizardWeekly:
		user, uerr := b.requireUser(ctx, msg)
		if uerr != nil || user == nil {
			return uerr
		}
		result, err = b.wizard.HandleWeekly(ctx, user, state, msg.Text)
	case service.WizardReminder:
		user, uerr := b.requireUser(ctx, msg)
		if uerr != nil || user == nil {
			return uerr
		}
		result, err = b.wizard.HandleReminder(ctx, user, msg.Text)
	case service.WizardJoin:
		req := service.JoinRequest{
			TelegramID: msg.From.ID,
			ChatID:     msg.Chat.ID,
			FirstName:  msg.From.FirstName,
			Username:   msg.From.UserName,
		}
		result, err = b.wizard.HandleJoin(ctx, req, msg.Text)
	default:
		b.clearWizard(msg.From.ID)
		return nil
	}

	if err != nil {
		b.clearWizard(msg.From.ID)
		log.Printf("wizard input from %d: %v", msg.From.ID, err)
		return b.sendText(msg.Chat.ID, "Something went wrong, please try again.")
	}

	if result.Done {
		b.clearWizard(msg.From.ID)
	}
	return b.sendText(msg.Chat.ID, result.Reply)
}
