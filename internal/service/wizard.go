package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/repository"
)

// WizardKind identifies the active multi-step dialog, if any. The
// three wizards are mutually exclusive per user.
type WizardKind int

const (
	WizardNone WizardKind = iota
	WizardWeekly
	WizardReminder
	WizardJoin
)

// Weekly wizard steps, a strict linear sequence.
const (
	stepWeight = "weight"
	stepRating = "rating"
	stepNote   = "note"
)

// WizardState is the per-user ephemeral dialog record: current step
// plus fields accumulated so far. It lives only in process memory.
type WizardState struct {
	Kind      WizardKind
	Step      string
	WeekStart string
	Weight    *float64
	Rating    *int
	Note      *string
}

// WizardResult is the outcome of feeding one text input to a wizard.
// Done means the wizard ended (committed or cancelled) and its state
// must be cleared; otherwise Reply re-prompts and the state stays.
type WizardResult struct {
	Reply string
	Done  bool
}

// IsCancelInput recognizes the literal cancel phrases accepted at any
// wizard step.
func IsCancelInput(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == "cancel" || t == "/cancel" || t == "✖️ cancel" || t == "🛑 weekly cancel"
}

func isSkipInput(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "skip")
}

// WeeklyEntryStore commits a finished weekly wizard.
type WeeklyEntryStore interface {
	Upsert(ctx context.Context, entry *model.WeeklyEntry) error
}

// ReminderPrefStore persists the reminder-time wizard's result.
type ReminderPrefStore interface {
	SetReminderTime(ctx context.Context, userID uint, hhmm string) error
}

// InviteRedeemer consumes an invite code atomically.
type InviteRedeemer interface {
	RedeemInvite(ctx context.Context, code string, telegramID, chatID int64, timezone, firstName, username string) (*model.User, error)
}

// Rebuilder reinstalls reminder triggers after a preference change.
type Rebuilder interface {
	RebuildAll(ctx context.Context) error
}

// JoinRequest carries the transport identity of the joining user.
type JoinRequest struct {
	TelegramID int64
	ChatID     int64
	FirstName  string
	Username   string
}

// WizardService drives the three free-text dialogs: weekly check-in,
// reminder-time capture and join-by-code.
type WizardService struct {
	weekly    WeeklyEntryStore
	prefs     ReminderPrefStore
	invites   InviteRedeemer
	reminders Rebuilder
	defaultTZ string
	now       func() time.Time
}

func NewWizardService(weekly WeeklyEntryStore, prefs ReminderPrefStore, invites InviteRedeemer, reminders Rebuilder, defaultTZ string) *WizardService {
	return &WizardService{
		weekly:    weekly,
		prefs:     prefs,
		invites:   invites,
		reminders: reminders,
		defaultTZ: defaultTZ,
		now:       time.Now,
	}
}

// StartWeekly opens the weekly wizard at its first step, keyed to the
// Monday of the user's current local week.
func (s *WizardService) StartWeekly(user *model.User) (*WizardState, string) {
	loc := loadLocation(user.Timezone, s.defaultTZ)
	weekStart := WeekStart(s.now(), loc)

	state := &WizardState{Kind: WizardWeekly, Step: stepWeight, WeekStart: weekStart}
	prompt := fmt.Sprintf(
		"📅 Weekly check-in (week starting %s)\n\n1/3) Weight in kg? (example: 78.5)\nReply with a number, or type `skip`.",
		weekStart)
	return state, prompt
}

// HandleWeekly advances the weekly wizard one step. Validation
// failures re-prompt without advancing; the note step commits.
func (s *WizardService) HandleWeekly(ctx context.Context, user *model.User, state *WizardState, text string) (WizardResult, error) {
	if IsCancelInput(text) {
		return WizardResult{Reply: "✅ Weekly check-in cancelled.", Done: true}, nil
	}

	text = strings.TrimSpace(text)

	switch state.Step {
	case stepWeight:
		if !isSkipInput(text) {
			weight, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
			if err != nil {
				return WizardResult{Reply: "Please enter a number (e.g. 78.5) or `skip`."}, nil
			}
			state.Weight = &weight
		}
		state.Step = stepRating
		return WizardResult{Reply: "2/3) Week rating 1–10?\nReply with a number or type `skip`."}, nil

	case stepRating:
		if !isSkipInput(text) {
			rating, err := strconv.Atoi(text)
			if err != nil || rating < 1 || rating > 10 {
				return WizardResult{Reply: "Please enter an integer 1–10 or `skip`."}, nil
			}
			state.Rating = &rating
		}
		state.Step = stepNote
		return WizardResult{Reply: "3/3) Any note for the week? (optional)\nReply with text or type `skip`."}, nil

	case stepNote:
		if !isSkipInput(text) && text != "" {
			note := text
			state.Note = &note
		}
		entry := &model.WeeklyEntry{
			UserID:        user.ID,
			WeekStartDate: state.WeekStart,
			WeightKg:      state.Weight,
			WeekRating:    state.Rating,
			Note:          state.Note,
		}
		if err := s.weekly.Upsert(ctx, entry); err != nil {
			return WizardResult{}, err
		}
		return WizardResult{Reply: weeklySavedText(entry), Done: true}, nil

	default:
		return WizardResult{Reply: "✅ Weekly check-in cancelled.", Done: true}, nil
	}
}

func weeklySavedText(entry *model.WeeklyEntry) string {
	weight := "—"
	if entry.WeightKg != nil {
		weight = strconv.FormatFloat(*entry.WeightKg, 'f', -1, 64)
	}
	rating := "—"
	if entry.WeekRating != nil {
		rating = strconv.Itoa(*entry.WeekRating)
	}
	note := "—"
	if entry.Note != nil && *entry.Note != "" {
		note = *entry.Note
	}
	return fmt.Sprintf(
		"✅ Weekly check-in saved:\n- Week start: %s\n- Weight: %s\n- Rating: %s\n- Note: %s",
		entry.WeekStartDate, weight, rating, note)
}

// WeeklyShowText renders this week's stored entry, shaped like the
// wizard's commit summary.
func WeeklyShowText(entry *model.WeeklyEntry) string {
	weight := "—"
	if entry.WeightKg != nil {
		weight = strconv.FormatFloat(*entry.WeightKg, 'f', -1, 64)
	}
	rating := "—"
	if entry.WeekRating != nil {
		rating = strconv.Itoa(*entry.WeekRating)
	}
	note := "—"
	if entry.Note != nil && *entry.Note != "" {
		note = *entry.Note
	}
	return fmt.Sprintf(
		"📅 Weekly check-in:\n- Week start: %s\n- Weight: %s\n- Rating: %s\n- Note: %s",
		entry.WeekStartDate, weight, rating, note)
}

// CurrentWeekStart is the Monday of the user's current local week.
func (s *WizardService) CurrentWeekStart(user *model.User) string {
	loc := loadLocation(user.Timezone, s.defaultTZ)
	return WeekStart(s.now(), loc)
}

// StartReminder opens the single-step reminder-time wizard.
func (s *WizardService) StartReminder() (*WizardState, string) {
	state := &WizardState{Kind: WizardReminder, Step: "time"}
	prompt := "⏰ Set daily reminder\n\nSend time (e.g. 21:30, 9:05, 21-30, 2130)\nType 'cancel' to stop."
	return state, prompt
}

// HandleReminder validates the time, persists it (force-enabling
// reminders) and triggers a full scheduler rebuild.
func (s *WizardService) HandleReminder(ctx context.Context, user *model.User, text string) (WizardResult, error) {
	if IsCancelInput(text) {
		return WizardResult{Reply: "✅ Reminder setup cancelled.", Done: true}, nil
	}

	hhmm := ParseClock(text)
	if hhmm == "" {
		return WizardResult{Reply: "Invalid time. Examples: 21:30, 9:05, 21-30, 2130. Or type 'cancel'."}, nil
	}

	if err := s.prefs.SetReminderTime(ctx, user.ID, hhmm); err != nil {
		return WizardResult{}, err
	}
	if err := s.reminders.RebuildAll(ctx); err != nil {
		log.Printf("rebuild reminders: %v", err)
	}

	return WizardResult{Reply: fmt.Sprintf("✅ Reminder time set to %s", hhmm), Done: true}, nil
}

// StartJoin opens the single-step join-by-code wizard.
func (s *WizardService) StartJoin() (*WizardState, string) {
	state := &WizardState{Kind: WizardJoin, Step: "code"}
	prompt := "🔗 Join household\n\nSend invite code like: JOIN-XXXXXX\nType 'cancel' to stop."
	return state, prompt
}

// HandleJoin validates the code shape, then delegates to the atomic
// invite redemption. A well-formed but consumed code ends the wizard
// with the guidance message.
func (s *WizardService) HandleJoin(ctx context.Context, req JoinRequest, text string) (WizardResult, error) {
	if IsCancelInput(text) {
		return WizardResult{Reply: "✅ Join cancelled.", Done: true}, nil
	}

	code := NormalizeInviteCode(text)
	if !ValidInviteCode(code) {
		return WizardResult{Reply: "Invalid code. Send JOIN-XXXXXX or type 'cancel'."}, nil
	}

	_, err := s.invites.RedeemInvite(ctx, code, req.TelegramID, req.ChatID, s.defaultTZ, req.FirstName, req.Username)
	if err != nil {
		if isInviteInvalid(err) {
			return WizardResult{Reply: "❌ Invalid or already used invite code.", Done: true}, nil
		}
		return WizardResult{}, err
	}

	return WizardResult{Reply: "✅ Joined the household! You’re ready for daily check-ins.", Done: true}, nil
}

func isInviteInvalid(err error) bool {
	return errors.Is(err, repository.ErrInviteInvalid)
}
