package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/config"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/repository"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/service"
)

const defaultHouseholdName = "Family"

// session is one user's ephemeral state: current bottom menu and the
// active wizard, if any. Not persisted; every wizard is re-enterable
// via its initiating action, so losing it on restart is fine.
type session struct {
	menu   string
	wizard *service.WizardState
}

// Bot aggregates the Telegram API with the domain services.
type Bot struct {
	api        *tgbotapi.BotAPI
	users      *repository.UserRepository
	households *repository.HouseholdRepository
	weekly     *repository.WeeklyRepository
	catalog    *service.CatalogService
	checkin    *service.CheckinService
	summary    *service.SummaryService
	wizard     *service.WizardService
	reminders  *service.ReminderService
	config     *config.Config

	mu       sync.Mutex
	sessions map[int64]*session
}

func New(token string, users *repository.UserRepository, households *repository.HouseholdRepository, weekly *repository.WeeklyRepository, catalog *service.CatalogService, checkin *service.CheckinService, summary *service.SummaryService, wizard *service.WizardService, cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:        api,
		users:      users,
		households: households,
		weekly:     weekly,
		catalog:    catalog,
		checkin:    checkin,
		summary:    summary,
		wizard:     wizard,
		config:     cfg,
		sessions:   make(map[int64]*session),
	}, nil
}

// SetReminders wires the reminder scheduler in after construction; the
// scheduler needs the bot as its Sender, so the two are linked last.
func (b *Bot) SetReminders(reminders *service.ReminderService) {
	b.reminders = reminders
}

// SendTo delivers a plain message, used by the reminder scheduler.
func (b *Bot) SendTo(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	// Active wizards consume free text before any menu label does,
	// in fixed precedence: weekly, reminder, join.
	if state := b.activeWizard(msg.From.ID); state != nil {
		return b.handleWizardInput(ctx, msg, state)
	}

	return b.routeMenuText(ctx, msg)
}

// session helpers

func (b *Bot) getSession(userID int64) *session {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	if !ok {
		s = &session{menu: menuMain}
		b.sessions[userID] = s
	}
	return s
}

func (b *Bot) setMenu(userID int64, menu string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	if !ok {
		s = &session{}
		b.sessions[userID] = s
	}
	s.menu = menu
}

func (b *Bot) currentMenu(userID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[userID]; ok && s.menu != "" {
		return s.menu
	}
	return menuMain
}

func (b *Bot) setWizard(userID int64, state *service.WizardState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[userID]
	if !ok {
		s = &session{menu: menuMain}
		b.sessions[userID] = s
	}
	s.wizard = state
}

func (b *Bot) activeWizard(userID int64) *service.WizardState {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[userID]; ok {
		return s.wizard
	}
	return nil
}

func (b *Bot) clearWizard(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.sessions[userID]; ok {
		s.wizard = nil
	}
}

// send helpers

func (b *Bot) sendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (b *Bot) sendWithMenu(chatID int64, text, menu string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = menuKeyboard(menu)
	_, err := b.api.Send(msg)
	return err
}

// requireUser resolves the registered user for a message, or sends the
// registration guidance and returns nil.
func (b *Bot) requireUser(ctx context.Context, msg *tgbotapi.Message) (*model.User, error) {
	user, err := b.users.FindByTelegramID(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, b.sendText(msg.Chat.ID, "Please run /start first.")
		}
		return nil, err
	}
	return user, nil
}

// requireMember additionally demands a household link.
func (b *Bot) requireMember(ctx context.Context, msg *tgbotapi.Message) (*model.User, error) {
	user, err := b.requireUser(ctx, msg)
	if err != nil || user == nil {
		return nil, err
	}
	if user.HouseholdID == nil {
		return nil, b.sendText(msg.Chat.ID, "You are not linked to a household. Use /start first.")
	}
	return user, nil
}
