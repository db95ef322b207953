package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

const (
	familyDaily  = "daily_checkin"
	familyWeekly = "weekly_checkin"

	dailyNudgeText  = "⏰ Time for your daily check-in 💪\n\nUse /checkin"
	weeklyNudgeText = "📅 Weekly check-in time ✍️\n\nUse /weekly"
)

// UserLister is the reminder scheduler's view of the user table.
type UserLister interface {
	ListAll(ctx context.Context) ([]model.User, error)
}

// ReminderEntryStore reads the daily state consulted at fire time.
type ReminderEntryStore interface {
	Find(ctx context.Context, userID uint, date string) (*model.DailyEntry, error)
	CountValues(ctx context.Context, entryID uint) (int64, error)
}

// WeeklyStore reads the weekly state consulted at fire time.
type WeeklyStore interface {
	Find(ctx context.Context, userID uint, weekStart string) (*model.WeeklyEntry, error)
}

// Sender delivers a nudge to a chat. The bot implements it.
type Sender interface {
	SendTo(chatID int64, text string) error
}

// JobQueue is the recurring-trigger capability the scheduler installs
// against. SchedulerService implements it.
type JobQueue interface {
	Schedule(spec string, job func()) (cron.EntryID, error)
	Remove(id cron.EntryID)
}

// reminderPayload is the snapshot captured when a trigger is
// installed. Only the suppression state is re-read live at fire time.
type reminderPayload struct {
	userID   uint
	chatID   int64
	timezone string
}

// ReminderService maintains one daily and one weekly recurring trigger
// per reminder-enabled user. Any preference change rebuilds a whole
// trigger family; per-user reinstall exists as an internal primitive.
type ReminderService struct {
	users   UserLister
	entries ReminderEntryStore
	weekly  WeeklyStore
	sender  Sender
	queue   JobQueue

	defaultTZ  string
	dailyTime  string // HH:MM fallback when the user set none
	weeklyTime string // HH:MM, Sunday, org-wide

	mu   sync.Mutex
	jobs map[string]cron.EntryID // "<family>:<userID>" -> handle
	now  func() time.Time
}

func NewReminderService(users UserLister, entries ReminderEntryStore, weekly WeeklyStore, queue JobQueue, defaultTZ, dailyTime, weeklyTime string) *ReminderService {
	return &ReminderService{
		users:      users,
		entries:    entries,
		weekly:     weekly,
		queue:      queue,
		defaultTZ:  defaultTZ,
		dailyTime:  dailyTime,
		weeklyTime: weeklyTime,
		jobs:       make(map[string]cron.EntryID),
		now:        time.Now,
	}
}

// SetSender wires the delivery side in. The bot and the scheduler
// reference each other, so the sender is attached after both exist.
func (s *ReminderService) SetSender(sender Sender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sender = sender
}

func (s *ReminderService) getSender() Sender {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sender
}

func jobTag(family string, userID uint) string {
	return fmt.Sprintf("%s:%d", family, userID)
}

// RebuildAll rebuilds both trigger families. Called after any mutation
// of a user's reminder preferences.
func (s *ReminderService) RebuildAll(ctx context.Context) error {
	if err := s.RebuildDaily(ctx); err != nil {
		return err
	}
	return s.RebuildWeekly(ctx)
}

// RebuildDaily cancels every daily trigger and reinstalls one per
// reminder-enabled user at that user's resolved local time.
func (s *ReminderService) RebuildDaily(ctx context.Context) error {
	return s.rebuildFamily(ctx, familyDaily)
}

// RebuildWeekly cancels every weekly trigger and reinstalls one per
// reminder-enabled user, Sunday at the org-wide time in the user's
// timezone.
func (s *ReminderService) RebuildWeekly(ctx context.Context) error {
	return s.rebuildFamily(ctx, familyWeekly)
}

func (s *ReminderService) rebuildFamily(ctx context.Context, family string) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	s.removeFamily(family)

	for _, user := range users {
		if !user.RemindersEnabled {
			continue
		}
		if err := s.install(family, user); err != nil {
			log.Printf("schedule %s reminder for user %d: %v", family, user.ID, err)
		}
	}
	return nil
}

// UpdateUser reinstalls both triggers for a single user, the
// incremental alternative to a family-wide rebuild.
func (s *ReminderService) UpdateUser(user model.User) error {
	s.removeTag(jobTag(familyDaily, user.ID))
	s.removeTag(jobTag(familyWeekly, user.ID))
	if !user.RemindersEnabled {
		return nil
	}
	if err := s.install(familyDaily, user); err != nil {
		return err
	}
	return s.install(familyWeekly, user)
}

func (s *ReminderService) removeFamily(family string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefix := family + ":"
	for tag, id := range s.jobs {
		if len(tag) > len(prefix) && tag[:len(prefix)] == prefix {
			s.queue.Remove(id)
			delete(s.jobs, tag)
		}
	}
}

func (s *ReminderService) removeTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.jobs[tag]; ok {
		s.queue.Remove(id)
		delete(s.jobs, tag)
	}
}

func (s *ReminderService) install(family string, user model.User) error {
	tzName := user.Timezone
	if tzName == "" {
		tzName = s.defaultTZ
	}

	var spec string
	var err error
	switch family {
	case familyDaily:
		hhmm := s.dailyTime
		if user.ReminderTime != nil && ParseClock(*user.ReminderTime) != "" {
			hhmm = ParseClock(*user.ReminderTime)
		}
		spec, err = DailyCronSpec(hhmm, tzName)
	case familyWeekly:
		spec, err = WeeklyCronSpec(s.weeklyTime, tzName)
	default:
		return fmt.Errorf("unknown reminder family %q", family)
	}
	if err != nil {
		return err
	}

	payload := reminderPayload{userID: user.ID, chatID: user.ChatID, timezone: tzName}
	var job func()
	if family == familyDaily {
		job = func() { s.fireDaily(payload) }
	} else {
		job = func() { s.fireWeekly(payload) }
	}

	id, err := s.queue.Schedule(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", spec, err)
	}

	s.mu.Lock()
	s.jobs[jobTag(family, user.ID)] = id
	s.mu.Unlock()

	log.Printf("[info] %s reminder scheduled for user %d (%s)", family, user.ID, spec)
	return nil
}

// InstalledTags returns the tags of currently installed triggers,
// for introspection.
func (s *ReminderService) InstalledTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tags := make([]string, 0, len(s.jobs))
	for tag := range s.jobs {
		tags = append(tags, tag)
	}
	return tags
}

func (s *ReminderService) fireDaily(p reminderPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	suppress, err := s.DailySuppressed(ctx, p.userID, p.timezone)
	if err != nil {
		log.Printf("daily reminder check for user %d: %v", p.userID, err)
		return
	}
	if suppress {
		return
	}

	sender := s.getSender()
	if sender == nil {
		return
	}
	if err := sender.SendTo(p.chatID, dailyNudgeText); err != nil {
		log.Printf("send daily reminder to %d: %v", p.chatID, err)
	}
}

func (s *ReminderService) fireWeekly(p reminderPayload) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	suppress, err := s.WeeklySuppressed(ctx, p.userID, p.timezone)
	if err != nil {
		log.Printf("weekly reminder check for user %d: %v", p.userID, err)
		return
	}
	if suppress {
		return
	}

	sender := s.getSender()
	if sender == nil {
		return
	}
	if err := sender.SendTo(p.chatID, weeklyNudgeText); err != nil {
		log.Printf("send weekly reminder to %d: %v", p.chatID, err)
	}
}

// DailySuppressed reports whether today's nudge should be skipped:
// true once the user has saved at least one value today.
func (s *ReminderService) DailySuppressed(ctx context.Context, userID uint, tzName string) (bool, error) {
	loc := loadLocation(tzName, s.defaultTZ)
	today := LocalToday(s.now(), loc)

	entry, err := s.entries.Find(ctx, userID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	count, err := s.entries.CountValues(ctx, entry.ID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// WeeklySuppressed reports whether this week's nudge should be
// skipped: true once a weekly entry exists for the current ISO week.
func (s *ReminderService) WeeklySuppressed(ctx context.Context, userID uint, tzName string) (bool, error) {
	loc := loadLocation(tzName, s.defaultTZ)
	weekStart := WeekStart(s.now(), loc)

	_, err := s.weekly.Find(ctx, userID, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
