package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

type fakeUserLister struct {
	users []model.User
}

func (f *fakeUserLister) ListAll(ctx context.Context) ([]model.User, error) {
	return f.users, nil
}

type fakeReminderEntries struct {
	entries map[string]uint // date -> entry id
	counts  map[uint]int64  // entry id -> saved values
}

func (f *fakeReminderEntries) Find(ctx context.Context, userID uint, date string) (*model.DailyEntry, error) {
	id, ok := f.entries[date]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.DailyEntry{ID: id, UserID: userID, Date: date}, nil
}

func (f *fakeReminderEntries) CountValues(ctx context.Context, entryID uint) (int64, error) {
	return f.counts[entryID], nil
}

type fakeWeeklyFinder struct {
	weeks map[string]bool
}

func (f *fakeWeeklyFinder) Find(ctx context.Context, userID uint, weekStart string) (*model.WeeklyEntry, error) {
	if !f.weeks[weekStart] {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.WeeklyEntry{UserID: userID, WeekStartDate: weekStart}, nil
}

type fakeQueue struct {
	next    cron.EntryID
	specs   map[cron.EntryID]string
	jobs    map[cron.EntryID]func()
	removed []cron.EntryID
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		specs: make(map[cron.EntryID]string),
		jobs:  make(map[cron.EntryID]func()),
	}
}

func (f *fakeQueue) Schedule(spec string, job func()) (cron.EntryID, error) {
	f.next++
	f.specs[f.next] = spec
	f.jobs[f.next] = job
	return f.next, nil
}

func (f *fakeQueue) Remove(id cron.EntryID) {
	f.removed = append(f.removed, id)
	delete(f.specs, id)
	delete(f.jobs, id)
}

type fakeSender struct {
	sent []int64
}

func (f *fakeSender) SendTo(chatID int64, text string) error {
	f.sent = append(f.sent, chatID)
	return nil
}

func reminderTime(hhmm string) *string {
	return &hhmm
}

func newTestReminders(users []model.User) (*ReminderService, *fakeQueue, *fakeSender, *fakeReminderEntries, *fakeWeeklyFinder) {
	queue := newFakeQueue()
	sender := &fakeSender{}
	entries := &fakeReminderEntries{
		entries: make(map[string]uint),
		counts:  make(map[uint]int64),
	}
	weekly := &fakeWeeklyFinder{weeks: make(map[string]bool)}

	svc := NewReminderService(&fakeUserLister{users: users}, entries, weekly, queue, "UTC", "21:00", "12:00")
	svc.SetSender(sender)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 11, 21, 0, 0, 0, time.UTC)
	}
	return svc, queue, sender, entries, weekly
}

func TestRebuildAllInstallsPerEnabledUser(t *testing.T) {
	users := []model.User{
		{ID: 1, ChatID: 11, RemindersEnabled: true, Timezone: "UTC"},
		{ID: 2, ChatID: 22, RemindersEnabled: true, Timezone: "UTC", ReminderTime: reminderTime("07:15")},
		{ID: 3, ChatID: 33, RemindersEnabled: false, Timezone: "UTC"},
	}
	svc, queue, _, _, _ := newTestReminders(users)

	if err := svc.RebuildAll(context.Background()); err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}

	tags := svc.InstalledTags()
	sort.Strings(tags)
	want := []string{
		"daily_checkin:1", "daily_checkin:2",
		"weekly_checkin:1", "weekly_checkin:2",
	}
	if len(tags) != len(want) {
		t.Fatalf("installed %v", tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %s, want %s", i, tags[i], want[i])
		}
	}

	// User 1 falls back to the default time, user 2 uses their own.
	specs := make(map[string]bool)
	for _, s := range queue.specs {
		specs[s] = true
	}
	if !specs["CRON_TZ=UTC 0 0 21 * * *"] {
		t.Errorf("missing default daily spec: %v", specs)
	}
	if !specs["CRON_TZ=UTC 0 15 7 * * *"] {
		t.Errorf("missing custom daily spec: %v", specs)
	}
	if !specs["CRON_TZ=UTC 0 0 12 * * 0"] {
		t.Errorf("missing weekly spec: %v", specs)
	}
}

func TestRebuildReplacesExistingTriggers(t *testing.T) {
	users := []model.User{{ID: 1, ChatID: 11, RemindersEnabled: true, Timezone: "UTC"}}
	svc, queue, _, _, _ := newTestReminders(users)
	ctx := context.Background()

	if err := svc.RebuildAll(ctx); err != nil {
		t.Fatal(err)
	}
	if err := svc.RebuildAll(ctx); err != nil {
		t.Fatal(err)
	}

	if got := len(svc.InstalledTags()); got != 2 {
		t.Errorf("%d triggers after rebuild, want 2", got)
	}
	if len(queue.removed) != 2 {
		t.Errorf("removed %d old triggers, want 2", len(queue.removed))
	}
}

func TestUpdateUser(t *testing.T) {
	users := []model.User{{ID: 1, ChatID: 11, RemindersEnabled: true, Timezone: "UTC"}}
	svc, _, _, _, _ := newTestReminders(users)

	user := users[0]
	if err := svc.UpdateUser(user); err != nil {
		t.Fatal(err)
	}
	if got := len(svc.InstalledTags()); got != 2 {
		t.Fatalf("%d triggers", got)
	}

	user.RemindersEnabled = false
	if err := svc.UpdateUser(user); err != nil {
		t.Fatal(err)
	}
	if got := len(svc.InstalledTags()); got != 0 {
		t.Errorf("%d triggers after disable", got)
	}
}

func TestDailySuppression(t *testing.T) {
	svc, _, _, entries, _ := newTestReminders(nil)
	ctx := context.Background()

	// No entry at all: fire.
	suppress, err := svc.DailySuppressed(ctx, 1, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if suppress {
		t.Error("suppressed without an entry")
	}

	// Entry exists but holds no values: still fire.
	entries.entries["2025-06-11"] = 5
	suppress, err = svc.DailySuppressed(ctx, 1, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if suppress {
		t.Error("suppressed on an empty entry")
	}

	// One saved value suppresses.
	entries.counts[5] = 1
	suppress, err = svc.DailySuppressed(ctx, 1, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !suppress {
		t.Error("not suppressed after a saved value")
	}
}

func TestWeeklySuppression(t *testing.T) {
	svc, _, _, _, weekly := newTestReminders(nil)
	ctx := context.Background()

	suppress, err := svc.WeeklySuppressed(ctx, 1, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if suppress {
		t.Error("suppressed without a weekly entry")
	}

	// A previous week's entry does not count.
	weekly.weeks["2025-06-02"] = true
	suppress, err = svc.WeeklySuppressed(ctx, 1, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if suppress {
		t.Error("suppressed by last week's entry")
	}

	// This week (Monday 2025-06-09) suppresses.
	weekly.weeks["2025-06-09"] = true
	suppress, err = svc.WeeklySuppressed(ctx, 1, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !suppress {
		t.Error("not suppressed by this week's entry")
	}
}

func TestFireSkipsWhenSuppressed(t *testing.T) {
	users := []model.User{{ID: 1, ChatID: 11, RemindersEnabled: true, Timezone: "UTC"}}
	svc, queue, sender, entries, _ := newTestReminders(users)

	if err := svc.RebuildDaily(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("%d jobs installed", len(queue.jobs))
	}

	var fire func()
	for _, job := range queue.jobs {
		fire = job
	}

	fire()
	if len(sender.sent) != 1 || sender.sent[0] != 11 {
		t.Fatalf("sent to %v", sender.sent)
	}

	entries.entries["2025-06-11"] = 5
	entries.counts[5] = 2
	fire()
	if len(sender.sent) != 1 {
		t.Errorf("suppressed fire still sent: %v", sender.sent)
	}
}
