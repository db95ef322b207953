package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/repository"
)

type fakeSummaryStore struct {
	entryByDate map[string]model.DailyEntry
	values      map[uint]map[uint]string // entry id -> habit id -> raw
	dated       map[uint][]repository.DatedValue
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{
		entryByDate: make(map[string]model.DailyEntry),
		values:      make(map[uint]map[uint]string),
		dated:       make(map[uint][]repository.DatedValue),
	}
}

func (f *fakeSummaryStore) Find(ctx context.Context, userID uint, date string) (*model.DailyEntry, error) {
	e, ok := f.entryByDate[date]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}

func (f *fakeSummaryStore) Values(ctx context.Context, entryID uint) (map[uint]string, error) {
	return f.values[entryID], nil
}

func (f *fakeSummaryStore) ListSince(ctx context.Context, userID uint, since string) ([]model.DailyEntry, error) {
	var out []model.DailyEntry
	for _, e := range f.entryByDate {
		if e.Date >= since {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeSummaryStore) ValuesForDates(ctx context.Context, userID uint, dates []string) ([]repository.DatedValue, error) {
	return f.dated[userID], nil
}

type fakeMemberLister struct {
	members []model.User
}

func (f *fakeMemberLister) ListByHousehold(ctx context.Context, householdID uint) ([]model.User, error) {
	return f.members, nil
}

func newTestSummary(store *fakeSummaryStore, members []model.User) (*SummaryService, *model.User) {
	catalog := NewCatalogService(&fakeHabitStore{habits: testHabits()})
	svc := NewSummaryService(store, &fakeMemberLister{members: members}, catalog)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	hh := uint(1)
	user := &model.User{ID: 1, TelegramID: 100, FirstName: "Ann", HouseholdID: &hh, Timezone: "UTC"}
	return svc, user
}

func TestFormatPct(t *testing.T) {
	cases := []struct {
		numer, denom int
		want         string
	}{
		{0, 0, "0%"},
		{5, 0, "0%"},
		{1, 2, "50%"},
		{2, 3, "67%"},
		{3, 3, "100%"},
		{0, 4, "0%"},
	}
	for _, tc := range cases {
		if got := formatPct(tc.numer, tc.denom); got != tc.want {
			t.Errorf("formatPct(%d, %d) = %s, want %s", tc.numer, tc.denom, got, tc.want)
		}
	}
}

func TestTodayTextNoEntry(t *testing.T) {
	svc, user := newTestSummary(newFakeSummaryStore(), nil)

	text, err := svc.TodayText(context.Background(), user, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "📭 No check-in yet today") {
		t.Errorf("text = %q", text)
	}
}

func TestTodayTextGroupsByCategory(t *testing.T) {
	store := newFakeSummaryStore()
	store.entryByDate["2025-06-10"] = model.DailyEntry{ID: 5, UserID: 1, Date: "2025-06-10"}
	store.values[5] = map[uint]string{1: "1", 4: "😊"}
	svc, user := newTestSummary(store, nil)

	text, err := svc.TodayText(context.Background(), user, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "🥗 Nutrition") || !strings.Contains(text, "🧠 Mental") {
		t.Errorf("missing category headings: %q", text)
	}
	if !strings.Contains(text, "✅ Вода 2л") {
		t.Errorf("missing done habit: %q", text)
	}
	if !strings.Contains(text, "😊 Настрій") {
		t.Errorf("missing mood habit: %q", text)
	}
	if !strings.Contains(text, "▫️ Без солодкого") {
		t.Errorf("missing unset habit: %q", text)
	}
}

func TestWeekSummaryText(t *testing.T) {
	store := newFakeSummaryStore()
	store.dated[1] = []repository.DatedValue{
		{Date: "2025-06-10", HabitID: 1, Value: "1"},
		{Date: "2025-06-10", HabitID: 2, Value: "0"},
		{Date: "2025-06-10", HabitID: 4, Value: "😊"},
		{Date: "2025-06-09", HabitID: 1, Value: "1"},
		{Date: "2025-06-09", HabitID: 3, Value: ""}, // empty raw is not tracked
	}
	svc, user := newTestSummary(store, nil)

	text, err := svc.WeekSummaryText(context.Background(), user, "UTC")
	if err != nil {
		t.Fatal(err)
	}

	// 4 habits total, 3 of them boolean.
	if !strings.Contains(text, "2025-06-10: tracked 3/4 (75%) | success 1/3 (33%)") {
		t.Errorf("missing day line: %q", text)
	}
	if !strings.Contains(text, "2025-06-09: tracked 1/4 (25%) | success 1/3 (33%)") {
		t.Errorf("missing second day line: %q", text)
	}
	if !strings.Contains(text, "2025-06-08: tracked 0/4 (0%) | success 0/3 (0%)") {
		t.Errorf("missing empty day line: %q", text)
	}
	// 7 days: tracked 4 of 28, success 2 of 21.
	if !strings.Contains(text, "Total: tracked 4/28 (14%) | success 2/21 (10%)") {
		t.Errorf("missing total line: %q", text)
	}
}

func TestFamilySummaryText(t *testing.T) {
	store := newFakeSummaryStore()
	store.dated[1] = []repository.DatedValue{
		{Date: "2025-06-10", HabitID: 1, Value: "1"},
	}
	members := []model.User{
		{ID: 1, TelegramID: 100, FirstName: "Ann"},
		{ID: 2, TelegramID: 200}, // no first name falls back to telegram id
	}
	svc, user := newTestSummary(store, members)

	text, err := svc.FamilySummaryText(context.Background(), user, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Ann: tracked 1/28") {
		t.Errorf("missing member line: %q", text)
	}
	if !strings.Contains(text, "200: tracked 0/28") {
		t.Errorf("missing fallback name line: %q", text)
	}
}

func TestStreaksText(t *testing.T) {
	store := newFakeSummaryStore()
	// Three consecutive check-in days; only the latest two are perfect.
	store.entryByDate["2025-06-10"] = model.DailyEntry{ID: 10, UserID: 1, Date: "2025-06-10"}
	store.entryByDate["2025-06-09"] = model.DailyEntry{ID: 9, UserID: 1, Date: "2025-06-09"}
	store.entryByDate["2025-06-08"] = model.DailyEntry{ID: 8, UserID: 1, Date: "2025-06-08"}
	perfect := map[uint]string{1: "1", 2: "1", 3: "1"}
	store.values[10] = perfect
	store.values[9] = perfect
	store.values[8] = map[uint]string{1: "1", 2: "0"}
	svc, user := newTestSummary(store, nil)

	text, err := svc.StreaksText(context.Background(), user, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Check-in streak (any values): 3 day(s)") {
		t.Errorf("check-in streak: %q", text)
	}
	if !strings.Contains(text, "Perfect streak (all ✅ booleans): 2 day(s)") {
		t.Errorf("perfect streak: %q", text)
	}
}

func TestStreaksBreakOnGap(t *testing.T) {
	store := newFakeSummaryStore()
	// Entry yesterday but none today: both streaks are zero.
	store.entryByDate["2025-06-09"] = model.DailyEntry{ID: 9, UserID: 1, Date: "2025-06-09"}
	store.values[9] = map[uint]string{1: "1"}
	svc, user := newTestSummary(store, nil)

	text, err := svc.StreaksText(context.Background(), user, "UTC")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "Check-in streak (any values): 0 day(s)") {
		t.Errorf("streak should break on missing today: %q", text)
	}
}
