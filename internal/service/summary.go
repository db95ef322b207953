package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/repository"
)

const streakLookbackDays = 90

// SummaryEntryStore reads daily state for the report views.
type SummaryEntryStore interface {
	Find(ctx context.Context, userID uint, date string) (*model.DailyEntry, error)
	Values(ctx context.Context, entryID uint) (map[uint]string, error)
	ListSince(ctx context.Context, userID uint, since string) ([]model.DailyEntry, error)
	ValuesForDates(ctx context.Context, userID uint, dates []string) ([]repository.DatedValue, error)
}

// HouseholdUserLister lists the members of one household.
type HouseholdUserLister interface {
	ListByHousehold(ctx context.Context, householdID uint) ([]model.User, error)
}

// SummaryService builds the read-only report texts: today, 7-day
// summary, family summary and streaks.
type SummaryService struct {
	entries SummaryEntryStore
	users   HouseholdUserLister
	catalog *CatalogService
	now     func() time.Time
}

func NewSummaryService(entries SummaryEntryStore, users HouseholdUserLister, catalog *CatalogService) *SummaryService {
	return &SummaryService{entries: entries, users: users, catalog: catalog, now: time.Now}
}

func formatPct(numer, denom int) string {
	if denom <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int(math.Round(float64(numer)/float64(denom)*100)))
}

// TodayText renders today's status grouped by category, or a nudge
// when no entry exists yet.
func (s *SummaryService) TodayText(ctx context.Context, user *model.User, fallbackTZ string) (string, error) {
	loc := loadLocation(user.Timezone, fallbackTZ)
	date := LocalToday(s.now(), loc)

	entry, err := s.entries.Find(ctx, user.ID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "📭 No check-in yet today.\nUse /checkin to start.", nil
		}
		return "", err
	}

	habits, err := s.catalog.EnabledHabits(ctx, *user.HouseholdID)
	if err != nil {
		return "", err
	}
	values, err := s.entries.Values(ctx, entry.ID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ Today — %s\n\n", date)
	for _, p := range CheckinPages {
		pageHabits := HabitsForCategory(habits, p)
		if len(pageHabits) == 0 {
			continue
		}
		b.WriteString(CategoryTitle(p) + "\n")
		for _, h := range pageHabits {
			v := DecodeValue(h.Kind, values[h.ID])
			fmt.Fprintf(&b, "%s %s\n", v.Glyph(), strings.TrimSpace(h.Title))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// weekCounts aggregates tracked and successful values per date over
// the given dates.
func weekCounts(rows []repository.DatedValue, kindByHabit map[uint]string) (trackedByDate, successByDate map[string]int) {
	trackedByDate = make(map[string]int)
	successByDate = make(map[string]int)
	for _, r := range rows {
		v := strings.TrimSpace(r.Value)
		if v == "" {
			continue
		}
		trackedByDate[r.Date]++
		if kindByHabit[r.HabitID] == model.HabitKindBoolean && v == "1" {
			successByDate[r.Date]++
		}
	}
	return trackedByDate, successByDate
}

// WeekSummaryText renders the user's last 7 days, tracked vs success.
func (s *SummaryService) WeekSummaryText(ctx context.Context, user *model.User, fallbackTZ string) (string, error) {
	loc := loadLocation(user.Timezone, fallbackTZ)
	dates := LastNDates(s.now(), loc, 7)

	habits, err := s.catalog.EnabledHabits(ctx, *user.HouseholdID)
	if err != nil {
		return "", err
	}
	totalHabits := len(habits)
	kindByHabit := make(map[uint]string, len(habits))
	totalBoolean := 0
	for _, h := range habits {
		kindByHabit[h.ID] = h.Kind
		if h.Kind == model.HabitKindBoolean {
			totalBoolean++
		}
	}

	rows, err := s.entries.ValuesForDates(ctx, user.ID, dates)
	if err != nil {
		return "", err
	}
	trackedByDate, successByDate := weekCounts(rows, kindByHabit)

	var b strings.Builder
	b.WriteString("📊 Summary — last 7 days\n\n")

	overallTracked, overallSuccess := 0, 0
	for _, d := range dates {
		tracked := trackedByDate[d]
		success := successByDate[d]
		overallTracked += tracked
		overallSuccess += success
		fmt.Fprintf(&b, "%s: tracked %d/%d (%s) | success %d/%d (%s)\n",
			d, tracked, totalHabits, formatPct(tracked, totalHabits),
			success, totalBoolean, formatPct(success, totalBoolean))
	}

	trackedTotal := totalHabits * len(dates)
	successTotal := totalBoolean * len(dates)
	fmt.Fprintf(&b, "\nTotal: tracked %d/%d (%s) | success %d/%d (%s)",
		overallTracked, trackedTotal, formatPct(overallTracked, trackedTotal),
		overallSuccess, successTotal, formatPct(overallSuccess, successTotal))

	return b.String(), nil
}

// FamilySummaryText renders the 7-day aggregation for every member of
// the user's household.
func (s *SummaryService) FamilySummaryText(ctx context.Context, user *model.User, fallbackTZ string) (string, error) {
	loc := loadLocation(user.Timezone, fallbackTZ)
	dates := LastNDates(s.now(), loc, 7)

	habits, err := s.catalog.EnabledHabits(ctx, *user.HouseholdID)
	if err != nil {
		return "", err
	}
	totalHabits := len(habits)
	kindByHabit := make(map[uint]string, len(habits))
	totalBoolean := 0
	for _, h := range habits {
		kindByHabit[h.ID] = h.Kind
		if h.Kind == model.HabitKindBoolean {
			totalBoolean++
		}
	}

	members, err := s.users.ListByHousehold(ctx, *user.HouseholdID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("👨‍👩‍👧 Family summary — last 7 days\n\n")

	for _, member := range members {
		rows, err := s.entries.ValuesForDates(ctx, member.ID, dates)
		if err != nil {
			return "", err
		}
		trackedByDate, successByDate := weekCounts(rows, kindByHabit)

		tracked, success := 0, 0
		for _, d := range dates {
			tracked += trackedByDate[d]
			success += successByDate[d]
		}

		name := member.FirstName
		if name == "" {
			name = fmt.Sprintf("%d", member.TelegramID)
		}

		trackedTotal := totalHabits * len(dates)
		successTotal := totalBoolean * len(dates)
		fmt.Fprintf(&b, "%s: tracked %d/%d (%s) | success %d/%d (%s)\n",
			name, tracked, trackedTotal, formatPct(tracked, trackedTotal),
			success, successTotal, formatPct(success, successTotal))
	}

	return strings.TrimSuffix(b.String(), "\n"), nil
}

func isDayPerfect(values map[uint]string, habits []model.Habit) bool {
	for _, h := range habits {
		if h.Kind != model.HabitKindBoolean {
			continue
		}
		if values[h.ID] != "1" {
			return false
		}
	}
	return true
}

// StreaksText renders the check-in streak (any value saved) and the
// perfect streak (every boolean habit "1"), walking back from today.
func (s *SummaryService) StreaksText(ctx context.Context, user *model.User, fallbackTZ string) (string, error) {
	loc := loadLocation(user.Timezone, fallbackTZ)
	today := s.now().In(loc)
	since := today.AddDate(0, 0, -streakLookbackDays).Format("2006-01-02")

	habits, err := s.catalog.EnabledHabits(ctx, *user.HouseholdID)
	if err != nil {
		return "", err
	}

	entries, err := s.entries.ListSince(ctx, user.ID, since)
	if err != nil {
		return "", err
	}
	entryByDate := make(map[string]uint, len(entries))
	for _, e := range entries {
		entryByDate[e.Date] = e.ID
	}

	calcStreak := func(check func(values map[uint]string) bool) (int, error) {
		streak := 0
		day := today
		for i := 0; i <= streakLookbackDays; i++ {
			entryID, ok := entryByDate[day.Format("2006-01-02")]
			if !ok {
				break
			}
			values, err := s.entries.Values(ctx, entryID)
			if err != nil {
				return 0, err
			}
			if !check(values) {
				break
			}
			streak++
			day = day.AddDate(0, 0, -1)
		}
		return streak, nil
	}

	checkinStreak, err := calcStreak(func(values map[uint]string) bool {
		return len(values) > 0
	})
	if err != nil {
		return "", err
	}
	perfectStreak, err := calcStreak(func(values map[uint]string) bool {
		return isDayPerfect(values, habits)
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"🔥 Streaks:\n- Check-in streak (any values): %d day(s)\n- Perfect streak (all ✅ booleans): %d day(s)",
		checkinStreak, perfectStreak), nil
}
