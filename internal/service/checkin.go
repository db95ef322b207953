package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

// EntryStore is the check-in engine's slice of the storage gateway.
type EntryStore interface {
	GetOrCreate(ctx context.Context, userID uint, date string) (*model.DailyEntry, error)
	Values(ctx context.Context, entryID uint) (map[uint]string, error)
	SetValue(ctx context.Context, entryID, habitID uint, value string) error
}

// Button is one rendered action with its callback token. The bot
// layer maps it onto the transport's inline keyboard type.
type Button struct {
	Label string
	Data  string
}

// CheckinView is the state of one user's check-in for one day: the
// entry, the household catalog, the raw stored values and the page
// currently shown.
type CheckinView struct {
	Date   string
	Entry  *model.DailyEntry
	Habits []model.Habit
	Values map[uint]string
	Page   Category
}

// CheckinService renders and mutates a single day's habit values.
type CheckinService struct {
	entries EntryStore
	catalog *CatalogService
	now     func() time.Time
}

func NewCheckinService(entries EntryStore, catalog *CatalogService) *CheckinService {
	return &CheckinService{entries: entries, catalog: catalog, now: time.Now}
}

// Open loads (creating lazily) the user's entry for their local today
// and returns the view positioned on the first page.
func (s *CheckinService) Open(ctx context.Context, user *model.User, fallbackTZ string) (*CheckinView, error) {
	if user.HouseholdID == nil {
		return nil, fmt.Errorf("user %d has no household", user.ID)
	}

	loc := loadLocation(user.Timezone, fallbackTZ)
	date := LocalToday(s.now(), loc)

	entry, err := s.entries.GetOrCreate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	habits, err := s.catalog.EnabledHabits(ctx, *user.HouseholdID)
	if err != nil {
		return nil, err
	}
	values, err := s.entries.Values(ctx, entry.ID)
	if err != nil {
		return nil, err
	}

	return &CheckinView{
		Date:   date,
		Entry:  entry,
		Habits: habits,
		Values: values,
		Page:   CheckinPages[0],
	}, nil
}

// Apply mutates the view (and, for value intents, stored state)
// according to one decoded intent. Navigate, refresh and overview
// never touch storage.
func (s *CheckinService) Apply(ctx context.Context, view *CheckinView, intent Intent) error {
	view.Page = ClampCategory(intent.Page)

	switch intent.Kind {
	case IntentSetValue:
		if err := s.entries.SetValue(ctx, view.Entry.ID, intent.HabitID, intent.Value); err != nil {
			return err
		}
	case IntentBulkSetBooleans:
		for _, h := range HabitsForCategory(view.Habits, view.Page) {
			if h.Kind != model.HabitKindBoolean {
				continue
			}
			if err := s.entries.SetValue(ctx, view.Entry.ID, h.ID, BoolValue(true).Encode()); err != nil {
				return err
			}
		}
	case IntentNavigate, IntentRefresh, IntentOverview:
		return nil
	}

	values, err := s.entries.Values(ctx, view.Entry.ID)
	if err != nil {
		return err
	}
	view.Values = values
	return nil
}

func countDone(habits []model.Habit, values map[uint]string) (done, total int) {
	total = len(habits)
	for _, h := range habits {
		if strings.TrimSpace(values[h.ID]) != "" {
			done++
		}
	}
	return done, total
}

// RenderText builds the check-in message body for the view's page.
// Rendering is pure: identical view state always yields identical
// bytes, so a no-op re-render is detectable upstream.
func RenderText(view *CheckinView) string {
	page := ClampCategory(view.Page)
	pageHabits := HabitsForCategory(view.Habits, page)
	done, total := countDone(pageHabits, view.Values)

	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ Daily check-in — %s\n", view.Date)
	fmt.Fprintf(&b, "%s (page %d/%d) — %d/%d\n\n",
		CategoryTitle(page), CategoryIndex(page)+1, len(CheckinPages), done, total)

	for i, h := range pageHabits {
		v := DecodeValue(h.Kind, view.Values[h.ID])
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, v.Glyph(), strings.TrimSpace(h.Title))
	}

	b.WriteString("\nTap ✅/❌. Use ⬅️/➡️ to change section.\n")
	return strings.TrimSuffix(b.String(), "\n")
}

func categoryRow() []Button {
	return []Button{
		{Label: "🥗", Data: pageToken(CategoryNutrition)},
		{Label: "🏃", Data: pageToken(CategoryActivity)},
		{Label: "😴", Data: pageToken(CategorySleep)},
		{Label: "🧹", Data: pageToken(CategoryDiscipline)},
		{Label: "🧠", Data: pageToken(CategoryMental)},
	}
}

func markCurrent(label string, current bool) string {
	if current {
		return label + "✓"
	}
	return label
}

// RenderKeyboard builds the action grid for the view's page: a
// category-jump row, one row per habit, and a navigation row.
func RenderKeyboard(view *CheckinView) [][]Button {
	page := ClampCategory(view.Page)
	pageHabits := HabitsForCategory(view.Habits, page)

	rows := [][]Button{categoryRow()}

	for _, h := range pageHabits {
		raw := view.Values[h.ID]
		if h.Kind == model.HabitKindChoice {
			row := make([]Button, 0, len(Moods))
			for _, m := range Moods {
				row = append(row, Button{
					Label: markCurrent(string(m), raw == string(m)),
					Data:  valueToken(h.ID, string(m), page),
				})
			}
			rows = append(rows, row)
			continue
		}
		rows = append(rows, []Button{
			{Label: markCurrent("✅", raw == "1"), Data: valueToken(h.ID, "1", page)},
			{Label: markCurrent("❌", raw == "0"), Data: valueToken(h.ID, "0", page)},
		})
	}

	idx := CategoryIndex(page)
	var nav []Button
	if idx > 0 {
		nav = append(nav, Button{Label: "⬅️ Prev", Data: pageToken(CheckinPages[idx-1])})
	}
	if idx < len(CheckinPages)-1 {
		nav = append(nav, Button{Label: "Next ➡️", Data: pageToken(CheckinPages[idx+1])})
	}
	nav = append(nav,
		Button{Label: "📊 Overview", Data: controlToken(ctrlOverview, page)},
		Button{Label: "✅ All", Data: controlToken(ctrlAllOK, page)},
		Button{Label: "🔄 Refresh", Data: controlToken(ctrlRefresh, page)},
	)
	rows = append(rows, nav)

	return rows
}

// RenderOverviewText lists every non-empty category with its done
// count and each habit's status line. Read-only alternate view.
func RenderOverviewText(view *CheckinView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗓️ Daily check-in — %s\n📊 Overview\n\n", view.Date)

	for _, p := range CheckinPages {
		pageHabits := HabitsForCategory(view.Habits, p)
		if len(pageHabits) == 0 {
			continue
		}
		done, total := countDone(pageHabits, view.Values)
		fmt.Fprintf(&b, "%s — %d/%d\n", CategoryTitle(p), done, total)
		for _, h := range pageHabits {
			v := DecodeValue(h.Kind, view.Values[h.ID])
			fmt.Fprintf(&b, "%s %s\n", v.Glyph(), strings.TrimSpace(h.Title))
		}
		b.WriteString("\n")
	}

	b.WriteString("Use buttons below to jump to a section.")
	return b.String()
}

// RenderOverviewKeyboard offers category jumps plus a back button to
// the page the overview was opened from.
func RenderOverviewKeyboard(view *CheckinView) [][]Button {
	return [][]Button{
		categoryRow(),
		{{Label: "⬅️ Back", Data: pageToken(ClampCategory(view.Page))}},
	}
}
