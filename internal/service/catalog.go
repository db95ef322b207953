package service

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
)

// Category is one of the five fixed check-in sections.
type Category string

const (
	CategoryNutrition  Category = "nutrition"
	CategoryActivity   Category = "activity"
	CategorySleep      Category = "sleep"
	CategoryDiscipline Category = "discipline"
	CategoryMental     Category = "mental"
)

// CheckinPages is the fixed page order of the check-in view.
var CheckinPages = []Category{
	CategoryNutrition,
	CategoryActivity,
	CategorySleep,
	CategoryDiscipline,
	CategoryMental,
}

// keywordRule maps a title substring to a category. Matching is
// case-folded, first match wins; titles matching nothing fall through
// to discipline.
type keywordRule struct {
	substr   string
	category Category
}

var keywordRules = []keywordRule{
	// Mental
	{"настр", CategoryMental},
	// Sleep & recovery
	{"сон", CategorySleep},
	{"до сну", CategorySleep},
	{"телефон", CategorySleep},
	{"розтяж", CategorySleep},
	{"віднов", CategorySleep},
	// Activity
	{"актив", CategoryActivity},
	{"шаг", CategoryActivity},
	{"крок", CategoryActivity},
	{"скакал", CategoryActivity},
	{"тренув", CategoryActivity},
	{"прогуля", CategoryActivity},
	// Nutrition
	{"кави", CategoryNutrition},
	{"кава", CategoryNutrition},
	{"алког", CategoryNutrition},
	{"вода", CategoryNutrition},
	{"їсти", CategoryNutrition},
	{"снідан", CategoryNutrition},
	{"солод", CategoryNutrition},
	{"тарілк", CategoryNutrition},
}

// Classify assigns a habit title to its presentation category. The
// mapping is deterministic and total; discipline is the catch-all.
func Classify(title string) Category {
	t := strings.ToLower(title)
	for _, rule := range keywordRules {
		if strings.Contains(t, rule.substr) {
			return rule.category
		}
	}
	return CategoryDiscipline
}

// CategoryTitle is the display heading for a category.
func CategoryTitle(cat Category) string {
	switch cat {
	case CategoryNutrition:
		return "🥗 Nutrition"
	case CategoryActivity:
		return "🏃 Activity"
	case CategorySleep:
		return "😴 Sleep & recovery"
	case CategoryMental:
		return "🧠 Mental"
	case CategoryDiscipline:
		return "🧹 Discipline"
	default:
		return "🧩 Other"
	}
}

// ClampCategory maps unknown categories to the first page.
func ClampCategory(cat Category) Category {
	for _, p := range CheckinPages {
		if cat == p {
			return cat
		}
	}
	return CheckinPages[0]
}

// CategoryIndex is the zero-based page position of a category.
func CategoryIndex(cat Category) int {
	for i, p := range CheckinPages {
		if cat == p {
			return i
		}
	}
	return 0
}

// HabitsForCategory filters habits classified into one category,
// preserving catalog order.
func HabitsForCategory(habits []model.Habit, cat Category) []model.Habit {
	cat = ClampCategory(cat)
	var out []model.Habit
	for _, h := range habits {
		if Classify(h.Title) == cat {
			out = append(out, h)
		}
	}
	return out
}

// HabitStore is the catalog's slice of the storage gateway.
type HabitStore interface {
	ListEnabled(ctx context.Context, householdID uint) ([]model.Habit, error)
	Upsert(ctx context.Context, householdID uint, title, kind string, sortOrder int) (created bool, err error)
}

// CatalogService resolves and seeds a household's habit catalog.
type CatalogService struct {
	habits HabitStore
}

func NewCatalogService(habits HabitStore) *CatalogService {
	return &CatalogService{habits: habits}
}

func (s *CatalogService) EnabledHabits(ctx context.Context, householdID uint) ([]model.Habit, error) {
	return s.habits.ListEnabled(ctx, householdID)
}

// NormalizeTitle strips whitespace and accidental surrounding quotes
// from a habit title read from a fields file.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(title)
	t = strings.Trim(t, `"`)
	t = strings.Trim(t, `'`)
	return t
}

// InferKind derives the habit kind from its title: mood habits are
// choice, everything else boolean.
func InferKind(title string) string {
	if strings.Contains(strings.ToLower(title), "настр") {
		return model.HabitKindChoice
	}
	return model.HabitKindBoolean
}

// SeedFromFile upserts one habit per non-comment line of the fields
// file, assigning sort order by file position. Returns the number of
// habits touched.
func (s *CatalogService) SeedFromFile(ctx context.Context, householdID uint, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open fields file: %w", err)
	}
	defer f.Close()

	touched := 0
	order := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		title := NormalizeTitle(scanner.Text())
		if title == "" || strings.HasPrefix(title, "#") {
			continue
		}
		if _, err := s.habits.Upsert(ctx, householdID, title, InferKind(title), order); err != nil {
			return touched, err
		}
		touched++
		order++
	}
	if err := scanner.Err(); err != nil {
		return touched, fmt.Errorf("read fields file: %w", err)
	}
	return touched, nil
}
