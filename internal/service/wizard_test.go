package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"
	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/repository"
)

type fakeWeeklyStore struct {
	saved *model.WeeklyEntry
}

func (f *fakeWeeklyStore) Upsert(ctx context.Context, entry *model.WeeklyEntry) error {
	copied := *entry
	f.saved = &copied
	return nil
}

type fakePrefStore struct {
	userID uint
	hhmm   string
}

func (f *fakePrefStore) SetReminderTime(ctx context.Context, userID uint, hhmm string) error {
	f.userID = userID
	f.hhmm = hhmm
	return nil
}

type fakeRedeemer struct {
	err  error
	code string
}

func (f *fakeRedeemer) RedeemInvite(ctx context.Context, code string, telegramID, chatID int64, timezone, firstName, username string) (*model.User, error) {
	f.code = code
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: 2, TelegramID: telegramID, ChatID: chatID}, nil
}

type fakeRebuilder struct {
	calls int
}

func (f *fakeRebuilder) RebuildAll(ctx context.Context) error {
	f.calls++
	return nil
}

func newTestWizard() (*WizardService, *fakeWeeklyStore, *fakePrefStore, *fakeRedeemer, *fakeRebuilder) {
	weekly := &fakeWeeklyStore{}
	prefs := &fakePrefStore{}
	invites := &fakeRedeemer{}
	rebuilder := &fakeRebuilder{}
	svc := NewWizardService(weekly, prefs, invites, rebuilder, "UTC")
	svc.now = func() time.Time {
		return time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC) // Wednesday
	}
	return svc, weekly, prefs, invites, rebuilder
}

func testUser() *model.User {
	hh := uint(1)
	return &model.User{ID: 1, TelegramID: 100, ChatID: 100, HouseholdID: &hh, Timezone: "UTC"}
}

func TestWeeklyWizardFullFlow(t *testing.T) {
	svc, weekly, _, _, _ := newTestWizard()
	ctx := context.Background()
	user := testUser()

	state, prompt := svc.StartWeekly(user)
	if state.WeekStart != "2025-06-09" {
		t.Errorf("week start = %s", state.WeekStart)
	}
	if !strings.Contains(prompt, "2025-06-09") {
		t.Errorf("prompt missing week start: %q", prompt)
	}

	res, err := svc.HandleWeekly(ctx, user, state, "78,5")
	if err != nil || res.Done {
		t.Fatalf("weight step: %+v, %v", res, err)
	}
	res, err = svc.HandleWeekly(ctx, user, state, "8")
	if err != nil || res.Done {
		t.Fatalf("rating step: %+v, %v", res, err)
	}
	res, err = svc.HandleWeekly(ctx, user, state, "felt good")
	if err != nil {
		t.Fatalf("note step: %v", err)
	}
	if !res.Done {
		t.Fatal("wizard did not finish")
	}

	if weekly.saved == nil {
		t.Fatal("nothing saved")
	}
	if weekly.saved.WeekStartDate != "2025-06-09" {
		t.Errorf("saved week = %s", weekly.saved.WeekStartDate)
	}
	if weekly.saved.WeightKg == nil || *weekly.saved.WeightKg != 78.5 {
		t.Errorf("saved weight = %v", weekly.saved.WeightKg)
	}
	if weekly.saved.WeekRating == nil || *weekly.saved.WeekRating != 8 {
		t.Errorf("saved rating = %v", weekly.saved.WeekRating)
	}
	if weekly.saved.Note == nil || *weekly.saved.Note != "felt good" {
		t.Errorf("saved note = %v", weekly.saved.Note)
	}
	if !strings.Contains(res.Reply, "78.5") || !strings.Contains(res.Reply, "felt good") {
		t.Errorf("summary reply = %q", res.Reply)
	}
}

func TestWeeklyWizardSkips(t *testing.T) {
	svc, weekly, _, _, _ := newTestWizard()
	ctx := context.Background()
	user := testUser()

	state, _ := svc.StartWeekly(user)
	for _, input := range []string{"skip", "SKIP", "skip"} {
		res, err := svc.HandleWeekly(ctx, user, state, input)
		if err != nil {
			t.Fatal(err)
		}
		if res.Done {
			break
		}
	}

	if weekly.saved == nil {
		t.Fatal("nothing saved")
	}
	if weekly.saved.WeightKg != nil || weekly.saved.WeekRating != nil || weekly.saved.Note != nil {
		t.Errorf("skipped fields persisted: %+v", weekly.saved)
	}
}

func TestWeeklyWizardSkipsThenNote(t *testing.T) {
	svc, weekly, _, _, _ := newTestWizard()
	ctx := context.Background()
	user := testUser()

	state, _ := svc.StartWeekly(user)
	for _, input := range []string{"skip", "skip"} {
		if _, err := svc.HandleWeekly(ctx, user, state, input); err != nil {
			t.Fatal(err)
		}
	}
	res, err := svc.HandleWeekly(ctx, user, state, "felt good")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Fatal("wizard did not finish")
	}

	if weekly.saved == nil {
		t.Fatal("nothing saved")
	}
	if weekly.saved.WeightKg != nil || weekly.saved.WeekRating != nil {
		t.Errorf("skipped fields persisted: %+v", weekly.saved)
	}
	if weekly.saved.Note == nil || *weekly.saved.Note != "felt good" {
		t.Errorf("note = %v", weekly.saved.Note)
	}
}

func TestWeeklyWizardValidationReprompts(t *testing.T) {
	svc, weekly, _, _, _ := newTestWizard()
	ctx := context.Background()
	user := testUser()

	state, _ := svc.StartWeekly(user)

	res, err := svc.HandleWeekly(ctx, user, state, "heavy")
	if err != nil {
		t.Fatal(err)
	}
	if res.Done || state.Step != stepWeight {
		t.Errorf("invalid weight advanced the wizard: step=%s done=%v", state.Step, res.Done)
	}

	if _, err := svc.HandleWeekly(ctx, user, state, "80"); err != nil {
		t.Fatal(err)
	}
	for _, bad := range []string{"0", "11", "ten"} {
		res, err := svc.HandleWeekly(ctx, user, state, bad)
		if err != nil {
			t.Fatal(err)
		}
		if res.Done || state.Step != stepRating {
			t.Errorf("rating %q advanced the wizard", bad)
		}
	}

	if weekly.saved != nil {
		t.Error("saved before the note step")
	}
}

func TestWeeklyWizardCancel(t *testing.T) {
	svc, weekly, _, _, _ := newTestWizard()
	ctx := context.Background()
	user := testUser()

	state, _ := svc.StartWeekly(user)
	for _, phrase := range []string{"cancel", "/cancel", "✖️ Cancel", "🛑 Weekly cancel"} {
		res, err := svc.HandleWeekly(ctx, user, state, phrase)
		if err != nil {
			t.Fatal(err)
		}
		if !res.Done {
			t.Errorf("%q did not cancel", phrase)
		}
	}
	if weekly.saved != nil {
		t.Error("cancel persisted data")
	}
}

func TestReminderWizard(t *testing.T) {
	svc, _, prefs, _, rebuilder := newTestWizard()
	ctx := context.Background()
	user := testUser()

	res, err := svc.HandleReminder(ctx, user, "not a time")
	if err != nil {
		t.Fatal(err)
	}
	if res.Done {
		t.Error("invalid time ended the wizard")
	}

	res, err = svc.HandleReminder(ctx, user, "2130")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Error("valid time did not finish")
	}
	if prefs.hhmm != "21:30" || prefs.userID != 1 {
		t.Errorf("persisted %q for user %d", prefs.hhmm, prefs.userID)
	}
	if rebuilder.calls != 1 {
		t.Errorf("rebuild called %d times", rebuilder.calls)
	}
	if !strings.Contains(res.Reply, "21:30") {
		t.Errorf("reply = %q", res.Reply)
	}

	res, err = svc.HandleReminder(ctx, user, "cancel")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Error("cancel did not finish")
	}
}

func TestJoinWizard(t *testing.T) {
	svc, _, _, invites, _ := newTestWizard()
	ctx := context.Background()
	req := JoinRequest{TelegramID: 100, ChatID: 100, FirstName: "Ann"}

	res, err := svc.HandleJoin(ctx, req, "not-a-code")
	if err != nil {
		t.Fatal(err)
	}
	if res.Done {
		t.Error("malformed code ended the wizard")
	}

	res, err = svc.HandleJoin(ctx, req, " join-ab12cd ")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Error("valid code did not finish")
	}
	if invites.code != "JOIN-AB12CD" {
		t.Errorf("redeemed %q", invites.code)
	}
}

func TestJoinWizardConsumedCode(t *testing.T) {
	svc, _, _, invites, _ := newTestWizard()
	invites.err = repository.ErrInviteInvalid
	ctx := context.Background()

	res, err := svc.HandleJoin(ctx, JoinRequest{TelegramID: 100}, "JOIN-AB12CD")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Done {
		t.Error("consumed code should end the wizard")
	}
	if !strings.Contains(res.Reply, "Invalid or already used") {
		t.Errorf("reply = %q", res.Reply)
	}
}

func TestCurrentWeekStart(t *testing.T) {
	svc, _, _, _, _ := newTestWizard()
	if got := svc.CurrentWeekStart(testUser()); got != "2025-06-09" {
		t.Errorf("CurrentWeekStart = %s", got)
	}
}
