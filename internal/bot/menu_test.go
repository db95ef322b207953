package bot

import (
	"errors"
	"testing"

	"github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/service"
)

func TestMenuKeyboardLayouts(t *testing.T) {
	cases := []struct {
		menu  string
		rows  int
		first string
	}{
		{menuMain, 3, btnDaily},
		{menuDaily, 3, btnCheckin},
		{menuWeekly, 3, btnWeeklyStart},
		{menuFamily, 2, btnFamilySummary},
		{menuReminders, 3, btnRemindersOn},
		{menuSetup, 3, btnInvite},
		{"unknown", 3, btnDaily}, // falls back to the main page
	}

	for _, tc := range cases {
		kb := menuKeyboard(tc.menu)
		if len(kb.Keyboard) != tc.rows {
			t.Errorf("menu %s: %d rows, want %d", tc.menu, len(kb.Keyboard), tc.rows)
			continue
		}
		if got := kb.Keyboard[0][0].Text; got != tc.first {
			t.Errorf("menu %s: first button %q, want %q", tc.menu, got, tc.first)
		}
		if !kb.ResizeKeyboard {
			t.Errorf("menu %s: keyboard not resized", tc.menu)
		}
	}
}

func TestSubMenusOfferHomeAndBack(t *testing.T) {
	for _, menu := range []string{menuDaily, menuWeekly, menuFamily, menuReminders, menuSetup} {
		kb := menuKeyboard(menu)
		last := kb.Keyboard[len(kb.Keyboard)-1]
		if len(last) != 2 || last[0].Text != btnHome || last[1].Text != btnBack {
			t.Errorf("menu %s: last row %v", menu, last)
		}
	}
}

func TestToInlineKeyboard(t *testing.T) {
	grid := [][]service.Button{
		{{Label: "✅", Data: "hc:1:1:nutrition"}, {Label: "❌", Data: "hc:1:0:nutrition"}},
		{{Label: "🔄 Refresh", Data: "hc:0:refresh:nutrition"}},
	}
	kb := toInlineKeyboard(grid)
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("%d rows", len(kb.InlineKeyboard))
	}
	btn := kb.InlineKeyboard[0][1]
	if btn.Text != "❌" || btn.CallbackData == nil || *btn.CallbackData != "hc:1:0:nutrition" {
		t.Errorf("button = %+v", btn)
	}
}

func TestIsNotModified(t *testing.T) {
	if !isNotModified(errors.New("Bad Request: message is not modified")) {
		t.Error("edit no-op not recognized")
	}
	if isNotModified(errors.New("Bad Request: message to edit not found")) {
		t.Error("unrelated edit error matched")
	}
	if isNotModified(nil) {
		t.Error("nil error matched")
	}
}

func TestSessionState(t *testing.T) {
	b := &Bot{sessions: make(map[int64]*session)}

	if got := b.currentMenu(1); got != menuMain {
		t.Errorf("fresh session menu = %q", got)
	}

	b.setMenu(1, menuWeekly)
	if got := b.currentMenu(1); got != menuWeekly {
		t.Errorf("menu = %q", got)
	}
	if got := b.currentMenu(2); got != menuMain {
		t.Errorf("other user's menu = %q", got)
	}

	if b.activeWizard(1) != nil {
		t.Error("fresh session has a wizard")
	}
	b.setWizard(1, &service.WizardState{Kind: service.WizardWeekly})
	if state := b.activeWizard(1); state == nil || state.Kind != service.WizardWeekly {
		t.Errorf("wizard state = %+v", state)
	}
	b.clearWizard(1)
	if b.activeWizard(1) != nil {
		t.Error("wizard not cleared")
	}

	// Menu survives clearing the wizard.
	if got := b.currentMenu(1); got != menuWeekly {
		t.Errorf("menu after wizard clear = %q", got)
	}
}
