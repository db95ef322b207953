package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback token prefixes, the wire format between rendered buttons
// and the router. Kept bit-exact for compatibility with buttons
// already rendered in old chats.
const (
	cbPagePrefix  = "hcp:"
	cbValuePrefix = "hc:"

	ctrlRefresh  = "refresh"
	ctrlOverview = "overview"
	ctrlAllOK    = "allok"
)

// IntentKind discriminates the decoded check-in intents.
type IntentKind int

const (
	IntentNavigate IntentKind = iota
	IntentSetValue
	IntentBulkSetBooleans
	IntentRefresh
	IntentOverview
)

// Intent is a typed check-in action decoded from an opaque callback
// token.
type Intent struct {
	Kind    IntentKind
	Page    Category
	HabitID uint
	Value   string // raw wire value for IntentSetValue
}

// ParseIntent decodes the two token shapes:
//
//	hcp:<category>
//	hc:<habitId>:<value>:<category?>
//
// Habit id 0 is reserved for the refresh/overview/allok controls; an
// id-0 token with any other value is rejected rather than passed on
// as a write for a habit that cannot exist. A missing or unknown
// category falls back to the first page.
func ParseIntent(data string) (Intent, error) {
	if page, ok := strings.CutPrefix(data, cbPagePrefix); ok {
		return Intent{
			Kind: IntentNavigate,
			Page: ClampCategory(Category(strings.TrimSpace(page))),
		}, nil
	}

	body, ok := strings.CutPrefix(data, cbValuePrefix)
	if !ok {
		return Intent{}, fmt.Errorf("unknown callback token %q", data)
	}

	parts := strings.SplitN(body, ":", 3)
	if len(parts) < 2 {
		return Intent{}, fmt.Errorf("short callback token %q", data)
	}

	habitID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Intent{}, fmt.Errorf("bad habit id in token %q", data)
	}

	value := parts[1]
	page := CheckinPages[0]
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		page = ClampCategory(Category(strings.TrimSpace(parts[2])))
	}

	if habitID == 0 {
		switch value {
		case ctrlRefresh:
			return Intent{Kind: IntentRefresh, Page: page}, nil
		case ctrlOverview:
			return Intent{Kind: IntentOverview, Page: page}, nil
		case ctrlAllOK:
			return Intent{Kind: IntentBulkSetBooleans, Page: page}, nil
		default:
			return Intent{}, fmt.Errorf("unknown control %q in token %q", value, data)
		}
	}

	if value == "" {
		return Intent{}, fmt.Errorf("empty value in token %q", data)
	}

	return Intent{Kind: IntentSetValue, Page: page, HabitID: uint(habitID), Value: value}, nil
}

// Token builders used by the keyboard renderer. Encoding must stay in
// lockstep with ParseIntent.

func pageToken(cat Category) string {
	return cbPagePrefix + string(cat)
}

func valueToken(habitID uint, value string, cat Category) string {
	return fmt.Sprintf("%s%d:%s:%s", cbValuePrefix, habitID, value, cat)
}

func controlToken(control string, cat Category) string {
	return fmt.Sprintf("%s0:%s:%s", cbValuePrefix, control, cat)
}
