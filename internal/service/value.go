package service

import "github.com/NikitaTymofeiev-dev/health-bot-v1.0/internal/model"

// Mood is one of the three fixed choice glyphs.
type Mood string

const (
	MoodGood Mood = "😊"
	MoodFlat Mood = "😐"
	MoodLow  Mood = "😞"
)

// Moods in button order.
var Moods = []Mood{MoodGood, MoodFlat, MoodLow}

func validMood(s string) bool {
	for _, m := range Moods {
		if string(m) == s {
			return true
		}
	}
	return false
}

type valueKind int

const (
	valueUnset valueKind = iota
	valueBool
	valueMood
)

// Value is the tagged habit value used inside the check-in engine.
// The "1"/"0"/glyph string encoding exists only at the storage and
// wire boundaries.
type Value struct {
	kind valueKind
	ok   bool
	mood Mood
}

func BoolValue(ok bool) Value {
	return Value{kind: valueBool, ok: ok}
}

func MoodValue(m Mood) Value {
	return Value{kind: valueMood, mood: m}
}

// DecodeValue interprets a stored string for a habit of the given
// kind. Anything that does not decode cleanly is treated as unset.
func DecodeValue(habitKind, raw string) Value {
	if raw == "" {
		return Value{}
	}
	switch habitKind {
	case model.HabitKindBoolean:
		switch raw {
		case "1":
			return BoolValue(true)
		case "0":
			return BoolValue(false)
		}
	case model.HabitKindChoice:
		if validMood(raw) {
			return MoodValue(Mood(raw))
		}
	}
	return Value{}
}

// Encode returns the storage/wire string for the value.
func (v Value) Encode() string {
	switch v.kind {
	case valueBool:
		if v.ok {
			return "1"
		}
		return "0"
	case valueMood:
		return string(v.mood)
	default:
		return ""
	}
}

// IsSet reports whether the habit was tracked at all; false is not the
// same as a boolean "0".
func (v Value) IsSet() bool {
	return v.kind != valueUnset
}

// Success reports a boolean habit tracked as "1".
func (v Value) Success() bool {
	return v.kind == valueBool && v.ok
}

// Glyph renders the status marker shown next to the habit title.
func (v Value) Glyph() string {
	switch v.kind {
	case valueBool:
		if v.ok {
			return "✅"
		}
		return "❌"
	case valueMood:
		return string(v.mood)
	default:
		return "▫️"
	}
}
