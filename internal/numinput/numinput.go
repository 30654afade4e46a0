package numinput

// Sanitizers for the controlled numeric text fields (FEE / BUY are decimal,
// SLIP % / SELL % are bounded integers in [1,100]).
//
// Each field gets two hooks, mirroring the two places a UI can intercept
// input: Sanitize* runs on the field value after an edit, KeyDown* runs on a
// single keystroke before it is applied and may suppress or rewrite it.
// Both are pure string rewriting; the caret hint is -1 when the caller should
// leave the caret where the edit put it.

import (
	"regexp"
	"strconv"
	"strings"
)

// NoCaretHint means the sanitizer has no opinion about caret placement.
const NoCaretHint = -1

var decimalPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)
var integerPattern = regexp.MustCompile(`^[0-9]*$`)

// controlKeys pass through both field kinds untouched.
var controlKeys = map[string]bool{
	"Backspace":  true,
	"Delete":     true,
	"Tab":        true,
	"Escape":     true,
	"Enter":      true,
	"ArrowLeft":  true,
	"ArrowRight": true,
	"ArrowUp":    true,
	"ArrowDown":  true,
}

// IsControlKey reports whether the key is a navigation/editing key that is
// never suppressed.
func IsControlKey(key string) bool {
	return controlKeys[key]
}

// KeyAction is what the field should do with an intercepted keystroke.
type KeyAction struct {
	// Allow delivers the keystroke unchanged. When false and Replace is
	// false, the keystroke is swallowed.
	Allow bool
	// Replace swallows the keystroke and substitutes the whole field value.
	Replace bool
	Value   string
	Caret   int
}

func allowKey() KeyAction    { return KeyAction{Allow: true} }
func suppressKey() KeyAction { return KeyAction{} }

func replaceWith(value string, caret int) KeyAction {
	return KeyAction{Replace: true, Value: value, Caret: caret}
}

// SanitizeDecimal normalizes a decimal field value after an edit.
// The comma separator is rewritten to a dot, a leading bare separator gets a
// zero prefix, and the two-leading-zeros form is rewritten to "0.0...".
// Returns ok=false when the raw value is not a valid partial decimal, in
// which case the field keeps its previous value.
func SanitizeDecimal(raw string, caret int) (value string, caretHint int, ok bool) {
	value = strings.ReplaceAll(raw, ",", ".")
	caretHint = NoCaretHint

	if strings.HasPrefix(value, ".") {
		value = "0" + value
		caretHint = caret + 1
	}

	if value == "00" {
		// Continue the "insert the point after the second zero" pattern.
		value = "0.0"
		caretHint = 3
	} else if strings.HasPrefix(value, "00") && !strings.Contains(value, ".") {
		value = "0.0" + value[2:]
		caretHint = caret + 1
	}

	if !decimalPattern.MatchString(value) {
		return "", NoCaretHint, false
	}
	return value, caretHint, true
}

// DecimalKeyDown intercepts one keystroke on a decimal field.
// value and caret describe the field before the keystroke.
func DecimalKeyDown(value string, caret int, key string) KeyAction {
	if key == "," || key == "." {
		if strings.Contains(value, ".") {
			// Second separator is a no-op.
			return suppressKey()
		}
		if value == "" || caret <= 0 {
			return replaceWith("0."+value, 2)
		}
		return replaceWith(value[:caret]+"."+value[caret:], caret+1)
	}

	if key == "0" && value == "0" && caret == 1 {
		return replaceWith("0.0", 3)
	}

	if key >= "0" && key <= "9" && len(key) == 1 {
		return allowKey()
	}
	if IsControlKey(key) {
		return allowKey()
	}
	return suppressKey()
}

// SanitizeInteger normalizes a bounded-integer field value after an edit.
// Zero runs auto-expand ("0"->"1", "00"->"10", "000"->"100") and anything
// beyond 100 clamps to "100".
func SanitizeInteger(raw string) (value string, caretHint int, ok bool) {
	if !integerPattern.MatchString(raw) {
		return "", NoCaretHint, false
	}

	value = raw
	switch {
	case value == "0":
		value = "1"
	case value == "00":
		value = "10"
	case value == "000":
		value = "100"
	case len(value) >= 3:
		if n, err := strconv.Atoi(value); err == nil && n > 100 {
			value = "100"
		}
	}

	caretHint = NoCaretHint
	if value != raw {
		caretHint = len(value)
	}
	return value, caretHint, true
}

// IntegerKeyDown intercepts one keystroke on a bounded-integer field.
// selEnd is the end of the current selection (equal to caret when nothing is
// selected); a selected range is consumed by the keystroke.
func IntegerKeyDown(value string, caret, selEnd int, key string) KeyAction {
	if caret < 0 {
		caret = 0
	}
	if selEnd < caret {
		selEnd = caret
	}

	if key == "0" {
		hasSelection := selEnd > caret
		switch {
		case value == "" && caret == 0:
			return replaceWith("1", 1)
		case value == "0" && caret == 1 && !hasSelection:
			return replaceWith("10", 2)
		case value == "00" && caret == 2 && !hasSelection:
			return replaceWith("100", 3)
		}
	}

	if key >= "0" && key <= "9" && len(key) == 1 {
		// Predict the post-keystroke value so the field never shows >100.
		predicted := spliceKey(value, caret, selEnd, key)
		if n, err := strconv.Atoi(predicted); err == nil && n > 100 {
			return replaceWith("100", 3)
		}
		return allowKey()
	}

	if IsControlKey(key) {
		return allowKey()
	}
	return suppressKey()
}

// CommitInteger clamps a committed bounded-integer value to [1,100].
// An empty or unparseable field commits as "1".
func CommitInteger(value string) string {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return "1"
	}
	if n > 100 {
		return "100"
	}
	return strconv.Itoa(n)
}

func spliceKey(value string, caret, selEnd int, key string) string {
	if caret > len(value) {
		caret = len(value)
	}
	if selEnd > len(value) {
		selEnd = len(value)
	}
	return value[:caret] + key + value[selEnd:]
}
