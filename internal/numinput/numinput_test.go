package numinput

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeDecimal(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		caret     int
		want      string
		wantCaret int
		wantOK    bool
	}{
		{"empty", "", 0, "", NoCaretHint, true},
		{"plain integer", "42", 2, "42", NoCaretHint, true},
		{"plain decimal", "0.5", 3, "0.5", NoCaretHint, true},
		{"comma becomes dot", "1,5", 3, "1.5", NoCaretHint, true},
		{"leading separator gets zero", ".5", 2, "0.5", 3, true},
		{"leading comma gets zero", ",5", 2, "0.5", 3, true},
		{"double zero becomes decimal", "00", 2, "0.0", 3, true},
		{"double zero prefix rewritten", "0042", 4, "0.042", 5, true},
		{"double zero with dot untouched", "00.5", 4, "00.5", NoCaretHint, true},
		{"letters rejected", "1a", 2, "", NoCaretHint, false},
		{"two dots rejected", "1.2.3", 5, "", NoCaretHint, false},
		{"negative rejected", "-1", 2, "", NoCaretHint, false},
	}

	outputPattern := regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, caret, ok := SanitizeDecimal(tt.raw, tt.caret)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCaret, caret)
			assert.Regexp(t, outputPattern, got)
			assert.NotContains(t, got, ",")
		})
	}
}

func TestDecimalKeyDown(t *testing.T) {
	t.Run("second separator is a no-op", func(t *testing.T) {
		action := DecimalKeyDown("1.5", 3, ".")
		assert.False(t, action.Allow)
		assert.False(t, action.Replace)

		action = DecimalKeyDown("1.5", 3, ",")
		assert.False(t, action.Allow)
		assert.False(t, action.Replace)
	})

	t.Run("separator on empty field inserts zero prefix", func(t *testing.T) {
		action := DecimalKeyDown("", 0, ".")
		require.True(t, action.Replace)
		assert.Equal(t, "0.", action.Value)
		assert.Equal(t, 2, action.Caret)
	})

	t.Run("separator mid-value inserts dot at caret", func(t *testing.T) {
		action := DecimalKeyDown("125", 1, ",")
		require.True(t, action.Replace)
		assert.Equal(t, "1.25", action.Value)
		assert.Equal(t, 2, action.Caret)
	})

	t.Run("second zero after lone zero expands", func(t *testing.T) {
		action := DecimalKeyDown("0", 1, "0")
		require.True(t, action.Replace)
		assert.Equal(t, "0.0", action.Value)
		assert.Equal(t, 3, action.Caret)
	})

	t.Run("digits and control keys pass", func(t *testing.T) {
		for _, key := range []string{"1", "9", "Backspace", "Delete", "Tab", "Escape", "Enter", "ArrowLeft", "ArrowRight"} {
			assert.True(t, DecimalKeyDown("1", 1, key).Allow, "key %q", key)
		}
	})

	t.Run("everything else is suppressed", func(t *testing.T) {
		for _, key := range []string{"a", "-", "+", "e", " "} {
			action := DecimalKeyDown("1", 1, key)
			assert.False(t, action.Allow, "key %q", key)
			assert.False(t, action.Replace, "key %q", key)
		}
	})
}

func TestSanitizeInteger(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"", "", true},
		{"5", "5", true},
		{"100", "100", true},
		{"0", "1", true},
		{"00", "10", true},
		{"000", "100", true},
		{"250", "100", true},
		{"101", "100", true},
		{"999", "100", true},
		{"1.5", "", false},
		{"abc", "", false},
		{"-3", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, caret, ok := SanitizeInteger(tt.raw)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, got)
			if got != tt.raw {
				assert.Equal(t, len(got), caret)
			} else {
				assert.Equal(t, NoCaretHint, caret)
			}
		})
	}
}

func TestIntegerKeyDown(t *testing.T) {
	t.Run("zero on empty becomes one", func(t *testing.T) {
		action := IntegerKeyDown("", 0, 0, "0")
		require.True(t, action.Replace)
		assert.Equal(t, "1", action.Value)
	})

	t.Run("zero after zero becomes ten", func(t *testing.T) {
		action := IntegerKeyDown("0", 1, 1, "0")
		require.True(t, action.Replace)
		assert.Equal(t, "10", action.Value)
	})

	t.Run("zero after double zero becomes hundred", func(t *testing.T) {
		action := IntegerKeyDown("00", 2, 2, "0")
		require.True(t, action.Replace)
		assert.Equal(t, "100", action.Value)
	})

	t.Run("keystroke exceeding hundred clamps", func(t *testing.T) {
		// "99" + "9" at the end would read 999.
		action := IntegerKeyDown("99", 2, 2, "9")
		require.True(t, action.Replace)
		assert.Equal(t, "100", action.Value)

		// "10" + "5" at the end reads 105.
		action = IntegerKeyDown("10", 2, 2, "5")
		require.True(t, action.Replace)
		assert.Equal(t, "100", action.Value)
	})

	t.Run("keystroke within bounds passes", func(t *testing.T) {
		assert.True(t, IntegerKeyDown("9", 1, 1, "9").Allow)
		assert.True(t, IntegerKeyDown("10", 2, 2, "0").Allow)
	})

	t.Run("selection replacement is accounted for", func(t *testing.T) {
		// "250" with "25" selected and "9" typed reads "90".
		assert.True(t, IntegerKeyDown("250", 0, 2, "9").Allow)
	})

	t.Run("non-digits are suppressed", func(t *testing.T) {
		for _, key := range []string{".", ",", "a", "-"} {
			action := IntegerKeyDown("5", 1, 1, key)
			assert.False(t, action.Allow, "key %q", key)
		}
	})

	t.Run("control keys pass", func(t *testing.T) {
		assert.True(t, IntegerKeyDown("5", 1, 1, "Backspace").Allow)
		assert.True(t, IntegerKeyDown("5", 1, 1, "ArrowUp").Allow)
	})
}

func TestCommitInteger(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "1"},
		{"0", "1"},
		{"1", "1"},
		{"50", "50"},
		{"100", "100"},
		{"250", "100"},
		{"junk", "1"},
	}

	for _, tt := range tests {
		got := CommitInteger(tt.in)
		assert.Equal(t, tt.want, got, "commit %q", tt.in)

		n, err := strconv.Atoi(got)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 100)
	}
}
