package types

import (
	"encoding/json"
	"testing"
)

// TestSweetnessUnmarshalNumber tests numeric sweetness input
func TestSweetnessUnmarshalNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected SweetnessLevel
	}{
		{`0`, 0},
		{`30`, 30},
		{`50`, 50},
		{`100`, 100},
		{`150`, 100}, // clamped
		{`-5`, 0},    // clamped
	}

	for _, tt := range tests {
		var s SweetnessLevel
		if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tt.input, err)
			continue
		}
		if s != tt.expected {
			t.Errorf("Unmarshal(%s) = %d, expected %d", tt.input, s, tt.expected)
		}
	}
}

// TestSweetnessUnmarshalLabel tests menu-label sweetness input
func TestSweetnessUnmarshalLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected SweetnessLevel
	}{
		{`"无糖"`, 0},
		{`"少糖"`, 30},
		{`"三分糖"`, 30},
		{`"半糖"`, 50},
		{`"五分糖"`, 50},
		{`"七分糖"`, 70},
		{`"全糖"`, 100},
		{`"70"`, 70},      // numeric string
		{`"mystery"`, 50}, // unknown label defaults
		{`null`, 50},      // null defaults
	}

	for _, tt := range tests {
		var s SweetnessLevel
		if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tt.input, err)
			continue
		}
		if s != tt.expected {
			t.Errorf("Unmarshal(%s) = %d, expected %d", tt.input, s, tt.expected)
		}
	}
}

// TestSweetnessUnmarshalInvalid tests a non-number non-string payload
func TestSweetnessUnmarshalInvalid(t *testing.T) {
	var s SweetnessLevel
	if err := json.Unmarshal([]byte(`{"level": 50}`), &s); err == nil {
		t.Error("Expected an error for an object payload")
	}
}

// TestSweetnessMarshal tests that the wire form is always the number
func TestSweetnessMarshal(t *testing.T) {
	out, err := json.Marshal(SweetnessLevel(70))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != `70` {
		t.Errorf("Expected 70, got %s", out)
	}
}

// TestSweetnessLabel tests label rendering
func TestSweetnessLabel(t *testing.T) {
	tests := []struct {
		level    SweetnessLevel
		expected string
	}{
		{0, "无糖"},
		{30, "少糖"},
		{50, "半糖"},
		{70, "七分糖"},
		{100, "全糖"},
	}
	for _, tt := range tests {
		if got := tt.level.Label(); got != tt.expected {
			t.Errorf("Label(%d) = %s, expected %s", tt.level, got, tt.expected)
		}
	}
}

// TestParseSweetness tests label parsing round trips
func TestParseSweetness(t *testing.T) {
	if got := ParseSweetness("半糖"); got != 50 {
		t.Errorf("ParseSweetness(半糖) = %d, expected 50", got)
	}
	if got := ParseSweetness("85"); got != 85 {
		t.Errorf("ParseSweetness(85) = %d, expected 85", got)
	}
	if got := ParseSweetness("unknown"); got != DefaultSweetness {
		t.Errorf("ParseSweetness(unknown) = %d, expected %d", got, DefaultSweetness)
	}
}
