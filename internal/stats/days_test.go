package stats

import "testing"

func TestParseDays(t *testing.T) {
	days, err := ParseDays(" 3, 1,3,,2 ")
	if err != nil {
		t.Fatalf("ParseDays failed: %v", err)
	}
	if len(days) != 3 || days[0] != 3 || days[1] != 1 || days[2] != 2 {
		t.Fatalf("unexpected days: %v", days)
	}
	if FormatDays(days) != "3,1,2" {
		t.Fatalf("unexpected format: %q", FormatDays(days))
	}
}

func TestParseDaysBlank(t *testing.T) {
	for _, input := range []string{"", "  ", ",,"} {
		days, err := ParseDays(input)
		if err != nil {
			t.Fatalf("ParseDays(%q) failed: %v", input, err)
		}
		if days != nil {
			t.Fatalf("expected nil for %q, got %v", input, days)
		}
	}
}

func TestParseDaysInvalid(t *testing.T) {
	if _, err := ParseDays("1,two"); err == nil {
		t.Fatalf("expected error for non-integer day")
	}
}
