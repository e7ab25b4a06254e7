package stats

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDays parses a comma separated day list such as "1,2, 5". Blank input
// selects all days and returns nil. Repeated days are kept once.
func ParseDays(input string) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	parts := strings.Split(input, ",")
	seen := make(map[int]struct{}, len(parts))
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid day %q (use integers separated by commas)", part)
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil, nil
	}
	return days, nil
}

// FormatDays is the inverse of ParseDays.
func FormatDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}
