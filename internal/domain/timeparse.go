package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClockTime parses a "HH:MM" string into hour and minute.
// Hours are 0–23, minutes 0–59. Leading/trailing whitespace is tolerated;
// anything else ("9:5", "24:00", "09:60", "morning") is an error.
func ParseClockTime(raw string) (hour, minute int, err error) {
	s := strings.TrimSpace(raw)

	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("clock time %q: want HH:MM", raw)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("clock time %q: hour out of range", raw)
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock time %q: minute out of range", raw)
	}

	return hour, minute, nil
}
