package core

import (
	"sort"
	"time"
)

const dayFormat = "2006-01-02"

// CurrentStreak counts consecutive completed days ending at today. The scan
// walks backward from today and stops at the first missing day, so a gap
// yesterday yields 1 when today is completed and 0 when it is not.
func CurrentStreak(dates []string, today time.Time) int {
	completed := make(map[string]bool, len(dates))
	for _, d := range dates {
		completed[d] = true
	}
	streak := 0
	day := today
	for completed[day.Format(dayFormat)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// LongestStreak finds the longest run of consecutive completed days anywhere
// in the history. Duplicate dates are ignored.
func LongestStreak(dates []string) int {
	if len(dates) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(dates))
	var days []time.Time
	for _, d := range dates {
		if seen[d] {
			continue
		}
		seen[d] = true
		t, err := time.Parse(dayFormat, d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}
