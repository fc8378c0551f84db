package search

import "time"

// DateRange is one inclusive search window.
type DateRange struct {
	From time.Time
	To   time.Time
}

// EndOfMonth returns the last day of the month the date falls in.
func EndOfMonth(date time.Time) time.Time {
	month := date.Month()
	year := date.Year()
	if month == time.December {
		month = time.January
		year++
	} else {
		month++
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, date.Location()).AddDate(0, 0, -1)
}

// MonthRanges splits [from, to] into consecutive month-sized windows.
// The first window starts at from; every other one starts at the first
// day after the previous window. The last window may end past to, which
// only widens the search.
func MonthRanges(from, to time.Time) []DateRange {
	var ranges []DateRange
	for !from.After(to) {
		end := EndOfMonth(from)
		ranges = append(ranges, DateRange{From: from, To: end})
		from = end.AddDate(0, 0, 1)
	}
	return ranges
}
