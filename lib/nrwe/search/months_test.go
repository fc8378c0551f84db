package search

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestEndOfMonth(t *testing.T) {
	testCases := []struct {
		input    time.Time
		expected time.Time
	}{
		{input: date(2023, time.December, 15), expected: date(2023, time.December, 31)},
		{input: date(2024, time.February, 1), expected: date(2024, time.February, 29)},
		{input: date(2023, time.February, 28), expected: date(2023, time.February, 28)},
		{input: date(2022, time.June, 30), expected: date(2022, time.June, 30)},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, EndOfMonth(test.input))
	}
}

func TestMonthRanges(t *testing.T) {
	testCases := []struct {
		name     string
		from     time.Time
		to       time.Time
		expected []DateRange
	}{
		{
			name:     "empty when from is past to",
			from:     date(2023, time.March, 1),
			to:       date(2023, time.February, 1),
			expected: nil,
		},
		{
			name: "single partial month",
			from: date(2023, time.March, 15),
			to:   date(2023, time.March, 20),
			expected: []DateRange{
				{From: date(2023, time.March, 15), To: date(2023, time.March, 31)},
			},
		},
		{
			name: "spanning a year boundary",
			from: date(2023, time.November, 20),
			to:   date(2024, time.January, 10),
			expected: []DateRange{
				{From: date(2023, time.November, 20), To: date(2023, time.November, 30)},
				{From: date(2023, time.December, 1), To: date(2023, time.December, 31)},
				{From: date(2024, time.January, 1), To: date(2024, time.January, 31)},
			},
		},
	}
	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			diff := cmp.Diff(test.expected, MonthRanges(test.from, test.to))
			if diff != "" {
				t.Fatal(diff)
			}
		})
	}
}
