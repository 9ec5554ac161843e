// Package calendar builds the fixed 6x7 month grid shown next to the day
// list. Dates are plain YYYY-MM-DD strings; no timezone math happens here
// beyond asking the local clock which day "today" is.
package calendar

import "time"

const GridSize = 42 // 6 rows of 7, week starts Sunday

type Day struct {
	Date           string // YYYY-MM-DD
	DayOfMonth     int
	IsCurrentMonth bool
	IsToday        bool
}

// Generate returns exactly GridSize day descriptors for the given year and
// zero-based month: leading days from the previous month up to the month's
// first weekday, every day of the month itself, then trailing days from the
// next month. Pure apart from reading the current date once per call.
func Generate(year, month int) []Day {
	return generate(year, month, time.Now())
}

func generate(year, month int, now time.Time) []Day {
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	startDay := int(first.Weekday()) // 0 = Sunday
	today := now.Format("2006-01-02")

	grid := make([]Day, 0, GridSize)
	for d := first.AddDate(0, 0, -startDay); len(grid) < GridSize; d = d.AddDate(0, 0, 1) {
		current := d.Month() == first.Month() && d.Year() == first.Year()
		date := d.Format("2006-01-02")
		grid = append(grid, Day{
			Date:           date,
			DayOfMonth:     d.Day(),
			IsCurrentMonth: current,
			IsToday:        current && date == today,
		})
	}
	return grid
}

// DaysIn returns the day count of a zero-based month.
func DaysIn(year, month int) int {
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}
