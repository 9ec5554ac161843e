package calendar

import (
	"testing"
	"time"
)

func TestGenerateAlwaysFillsGrid(t *testing.T) {
	cases := []struct {
		name        string
		year, month int
		wantDays    int
	}{
		{"january 31 days", 2024, 0, 31},
		{"february leap year", 2024, 1, 29},
		{"february non-leap", 2023, 1, 28},
		{"february starting sunday", 2026, 1, 28},
		{"april 30 days", 2024, 3, 30},
		{"december year boundary", 2024, 11, 31},
	}
	now := time.Date(2000, 6, 15, 12, 0, 0, 0, time.UTC)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			grid := generate(tc.year, tc.month, now)
			if len(grid) != GridSize {
				t.Fatalf("got %d cells, want %d", len(grid), GridSize)
			}
			current := 0
			for _, d := range grid {
				if d.IsCurrentMonth {
					current++
				}
			}
			if current != tc.wantDays {
				t.Errorf("got %d current-month days, want %d", current, tc.wantDays)
			}
			if got := DaysIn(tc.year, tc.month); got != tc.wantDays {
				t.Errorf("DaysIn = %d, want %d", got, tc.wantDays)
			}
		})
	}
}

func TestGenerateNoLeadingPadWhenMonthStartsSunday(t *testing.T) {
	// 2026-02-01 is a Sunday, so the month's first day is the first cell.
	grid := generate(2026, 1, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	if grid[0].Date != "2026-02-01" || !grid[0].IsCurrentMonth {
		t.Fatalf("first cell = %+v, want 2026-02-01 in current month", grid[0])
	}
	if !grid[27].IsCurrentMonth || grid[28].IsCurrentMonth {
		t.Errorf("expected exactly 28 current-month cells at the front")
	}
	if grid[28].Date != "2026-03-01" {
		t.Errorf("first trailing cell = %s, want 2026-03-01", grid[28].Date)
	}
}

func TestGeneratePadding(t *testing.T) {
	// March 2024 starts on a Friday: five leading February days.
	grid := generate(2024, 2, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	if grid[0].Date != "2024-02-25" || grid[0].IsCurrentMonth {
		t.Fatalf("first cell = %+v, want padded 2024-02-25", grid[0])
	}
	if grid[5].Date != "2024-03-01" || !grid[5].IsCurrentMonth {
		t.Fatalf("cell 5 = %+v, want 2024-03-01 in current month", grid[5])
	}
	if last := grid[GridSize-1]; last.Date != "2024-04-06" || last.IsCurrentMonth {
		t.Fatalf("last cell = %+v, want padded 2024-04-06", last)
	}
}

func TestGenerateToday(t *testing.T) {
	now := time.Date(2024, 2, 15, 9, 30, 0, 0, time.UTC)

	grid := generate(2024, 1, now)
	todays := 0
	for _, d := range grid {
		if d.IsToday {
			if d.Date != "2024-02-15" {
				t.Errorf("IsToday on %s", d.Date)
			}
			todays++
		}
	}
	if todays != 1 {
		t.Fatalf("got %d today cells, want 1", todays)
	}

	// A different month never marks today, even when the real current date
	// shows up as a padding cell (2024-05-01 pads the April grid).
	for _, month := range []struct{ y, m int }{{2024, 5}, {2024, 3}} {
		for _, d := range generate(month.y, month.m, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
			if d.IsToday && !d.IsCurrentMonth {
				t.Errorf("padding cell %s marked today in month %d", d.Date, month.m)
			}
			if month.m == 3 && d.IsToday {
				t.Errorf("april grid marked %s as today", d.Date)
			}
		}
	}
}
