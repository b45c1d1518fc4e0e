package calendar

import "time"

// Cell is one slot of the month grid. Day is zero for padding cells.
type Cell struct {
	Day     int
	Target  bool
	Weekend bool
}

// Month is the computed grid for the month containing a target date.
type Month struct {
	Year        int
	Month       time.Month
	Title       string
	Weekdays    []string
	Offset      int
	DaysInMonth int
	TargetDay   int
	Weeks       [][7]Cell
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildMonth lays out the month of date as rows of seven cells starting at weekStart.
func BuildMonth(date time.Time, weekStart time.Weekday) Month {
	year, month, day := date.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	days := DaysIn(year, month)

	grid := Month{
		Year:        year,
		Month:       month,
		Offset:      offset,
		DaysInMonth: days,
		TargetDay:   day,
	}

	var week [7]Cell
	slot := 0
	for ; slot < offset; slot++ {
		week[slot] = Cell{}
	}
	for d := 1; d <= days; d++ {
		weekday := time.Weekday((int(weekStart) + slot) % 7)
		week[slot] = Cell{
			Day:     d,
			Target:  d == day,
			Weekend: weekday == time.Saturday || weekday == time.Sunday,
		}
		slot++
		if slot == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = [7]Cell{}
			slot = 0
		}
	}
	if slot > 0 {
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}
