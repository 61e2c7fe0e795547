// Package scheduler renders a professional's appointment list as a
// Sunday-first month grid and answers exact-date lookups.
package scheduler

import (
	"sort"
	"time"

	"fridman/health-hub/internal/domain"
)

// MaxVisiblePerCell caps the appointments shown inside a day cell; the
// rest collapse into an overflow count.
const MaxVisiblePerCell = 3

// DayCell is one square of the month grid. Padding cells before the first
// of the month have Day == 0 and an empty Date.
type DayCell struct {
	Date     string               `json:"date,omitempty"`
	Day      int                  `json:"day,omitempty"`
	Today    bool                 `json:"today,omitempty"`
	Visible  []domain.Appointment `json:"visible,omitempty"`
	Overflow int                  `json:"overflow,omitempty"`
}

// MonthView is a rendered month: the grid plus its header fields.
type MonthView struct {
	Year  int       `json:"year"`
	Month string    `json:"month"`
	Cells []DayCell `json:"cells"`
}

// DateKey formats a time as the calendar's exact-match date string.
func DateKey(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// MonthGrid lays out one month of appointments. Cells run Sunday to
// Saturday with padding before the first of the month; each day cell
// carries at most MaxVisiblePerCell appointments ordered by time, with
// the remainder as an overflow count.
func MonthGrid(year int, month time.Month, appts []domain.Appointment, today time.Time) MonthView {
	byDate := make(map[string][]domain.Appointment)
	for _, a := range appts {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	todayKey := DateKey(today)

	cells := make([]DayCell, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		cells = append(cells, DayCell{})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := DateKey(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
		dayAppts := sortByTime(byDate[date])

		cell := DayCell{
			Date:    date,
			Day:     day,
			Today:   date == todayKey,
			Visible: dayAppts,
		}
		if len(dayAppts) > MaxVisiblePerCell {
			cell.Visible = dayAppts[:MaxVisiblePerCell]
			cell.Overflow = len(dayAppts) - MaxVisiblePerCell
		}
		cells = append(cells, cell)
	}

	return MonthView{
		Year:  year,
		Month: month.String(),
		Cells: cells,
	}
}

// AppointmentsOn lists every appointment matching one exact date, ordered
// by time. Duplicated slots all appear; nothing deduplicates a
// double-booking.
func AppointmentsOn(appts []domain.Appointment, date string) []domain.Appointment {
	var out []domain.Appointment
	for _, a := range appts {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return sortByTime(out)
}

func sortByTime(appts []domain.Appointment) []domain.Appointment {
	if len(appts) < 2 {
		return appts
	}
	out := make([]domain.Appointment, len(appts))
	copy(out, appts)
	// HH:MM strings order correctly as text.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}
