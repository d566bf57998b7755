// Package holiday computes Brazilian national holidays for the calendar.
package holiday

import (
	"sort"
	"time"
)

const isoDate = "2006-01-02"

// Holiday is a single national holiday. Date is midnight UTC.
type Holiday struct {
	Date    time.Time
	Name    string
	Movable bool // derived from Easter
}

// ISODate returns the date as YYYY-MM-DD.
func (h Holiday) ISODate() string {
	return h.Date.Format(isoDate)
}

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

var fixedHolidays = []fixedHoliday{
	{time.January, 1, "Confraternização Universal"},
	{time.April, 21, "Tiradentes"},
	{time.May, 1, "Dia do Trabalho"},
	{time.September, 7, "Independência do Brasil"},
	{time.October, 12, "Nossa Senhora Aparecida"},
	{time.November, 2, "Finados"},
	{time.November, 15, "Proclamação da República"},
	{time.November, 20, "Dia Nacional de Zumbi e da Consciência Negra"},
	{time.December, 25, "Natal"},
}

type movableHoliday struct {
	offset int // days from Easter Sunday
	name   string
}

var movableHolidays = []movableHoliday{
	{-47, "Carnaval"},
	{-2, "Sexta-feira Santa"},
	{60, "Corpus Christi"},
}

// Easter returns Easter Sunday of the Gregorian calendar using the anonymous
// (Meeus/Jones/Butcher) algorithm. Valid for years 1583..9999.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ForYear returns the 12 national holidays of the year ordered by date.
// Two holidays may share a date (Good Friday and Tiradentes in 2000); both
// are returned.
func ForYear(year int) []Holiday {
	holidays := make([]Holiday, 0, len(fixedHolidays)+len(movableHolidays))
	for _, f := range fixedHolidays {
		holidays = append(holidays, Holiday{
			Date: time.Date(year, f.month, f.day, 0, 0, 0, 0, time.UTC),
			Name: f.name,
		})
	}

	easter := Easter(year)
	for _, m := range movableHolidays {
		holidays = append(holidays, Holiday{
			Date:    easter.AddDate(0, 0, m.offset),
			Name:    m.name,
			Movable: true,
		})
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays
}

// On returns the holidays falling on the calendar day of t (in t's location).
func On(t time.Time) []Holiday {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	var out []Holiday
	for _, h := range ForYear(t.Year()) {
		if h.Date.Equal(day) {
			out = append(out, h)
		}
	}
	return out
}

// Between returns holidays with from <= date <= to, comparing calendar days.
func Between(from, to time.Time) []Holiday {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	var out []Holiday
	for year := start.Year(); year <= end.Year(); year++ {
		for _, h := range ForYear(year) {
			if h.Date.Before(start) || h.Date.After(end) {
				continue
			}
			out = append(out, h)
		}
	}
	return out
}
