package schedule

import (
	"fmt"
	"time"
)

const (
	WeekAll  = "all"
	WeekOdd  = "odd"
	WeekEven = "even"
)

const dateLayout = "2006-01-02"

// ParseDate разбирает дату формата YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// ResolveDate возвращает ISO-день недели (Пн=1 .. Вс=7) и чётность недели
// для даты. anchor — понедельник «нечётной» недели из ODD_WEEK_ANCHOR;
// если он пуст или не парсится, чётность берётся из номера ISO-недели.
func ResolveDate(date time.Time, anchor string) (int, string) {
	return ISOWeekday(date), ParityFor(date, anchor)
}

// ISOWeekday переводит time.Weekday (Вс=0) в ISO-нумерацию (Пн=1 .. Вс=7).
func ISOWeekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// ParityFor вычисляет чётность недели. Неделя якоря — нечётная, дальше
// недели чередуются; floor-деление, поэтому даты раньше якоря тоже
// считаются корректно. Ошибка разбора якоря никогда не поднимается наверх.
func ParityFor(date time.Time, anchor string) string {
	if a, err := time.Parse(dateLayout, anchor); err == nil {
		delta := floorDiv(daysBetween(a, date), 7)
		if mod2(delta) == 0 {
			return WeekOdd
		}
		return WeekEven
	}
	_, week := date.ISOWeek()
	if week%2 == 0 {
		return WeekEven
	}
	return WeekOdd
}

// daysBetween считает целые календарные сутки от a до b, игнорируя
// время суток и часовой пояс исходных значений.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au) / (24 * time.Hour))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func mod2(a int) int {
	return ((a % 2) + 2) % 2
}
