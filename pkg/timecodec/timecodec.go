// Package timecodec moves timestamps between form-editable local values and the
// tracker API wire format without ever applying a timezone conversion.
//
// The wire format is YYYY-MM-DDTHH:MM:00.000Z. The trailing zone suffix is kept for
// compatibility with the API but is never interpreted: the numeric fields are the
// source of truth.
package timecodec

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	dateTimePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2})`)
	datePattern     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	localPattern    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2})$`)
	clockPattern    = regexp.MustCompile(`^(\d{2}):(\d{2})(?::\d{2})?$`)
)

// Date is a calendar day with no time-of-day and no zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// LocalDateTime is a naive local wall-clock value.
type LocalDateTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// Date returns the calendar-day component.
func (t LocalDateTime) Date() Date {
	return Date{Year: t.Year, Month: t.Month, Day: t.Day}
}

// Clock returns the time-of-day component.
func (t LocalDateTime) Clock() Clock {
	return Clock{Hour: t.Hour, Minute: t.Minute}
}

// Valid reports whether every field is inside its calendar range.
func (t LocalDateTime) Valid() bool {
	return t.Date().Valid() && t.Clock().Valid()
}

// String renders the datetime-local form value (YYYY-MM-DDTHH:MM).
func (t LocalDateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d", t.Year, t.Month, t.Day, t.Hour, t.Minute)
}

// Valid reports whether the date exists in the proleptic Gregorian calendar.
func (d Date) Valid() bool {
	if d.Year < 0 || d.Year > 9999 || d.Month < 1 || d.Month > 12 {
		return false
	}
	return d.Day >= 1 && d.Day <= daysInMonth(d.Year, d.Month)
}

// String renders YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Ordinal returns the number of days since 1970-01-01.
func (d Date) Ordinal() int {
	y := d.Year
	if d.Month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (d.Month + 9) % 12
	doy := (153*mp+2)/5 + d.Day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// AddDays moves the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return FromOrdinal(d.Ordinal() + n)
}

// DaysUntil returns other minus d in calendar days.
func (d Date) DaysUntil(other Date) int {
	return other.Ordinal() - d.Ordinal()
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Ordinal() < other.Ordinal()
}

// FromOrdinal is the inverse of Date.Ordinal.
func FromOrdinal(days int) Date {
	z := days + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	month := mp + 3
	if month > 12 {
		month -= 12
	}
	year := yoe + era*400
	if month <= 2 {
		year++
	}
	return Date{Year: year, Month: month, Day: day}
}

// Valid reports whether the clock is inside 00:00..23:59.
func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// Before reports whether c is earlier in the day than other.
func (c Clock) Before(other Clock) bool {
	if c.Hour != other.Hour {
		return c.Hour < other.Hour
	}
	return c.Minute < other.Minute
}

// String renders HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ToWire renders the wire representation by direct field substitution.
func ToWire(t LocalDateTime) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00.000Z", t.Year, t.Month, t.Day, t.Hour, t.Minute)
}

// FromWire extracts the local fields from the literal digit positions of a wire value.
// It returns false when the input does not start with a 4-2-2-2-2 digit layout.
func FromWire(wire string) (LocalDateTime, bool) {
	m := dateTimePattern.FindStringSubmatch(wire)
	if m == nil {
		return LocalDateTime{}, false
	}
	return LocalDateTime{
		Year:   atoi(m[1]),
		Month:  atoi(m[2]),
		Day:    atoi(m[3]),
		Hour:   atoi(m[4]),
		Minute: atoi(m[5]),
	}, true
}

// ExtractDate returns the calendar-day component of a wire value. Date-only values
// (YYYY-MM-DD) are accepted as well.
func ExtractDate(wire string) (Date, bool) {
	m := datePattern.FindStringSubmatch(wire)
	if m == nil {
		return Date{}, false
	}
	return Date{Year: atoi(m[1]), Month: atoi(m[2]), Day: atoi(m[3])}, true
}

// ExtractClock returns the HH:MM component of a wire value.
func ExtractClock(wire string) (Clock, bool) {
	t, ok := FromWire(wire)
	if !ok {
		return Clock{}, false
	}
	return t.Clock(), true
}

// ParseLocal parses a datetime-local form value (YYYY-MM-DDTHH:MM).
func ParseLocal(value string) (LocalDateTime, error) {
	m := localPattern.FindStringSubmatch(value)
	if m == nil {
		return LocalDateTime{}, fmt.Errorf("invalid local datetime %q, expected YYYY-MM-DDTHH:MM", value)
	}
	t := LocalDateTime{
		Year:   atoi(m[1]),
		Month:  atoi(m[2]),
		Day:    atoi(m[3]),
		Hour:   atoi(m[4]),
		Minute: atoi(m[5]),
	}
	if !t.Valid() {
		return LocalDateTime{}, fmt.Errorf("local datetime %q is out of range", value)
	}
	return t, nil
}

// ParseDate parses a YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	d, ok := ExtractDate(value)
	if !ok || len(value) != 10 {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	if !d.Valid() {
		return Date{}, fmt.Errorf("date %q is out of range", value)
	}
	return d, nil
}

// ParseClock parses HH:MM (seconds, when present, are dropped).
func ParseClock(value string) (Clock, error) {
	m := clockPattern.FindStringSubmatch(value)
	if m == nil {
		return Clock{}, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	c := Clock{Hour: atoi(m[1]), Minute: atoi(m[2])}
	if !c.Valid() {
		return Clock{}, fmt.Errorf("time %q is out of range", value)
	}
	return c, nil
}

// CombineDateAndTime joins the calendar date of baseDateWire with clock. When
// rollToNextDayIfBefore is set and clock is earlier than it, the date advances by one
// calendar day first (a wake time after midnight, for instance).
func CombineDateAndTime(baseDateWire string, clock Clock, rollToNextDayIfBefore *Clock) (string, error) {
	date, ok := ExtractDate(baseDateWire)
	if !ok {
		return "", fmt.Errorf("invalid base date %q", baseDateWire)
	}
	if !clock.Valid() {
		return "", fmt.Errorf("invalid time %s", clock)
	}
	if rollToNextDayIfBefore != nil && clock.Before(*rollToNextDayIfBefore) {
		date = date.AddDays(1)
	}
	return ToWire(LocalDateTime{
		Year:   date.Year,
		Month:  date.Month,
		Day:    date.Day,
		Hour:   clock.Hour,
		Minute: clock.Minute,
	}), nil
}

func daysInMonth(year, month int) int {
	switch month {
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
