package wizard

import (
	"sort"
	"time"

	"github.com/jinzhu/now"
)

const dateLayout = "2006-01-02"

// Calendar is the fixed appointment availability: a handful of days, each with its slots.
type Calendar struct {
	loc   *time.Location
	slots map[string][]string
}

type slotDay struct {
	offsetDays int
	slots      []string
}

var defaultAvailability = []slotDay{
	{7, []string{"10:00 AM - 11:00 AM", "11:00 AM - 12:00 PM", "02:00 PM - 03:00 PM"}},
	{9, []string{"09:00 AM - 10:00 AM", "12:00 PM - 01:00 PM"}},
	{14, []string{"10:00 AM - 11:00 AM", "01:00 PM - 02:00 PM", "03:00 PM - 04:00 PM"}},
}

// DefaultCalendar builds the availability relative to today (start of day in today's location).
func DefaultCalendar(today time.Time) Calendar {
	start := now.With(today).BeginningOfDay()
	c := Calendar{loc: start.Location(), slots: map[string][]string{}}
	for _, d := range defaultAvailability {
		day := start.AddDate(0, 0, d.offsetDays)
		c.slots[day.Format(dateLayout)] = d.slots
	}
	return c
}

// NewCalendar builds a calendar from an explicit date -> slots table (dates as YYYY-MM-DD).
func NewCalendar(loc *time.Location, table map[string][]string) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	c := Calendar{loc: loc, slots: make(map[string][]string, len(table))}
	for k, v := range table {
		c.slots[k] = v
	}
	return c
}

// AvailableDates returns the bookable days in ascending order.
func (c Calendar) AvailableDates() []time.Time {
	out := make([]time.Time, 0, len(c.slots))
	for k := range c.slots {
		if d, err := time.ParseInLocation(dateLayout, k, c.loc); err == nil {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Slots returns a copy of the slot list for the day containing d.
func (c Calendar) Slots(d time.Time) ([]string, bool) {
	slots, ok := c.slots[c.key(d)]
	if !ok {
		return nil, false
	}
	return append([]string(nil), slots...), true
}

// ParseDate reads a YYYY-MM-DD (or RFC 3339) date in the calendar's location.
func (c Calendar) ParseDate(s string) (time.Time, error) {
	if d, err := time.ParseInLocation(dateLayout, s, c.loc); err == nil {
		return d, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return now.With(t.In(c.loc)).BeginningOfDay(), nil
}

func (c Calendar) key(d time.Time) string {
	return d.In(c.loc).Format(dateLayout)
}

// Table exposes the availability as date -> slots for the appointment page.
func (c Calendar) Table() map[string][]string {
	out := make(map[string][]string, len(c.slots))
	for k, v := range c.slots {
		out[k] = append([]string(nil), v...)
	}
	return out
}
