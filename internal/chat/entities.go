// Package chat classifies free-text assistant messages into intents,
// extracts structured slots from them, and runs the per-intent handlers
// over the garage's data. The one multi-turn flow (appointment
// rescheduling) persists its pending proposal between requests; everything
// else is re-derived from the message text each turn.
package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day extracted from text.
type Clock struct {
	Hour   int // 0-23
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Entities is the set of slots pulled out of one message. Each slot is
// extracted independently; an absent slot stays at its zero value (empty
// string / nil pointer), never an empty-but-present value, so downstream
// "is this slot filled" checks stay simple.
type Entities struct {
	Name     string     // client name, e.g. "John Smith"
	DateText string     // literal date phrase matched, e.g. "next tuesday"
	Date     *time.Time // resolved calendar day (midnight UTC)
	TimeText string     // literal time phrase matched, e.g. "10am"
	Time     *Clock     // parsed 24-hour time
	Service  string     // recognized service phrase, e.g. "oil change"
}

// Map flattens the filled slots for response metadata and the audit log.
func (e Entities) Map() map[string]string {
	m := map[string]string{}
	if e.Name != "" {
		m["name"] = e.Name
	}
	if e.DateText != "" {
		m["date"] = e.DateText
	}
	if e.TimeText != "" {
		m["time"] = e.TimeText
	}
	if e.Service != "" {
		m["service"] = e.Service
	}
	return m
}

var (
	// "for John Smith", "client John Smith", "customer John Smith".
	// Capitalized words only, so trailing lowercase text ("next tuesday")
	// ends the match.
	reNameLed = regexp.MustCompile(`\b(?:for|client|customer)\s+((?:[A-Z][a-zA-Z'-]*)(?:\s+[A-Z][a-zA-Z'-]*)+)`)
	// Bare "John Smith" anywhere in the message, as a fallback.
	reNameBare = regexp.MustCompile(`\b([A-Z][a-z'-]+\s+[A-Z][a-z'-]+)\b`)
	// A capitalized command verb opening the sentence ("Move John Smith's
	// appointment") reads like the first half of a name pair to reNameBare;
	// it gets lowercased before the fallback runs.
	reLeadingVerb = regexp.MustCompile(`^\s*(?:Move|Book|Reschedule|Change|Cancel|Postpone|Find|Show|Check|Look|Update|Get)\b`)

	reTomorrow    = regexp.MustCompile(`(?i)\btomorrow\b`)
	reToday       = regexp.MustCompile(`(?i)\btoday\b`)
	reNextWeekday = regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	reWeekday     = regexp.MustCompile(`(?i)\b(?:on\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	// "March 12", "Mar 12th"; months match on their 3-letter prefix.
	reMonthDay = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	// "12 March", "12th of March".
	reDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)

	reClock = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
)

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// servicePhrases is ordered longest-first so "tire rotation" wins over
// "tire". Matching is case-insensitive substring.
var servicePhrases = []string{
	"oil change", "tire rotation", "tyre rotation", "wheel alignment",
	"brake inspection", "brake pads", "annual service", "full service",
	"mot test", "diagnostic", "inspection", "alignment", "brakes", "battery",
	"tires", "tyres", "mot", "service",
}

// Extract pulls the name/date/time/service slots out of a message. The
// reference instant `now` anchors relative dates ("tomorrow", "next
// friday") and the year-rollover rule for month-day forms.
func Extract(text string, now time.Time) Entities {
	var e Entities
	e.Name = extractName(text)
	e.DateText, e.Date = extractDate(text, now)
	e.TimeText, e.Time = extractTime(text)
	e.Service = extractService(text)
	return e
}

func extractName(text string) string {
	name := ""
	if m := reNameLed.FindStringSubmatch(text); m != nil {
		name = m[1]
	} else {
		bare := reLeadingVerb.ReplaceAllStringFunc(text, strings.ToLower)
		if m := reNameBare.FindStringSubmatch(bare); m != nil {
			name = m[1]
		}
	}
	// "John Smith's appointment" captures the possessive; strip it.
	for _, suffix := range []string{"'s", "’s", "'", "’"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return name
}

// extractDate resolves the first recognized date phrase to a calendar day
// at midnight UTC. Unparseable or ambiguous text yields no date; the
// handler prompts for clarification rather than guessing.
func extractDate(text string, now time.Time) (string, *time.Time) {
	day := func(t time.Time) *time.Time {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &d
	}
	if m := reTomorrow.FindString(text); m != "" {
		return m, day(now.AddDate(0, 0, 1))
	}
	if m := reToday.FindString(text); m != "" {
		return m, day(now)
	}
	if m := reNextWeekday.FindStringSubmatch(text); m != nil {
		target := weekdays[strings.ToLower(m[1])]
		delta := int(target-now.Weekday()+7) % 7
		if delta == 0 {
			delta = 7 // "next tuesday" on a Tuesday means a week out
		}
		return m[0], day(now.AddDate(0, 0, delta))
	}
	if m := reWeekday.FindStringSubmatch(text); m != nil {
		target := weekdays[strings.ToLower(m[1])]
		delta := int(target-now.Weekday()+7) % 7
		if delta == 0 {
			delta = 7
		}
		return m[0], day(now.AddDate(0, 0, delta))
	}
	if m := reMonthDay.FindStringSubmatch(text); m != nil {
		return m[0], monthDay(months[strings.ToLower(m[1])], m[2], now)
	}
	if m := reDayMonth.FindStringSubmatch(text); m != nil {
		return m[0], monthDay(months[strings.ToLower(m[2])], m[1], now)
	}
	return "", nil
}

// monthDay builds a date in the current year, rolling to next year when the
// result already lies in the past relative to now.
func monthDay(month time.Month, dayStr string, now time.Time) *time.Time {
	dom, err := strconv.Atoi(dayStr)
	if err != nil || dom < 1 || dom > 31 {
		return nil
	}
	d := time.Date(now.Year(), month, dom, 0, 0, 0, 0, time.UTC)
	if d.Month() != month {
		return nil // e.g. "Feb 31" normalized into March
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		d = time.Date(now.Year()+1, month, dom, 0, 0, 0, 0, time.UTC)
	}
	return &d
}

// extractTime parses "10am", "2:30 pm" into a 24-hour clock.
func extractTime(text string) (string, *Clock) {
	m := reClock.FindStringSubmatch(text)
	if m == nil {
		return "", nil
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return "", nil
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return "", nil
		}
	}
	if strings.EqualFold(m[3], "pm") {
		if hour != 12 {
			hour += 12
		}
	} else if hour == 12 {
		hour = 0 // 12am is midnight
	}
	return m[0], &Clock{Hour: hour, Minute: minute}
}

func extractService(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range servicePhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}
