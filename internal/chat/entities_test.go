package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, March 1 2024, 12:00 UTC, a fixed anchor for relative dates.
var anchor = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func TestExtractFullBookingSentence(t *testing.T) {
	e := Extract("book an oil change for John Smith next Tuesday at 10am", anchor)

	assert.Equal(t, "John Smith", e.Name)
	assert.Equal(t, "oil change", e.Service)
	assert.Equal(t, "next Tuesday", e.DateText)
	require.NotNil(t, e.Date)
	assert.Equal(t, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), *e.Date)
	assert.Equal(t, "10am", e.TimeText)
	require.NotNil(t, e.Time)
	assert.Equal(t, Clock{Hour: 10}, *e.Time)
}

func TestExtractDate(t *testing.T) {
	cases := []struct {
		name string
		text string
		want time.Time
	}{
		{"tomorrow", "come in tomorrow", anchor.AddDate(0, 0, 1).Truncate(24 * time.Hour)},
		{"next weekday", "next monday please", time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)},
		// anchor is a Friday: "next friday" must roll a full week, not match today
		{"next same weekday rolls a week", "next friday", time.Date(2024, time.March, 8, 0, 0, 0, 0, time.UTC)},
		{"bare weekday", "on wednesday", time.Date(2024, time.March, 6, 0, 0, 0, 0, time.UTC)},
		{"month day", "March 12 works", time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)},
		{"month prefix", "Mar 12", time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)},
		{"day month", "the 12th of march", time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)},
		// January 5 already passed relative to March 1: rolls to next year
		{"past date rolls year", "January 5", time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got := extractDate(tc.text, anchor)
			require.NotNil(t, got)
			assert.Equal(t, tc.want.Year(), got.Year())
			assert.Equal(t, tc.want.Month(), got.Month())
			assert.Equal(t, tc.want.Day(), got.Day())
		})
	}
}

func TestExtractDateAbsentForGibberish(t *testing.T) {
	_, got := extractDate("sometime soonish maybe", anchor)
	assert.Nil(t, got, "ambiguous text must yield an absent slot, not a guess")
}

func TestExtractTime(t *testing.T) {
	cases := []struct {
		text string
		want Clock
	}{
		{"at 10am", Clock{Hour: 10}},
		{"at 2:30 pm", Clock{Hour: 14, Minute: 30}},
		{"12pm sharp", Clock{Hour: 12}},
		{"12am tonight", Clock{Hour: 0}},
		{"at 7 PM", Clock{Hour: 19}},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			_, got := extractTime(tc.text)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, *got)
		})
	}
	_, none := extractTime("half past ten")
	assert.Nil(t, none)
}

func TestExtractName(t *testing.T) {
	assert.Equal(t, "John Smith", extractName("look up client John Smith"))
	assert.Equal(t, "Mary-Jane O'Brien", extractName("book for Mary-Jane O'Brien tomorrow"))
	assert.Equal(t, "", extractName("book an oil change tomorrow"))
}

// A capitalized command verb opening the message must not be mistaken for
// the first half of the client's name.
func TestExtractNameAfterLeadingVerb(t *testing.T) {
	assert.Equal(t, "John Smith", extractName("Move John Smith's appointment to Thursday"))
	assert.Equal(t, "Mary Poppins", extractName("Book Mary Poppins in for an oil change"))
	assert.Equal(t, "", extractName("Move the appointment to Thursday"))
}

func TestExtractServiceLongestPhraseWins(t *testing.T) {
	assert.Equal(t, "tire rotation", extractService("need a tire rotation soon"))
	assert.Equal(t, "oil change", extractService("just an OIL CHANGE"))
	assert.Equal(t, "", extractService("hello there"))
}
