package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		text string
		want Intent
	}{
		{"book an oil change for John Smith next Tuesday at 10am", IntentBooking},
		{"can I get an appointment on friday", IntentBooking},
		{"is there a free bay tomorrow", IntentBooking},
		// "change" next to an appointment noun means a reschedule...
		{"change John Smith's appointment to thursday", IntentModification},
		{"reschedule Mary Brown to next week", IntentModification},
		{"move my appointment to the 12th", IntentModification},
		// ...but "oil change" alone is still a booking
		{"book an oil change tomorrow", IntentBooking},
		{"any recalls on the corolla", IntentSafety},
		{"what's the status of the job sheet for Tom Jones", IntentJobSheet},
		{"what car does Anna Lee drive", IntentVehicle},
		{"phone number for client Anna Lee", IntentClient},
		{"how often should I replace my battery", IntentAutomotive},
		{"hello there", IntentUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.text))
		})
	}
}

func TestConfidenceIsConstant(t *testing.T) {
	assert.Equal(t, matchedConfidence, Confidence(IntentBooking))
	assert.Equal(t, matchedConfidence, Confidence(IntentSafety))
	assert.Equal(t, unknownConfidence, Confidence(IntentUnknown))
}

func TestConfirmationPhrases(t *testing.T) {
	for _, s := range []string{"yes", "yes please", "that's correct", "sure", "yeah", "yep", "ok", "okay then", "Confirm"} {
		assert.True(t, IsConfirmation(s), s)
	}
	// "booking" contains "ok" but must not read as consent
	assert.False(t, IsConfirmation("booking"), "substring of another word is not consent")
}

func TestRejectionPhrases(t *testing.T) {
	for _, s := range []string{"no", "no thanks", "that's wrong", "incorrect", "cancel that", "nevermind", "never mind", "stop"} {
		assert.True(t, IsRejection(s), s)
	}
	assert.False(t, IsRejection("now"), "'now' must not read as 'no'")
}
