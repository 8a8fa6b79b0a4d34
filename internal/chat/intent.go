package chat

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a chat message. The set is closed;
// anything unrecognized lands on IntentUnknown.
type Intent string

const (
	IntentBooking      Intent = "booking"
	IntentModification Intent = "appointment_modification"
	IntentClient       Intent = "client"
	IntentVehicle      Intent = "vehicle"
	IntentSafety       Intent = "safety"
	IntentJobSheet     Intent = "jobSheet"
	IntentAutomotive   Intent = "automotive"
	IntentUnknown      Intent = "unknown"
)

// Classification confidence is constant: matched rules report
// matchedConfidence, the unknown bucket reports unknownConfidence. There is
// no scoring model behind these numbers.
const (
	matchedConfidence = 0.9
	unknownConfidence = 0.2
)

// "change" and "move" only signal a reschedule when they refer to an
// appointment; "oil change" must stay a booking.
var reChangeAppointment = regexp.MustCompile(`(?i)\b(change|move)\b.{0,40}\b(appointment|booking|slot)\b`)

var modificationVerbs = []string{"reschedule", "postpone", "push back"}

var bookingWords = []string{"book", "appointment", "bay", "schedule", "slot", "come in", "reschedule"}

var safetyWords = []string{"recall", "safety", "airbag", "defect"}

var jobSheetWords = []string{"job sheet", "jobsheet", "job ticket", "work order", "ticket"}

var vehicleWords = []string{"vehicle", "car", "vin", "specs", "spec", "mileage", "registration", "plate"}

var clientWords = []string{"client", "customer", "phone number", "email", "contact"}

var automotiveWords = []string{"engine", "brake", "oil", "tire", "tyre", "battery", "coolant", "transmission", "exhaust", "suspension"}

// Classify maps raw text to one intent tag using first-match-wins ordered
// keyword rules. Modification outranks plain booking when a reschedule verb
// co-occurs with booking context; ties are broken purely by rule order.
// Callers holding an open confirmation state must bypass this function
// entirely; continuation of an open dialog always outranks fresh
// classification.
func Classify(text string) Intent {
	lower := strings.ToLower(text)

	hasBookingContext := containsAny(lower, bookingWords)
	if hasBookingContext && (containsAny(lower, modificationVerbs) || reChangeAppointment.MatchString(text)) {
		return IntentModification
	}
	if hasBookingContext {
		return IntentBooking
	}
	if containsAny(lower, safetyWords) {
		return IntentSafety
	}
	if containsAny(lower, jobSheetWords) {
		return IntentJobSheet
	}
	if containsAny(lower, vehicleWords) {
		return IntentVehicle
	}
	if containsAny(lower, clientWords) {
		return IntentClient
	}
	if containsAny(lower, automotiveWords) {
		return IntentAutomotive
	}
	return IntentUnknown
}

// Confidence returns the constant score attached to a classification.
func Confidence(i Intent) float64 {
	if i == IntentUnknown {
		return unknownConfidence
	}
	return matchedConfidence
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
