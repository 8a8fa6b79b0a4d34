package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/garage-hub/internal/model"
	"github.com/iliyamo/garage-hub/internal/repository"
)

// clientMatch resolves a name to exactly one client or to a reply that ends
// the turn. More than one candidate always produces a disambiguation
// question; a best-guess pick here would silently act on the wrong
// person's appointment.
func (r *Router) clientMatch(ctx context.Context, garageID uint64, name string) (*model.Client, *outcome) {
	clients, err := r.Clients.SearchByName(ctx, garageID, name)
	if err != nil {
		log.Printf("chat: client search failed: %v", err)
		return nil, &outcome{text: tryAgainLater}
	}
	switch len(clients) {
	case 0:
		return nil, &outcome{text: fmt.Sprintf("I couldn't find a client named %q. You can add them from the clients page, or check the spelling.", name)}
	case 1:
		return clients[0], nil
	}
	names := make([]string, 0, len(clients))
	for _, c := range clients {
		names = append(names, c.FullName)
	}
	return nil, &outcome{text: fmt.Sprintf("I found several clients matching %q: %s. Which one do you mean? Please use their full name.", name, strings.Join(names, ", "))}
}

func (r *Router) handleBooking(ctx context.Context, garageID uint64, ents Entities, now time.Time) outcome {
	if ents.Name == "" {
		return outcome{text: "Who is the appointment for? Tell me the client's full name, e.g. \"book an oil change for John Smith next Tuesday at 10am\"."}
	}
	client, stop := r.clientMatch(ctx, garageID, ents.Name)
	if stop != nil {
		return *stop
	}
	if ents.Date == nil {
		return outcome{text: fmt.Sprintf("What date should I book %s in for? You can say \"tomorrow\", \"next friday\" or a date like \"March 12\".", client.FullName)}
	}
	if ents.Time == nil {
		return outcome{text: fmt.Sprintf("What time on %s works for %s? For example \"10am\" or \"2:30pm\".", ents.DateText, client.FullName)}
	}
	service := ents.Service
	if service == "" {
		service = "general service"
	}
	start := time.Date(ents.Date.Year(), ents.Date.Month(), ents.Date.Day(),
		ents.Time.Hour, ents.Time.Minute, 0, 0, time.UTC)
	appt := &model.Appointment{
		GarageID:    garageID,
		ClientID:    client.ID,
		ServiceType: service,
		Bay:         "1",
		StartsAt:    start,
		EndsAt:      start.Add(time.Hour),
		Status:      model.AppointmentScheduled,
	}
	if err := r.Appointments.Create(ctx, appt); err != nil {
		log.Printf("chat: booking create failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	if r.Publish != nil {
		r.Publish(ctx, "booked", appt, client.FullName)
	}
	return outcome{text: fmt.Sprintf("Booked: %s for %s on %s at %s in bay %s.",
		service, client.FullName, start.Format("Monday, January 2"), start.Format("3:04pm"), appt.Bay)}
}

// startModification is the Idle entry of the reschedule flow. Until a full
// target window is computed nothing is persisted; the sub-state with a
// client but no date is re-derived from the message each turn.
func (r *Router) startModification(ctx context.Context, garageID, userID uint64, ents Entities, now time.Time) outcome {
	if ents.Name == "" {
		return outcome{text: "Whose appointment should I move? Tell me the client's full name."}
	}
	client, stop := r.clientMatch(ctx, garageID, ents.Name)
	if stop != nil {
		return *stop
	}
	appt, err := r.Appointments.NextUpcomingForClient(ctx, garageID, client.ID, now)
	if err != nil {
		if errors.Is(err, repository.ErrAppointmentNotFound) {
			return outcome{text: fmt.Sprintf("%s has no upcoming appointments to move. Would you like to book one instead?", client.FullName)}
		}
		log.Printf("chat: appointment lookup failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	if ents.Date == nil {
		return outcome{text: fmt.Sprintf("%s's next appointment is %s on %s. What date should I move it to?",
			client.FullName, appt.ServiceType, appt.StartsAt.Format("Monday, January 2 at 3:04pm"))}
	}

	newStart, newEnd := NewWindow(appt.StartsAt, appt.EndsAt, *ents.Date, ents.Time)
	proposal := Proposal{
		AppointmentID: appt.ID,
		GarageID:      garageID,
		ClientName:    client.FullName,
		ServiceType:   appt.ServiceType,
		Bay:           appt.Bay,
		NewStart:      newStart,
		NewEnd:        newEnd,
	}
	payload, err := json.Marshal(proposal)
	if err != nil {
		log.Printf("chat: proposal marshal failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	if err := r.States.Save(ctx, userID, model.StageModificationConfirm, payload); err != nil {
		log.Printf("chat: state save failed for user %d: %v", userID, err)
		return outcome{text: tryAgainLater}
	}
	stage := model.StageModificationConfirm
	return outcome{
		text: fmt.Sprintf("Move %s's %s appointment to %s (until %s)? (yes/no)",
			client.FullName, appt.ServiceType,
			newStart.Format("Monday, January 2 at 3:04pm"), newEnd.Format("3:04pm")),
		state: &stage,
	}
}

// continueModification handles the turn after a proposal was stored. The
// reply is matched against the rejection set first so "no, that's ok"
// cancels, then the confirmation set; anything else re-prompts up to the
// attempt cap.
func (r *Router) continueModification(ctx context.Context, garageID, userID uint64, state *model.ConversationState, message string) outcome {
	var p Proposal
	if err := json.Unmarshal(state.Payload, &p); err != nil {
		log.Printf("chat: corrupt proposal payload for user %d: %v", userID, err)
		_ = r.States.Clear(ctx, userID)
		return outcome{text: "I lost track of that request. Could you tell me again what you'd like to move?"}
	}

	if IsRejection(message) {
		if err := r.States.Clear(ctx, userID); err != nil {
			log.Printf("chat: state clear failed for user %d: %v", userID, err)
		}
		return outcome{text: "No problem, I've left the appointment as it was."}
	}

	if IsConfirmation(message) {
		if err := r.Appointments.UpdateWindow(ctx, p.AppointmentID, p.GarageID, p.NewStart, p.NewEnd); err != nil {
			log.Printf("chat: reschedule write failed for appointment %d: %v", p.AppointmentID, err)
			return outcome{text: tryAgainLater, state: &state.Stage}
		}
		if err := r.States.Clear(ctx, userID); err != nil {
			log.Printf("chat: state clear failed for user %d: %v", userID, err)
		}
		if r.Publish != nil {
			if appt, err := r.Appointments.GetByIDAndGarage(ctx, p.AppointmentID, p.GarageID); err == nil {
				r.Publish(ctx, "rescheduled", appt, p.ClientName)
			}
		}
		return outcome{text: fmt.Sprintf("Done: %s's %s appointment is now %s (until %s), still in bay %s.",
			p.ClientName, p.ServiceType,
			p.NewStart.Format("Monday, January 2 at 3:04pm"), p.NewEnd.Format("3:04pm"), p.Bay)}
	}

	attempts, err := r.States.IncrementAttempts(ctx, userID)
	if err != nil {
		log.Printf("chat: attempt bump failed for user %d: %v", userID, err)
	}
	max := r.MaxAttempts
	if max <= 0 {
		max = 3
	}
	if attempts >= max {
		_ = r.States.Clear(ctx, userID)
		return outcome{text: "I'll leave the appointment unchanged for now. Ask me again whenever you're ready."}
	}
	stage := state.Stage
	return outcome{
		text: fmt.Sprintf("Just to confirm: move %s's %s appointment to %s? Please answer yes or no.",
			p.ClientName, p.ServiceType, p.NewStart.Format("Monday, January 2 at 3:04pm")),
		state: &stage,
	}
}

func (r *Router) handleClient(ctx context.Context, garageID uint64, ents Entities) outcome {
	if ents.Name == "" {
		return outcome{text: "Which client would you like to look up? Tell me their full name."}
	}
	client, stop := r.clientMatch(ctx, garageID, ents.Name)
	if stop != nil {
		return *stop
	}
	vehicles, err := r.Vehicles.ListByClient(ctx, garageID, client.ID)
	if err != nil {
		log.Printf("chat: vehicle list failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	tickets, err := r.Tickets.ListByGarage(ctx, garageID, client.ID)
	if err != nil {
		log.Printf("chat: ticket list failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	open := 0
	for _, t := range tickets {
		if t.Status != model.TicketDone {
			open++
		}
	}
	contact := client.Phone
	if contact == "" {
		contact = client.Email
	}
	if contact == "" {
		contact = "no contact details on file"
	}
	return outcome{text: fmt.Sprintf("%s (%s): %d vehicle(s) on file, %d open job ticket(s).",
		client.FullName, contact, len(vehicles), open)}
}

func (r *Router) handleVehicle(ctx context.Context, garageID uint64, ents Entities) outcome {
	if ents.Name == "" {
		return outcome{text: "Whose vehicle should I look up? Tell me the client's full name."}
	}
	client, stop := r.clientMatch(ctx, garageID, ents.Name)
	if stop != nil {
		return *stop
	}
	vehicles, err := r.Vehicles.ListByClient(ctx, garageID, client.ID)
	if err != nil {
		log.Printf("chat: vehicle list failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	if len(vehicles) == 0 {
		return outcome{text: fmt.Sprintf("%s has no vehicles on file yet.", client.FullName)}
	}
	parts := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		desc := fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
		if v.Plate != "" {
			desc += fmt.Sprintf(" (plate %s)", v.Plate)
		}
		parts = append(parts, desc)
	}
	return outcome{text: fmt.Sprintf("%s's vehicles: %s.", client.FullName, strings.Join(parts, "; "))}
}

func (r *Router) handleSafety(ctx context.Context, garageID uint64, ents Entities) outcome {
	if ents.Name == "" {
		return outcome{text: "I can check safety information for a client's vehicle. Whose vehicle is it?"}
	}
	client, stop := r.clientMatch(ctx, garageID, ents.Name)
	if stop != nil {
		return *stop
	}
	vehicles, err := r.Vehicles.ListByClient(ctx, garageID, client.ID)
	if err != nil {
		log.Printf("chat: vehicle list failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	if len(vehicles) == 0 {
		return outcome{text: fmt.Sprintf("%s has no vehicles on file, so there's nothing to check.", client.FullName)}
	}
	v := vehicles[0]
	return outcome{text: fmt.Sprintf("I have no open recall records on file for %s's %d %s %s. For authoritative recall data please check the manufacturer or the national recall register using VIN %s.",
		client.FullName, v.Year, v.Make, v.Model, v.VIN)}
}

func (r *Router) handleJobSheet(ctx context.Context, garageID uint64, ents Entities) outcome {
	var clientID uint64
	var who string
	if ents.Name != "" {
		client, stop := r.clientMatch(ctx, garageID, ents.Name)
		if stop != nil {
			return *stop
		}
		clientID = client.ID
		who = " for " + client.FullName
	}
	tickets, err := r.Tickets.ListByGarage(ctx, garageID, clientID)
	if err != nil {
		log.Printf("chat: ticket list failed: %v", err)
		return outcome{text: tryAgainLater}
	}
	if len(tickets) == 0 {
		return outcome{text: fmt.Sprintf("There are no job sheets%s.", who)}
	}
	shown := tickets
	if len(shown) > 3 {
		shown = shown[:3]
	}
	parts := make([]string, 0, len(shown))
	for _, t := range shown {
		parts = append(parts, fmt.Sprintf("#%d %s (%s)", t.ID, t.Title, t.Status))
	}
	return outcome{text: fmt.Sprintf("Latest job sheets%s: %s.", who, strings.Join(parts, "; "))}
}

// handleAutomotive answers generic car questions with canned guidance keyed
// off the recognized service phrase. There is no model behind this; it is a
// fixed lookup.
func (r *Router) handleAutomotive(ents Entities) outcome {
	tips := map[string]string{
		"oil change": "Most manufacturers recommend an oil change every 5,000-10,000 km or once a year, whichever comes first.",
		"brakes":     "Squealing or grinding usually means the pads are due; have them inspected before the discs wear.",
		"battery":    "Car batteries typically last 3-5 years. Slow cranking on cold mornings is the usual early warning.",
		"tires":      "Check tire pressure monthly and rotate roughly every 8,000-10,000 km for even wear.",
		"tyres":      "Check tyre pressure monthly and rotate roughly every 8,000-10,000 km for even wear.",
		"coolant":    "Coolant should be flushed on the interval in the service book, typically every 2-5 years.",
	}
	if tip, ok := tips[ents.Service]; ok {
		return outcome{text: tip}
	}
	return outcome{text: "Happy to help with general automotive questions. Ask me about oil changes, brakes, batteries, tyres or coolant, or ask me to book an inspection."}
}
