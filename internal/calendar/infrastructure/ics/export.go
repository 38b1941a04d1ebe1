// Package ics renders calendar items as an iCalendar (RFC 5545) document.
package ics

import (
	"io"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/huynnh/calsync/internal/calendar/domain"
)

// ProductID is written to PRODID.
const ProductID = "-//calsync//Calendar Export//VI"

// Export renders the items anchored in [from, to) as a VCALENDAR. Items with
// both a start and an end become VEVENTs; everything else becomes a VTODO.
// A zero from or to leaves that side of the range open.
func Export(items []domain.CalendarItem, from, to time.Time) string {
	return build(items, from, to, time.Now().UTC()).Serialize()
}

// Write is Export into w.
func Write(w io.Writer, items []domain.CalendarItem, from, to time.Time) error {
	_, err := io.WriteString(w, Export(items, from, to))
	return err
}

func build(items []domain.CalendarItem, from, to, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)

	selected := make([]domain.CalendarItem, 0, len(items))
	for _, item := range items {
		if inRange(item, from, to) {
			selected = append(selected, item)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool {
		a, _ := selected[i].AnchorTime()
		b, _ := selected[j].AnchorTime()
		return a.Before(b)
	})

	for _, item := range selected {
		if item.StartTime != nil && item.EndTime != nil {
			addEvent(cal, item, stamp)
			continue
		}
		addTodo(cal, item, stamp)
	}
	return cal
}

func inRange(item domain.CalendarItem, from, to time.Time) bool {
	anchor, ok := item.AnchorTime()
	if !ok {
		return false
	}
	if !from.IsZero() && anchor.Before(from) {
		return false
	}
	if !to.IsZero() && !anchor.Before(to) {
		return false
	}
	return true
}

func uid(item domain.CalendarItem) string {
	return item.ID + "@calsync"
}

func addEvent(cal *ical.Calendar, item domain.CalendarItem, stamp time.Time) {
	event := cal.AddEvent(uid(item))
	event.SetDtStampTime(stamp)
	event.SetStartAt(item.StartTime.UTC())
	event.SetEndAt(item.EndTime.UTC())
	event.SetSummary(item.Name)
	if item.Description != "" {
		event.SetDescription(item.Description)
	}
	if item.Location != "" {
		event.SetLocation(item.Location)
	}
	event.SetStatus(eventStatus(item.Status))
}

func addTodo(cal *ical.Calendar, item domain.CalendarItem, stamp time.Time) {
	todo := cal.AddTodo(uid(item))
	todo.SetDtStampTime(stamp)
	if item.StartTime != nil {
		todo.SetStartAt(item.StartTime.UTC())
	}
	if item.DueDate != nil {
		todo.SetDueAt(item.DueDate.UTC())
	}
	todo.SetSummary(item.Name)
	if item.Description != "" {
		todo.SetDescription(item.Description)
	}
	todo.SetStatus(todoStatus(item.Status))
}

func eventStatus(s domain.Status) ical.ObjectStatus {
	if s == domain.StatusCancelled {
		return ical.ObjectStatusCancelled
	}
	return ical.ObjectStatusConfirmed
}

func todoStatus(s domain.Status) ical.ObjectStatus {
	switch s {
	case domain.StatusCompleted:
		return ical.ObjectStatusCompleted
	case domain.StatusCancelled:
		return ical.ObjectStatusCancelled
	case domain.StatusInProgress:
		return ical.ObjectStatusInProcess
	default:
		return ical.ObjectStatusNeedsAction
	}
}
