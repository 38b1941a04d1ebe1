package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	calendarApp "github.com/huynnh/calsync/internal/calendar/application"
	calendarDomain "github.com/huynnh/calsync/internal/calendar/domain"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
	clockLayout    = "15:04"
)

var dateTimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04",
	time.RFC3339,
}

// ParseDate parses YYYY-MM-DD in loc. An empty value returns fallback.
func ParseDate(value string, loc *time.Location, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", value)
	}
	return t, nil
}

// ParseDateTime parses "YYYY-MM-DD HH:MM" or RFC3339 in loc. An empty value
// returns the zero time.
func ParseDateTime(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use \"YYYY-MM-DD HH:MM\"", value)
}

// StatusIcon returns the checkbox shown for a status.
func StatusIcon(status calendarDomain.Status) string {
	switch status {
	case calendarDomain.StatusCompleted:
		return "[x]"
	case calendarDomain.StatusInProgress:
		return "[>]"
	case calendarDomain.StatusCancelled:
		return "[-]"
	default:
		return "[ ]"
	}
}

// PriorityBadge returns the short priority marker.
func PriorityBadge(priority calendarDomain.Priority) string {
	switch priority {
	case calendarDomain.PriorityHigh:
		return "(!)"
	case calendarDomain.PriorityMedium:
		return "(~)"
	case calendarDomain.PriorityLow:
		return "(.)"
	default:
		return ""
	}
}

// FormatSpan renders an item's time range in loc.
func FormatSpan(item calendarDomain.CalendarItem, loc *time.Location) string {
	switch {
	case item.StartTime != nil && item.EndTime != nil:
		start, end := item.StartTime.In(loc), item.EndTime.In(loc)
		if calendarApp.StartOfDay(start).Equal(calendarApp.StartOfDay(end)) {
			return start.Format(DateTimeLayout) + " - " + end.Format(clockLayout)
		}
		return start.Format(DateTimeLayout) + " - " + end.Format(DateTimeLayout)
	case item.StartTime != nil:
		return item.StartTime.In(loc).Format(DateTimeLayout)
	case item.DueDate != nil:
		return "due " + item.DueDate.In(loc).Format(DateTimeLayout)
	default:
		return "no date"
	}
}

// PrintItems writes a task or event listing.
func PrintItems(w io.Writer, title string, items []calendarDomain.CalendarItem, loc *time.Location) {
	if len(items) == 0 {
		fmt.Fprintf(w, "No %s found.\n", strings.ToLower(title))
		return
	}
	fmt.Fprintf(w, "%s (%d):\n", title, len(items))
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, item := range items {
		PrintItem(w, item, loc)
		fmt.Fprintln(w)
	}
}

// PrintItem writes one item.
func PrintItem(w io.Writer, item calendarDomain.CalendarItem, loc *time.Location) {
	line := fmt.Sprintf("%s %s", StatusIcon(item.Status), item.Name)
	if item.Kind == calendarDomain.KindTask {
		if badge := PriorityBadge(item.Priority); badge != "" {
			line += " " + badge
		}
	}
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "   ID: %s\n", item.NativeID)
	fmt.Fprintf(w, "   When: %s\n", FormatSpan(item, loc))
	if item.Location != "" {
		fmt.Fprintf(w, "   Where: %s\n", item.Location)
	}
	fmt.Fprintf(w, "   Status: %s\n", calendarApp.StatusLabel(item.Status))
}

// PrintBucket writes one day cell grouped by source.
func PrintBucket(w io.Writer, bucket calendarApp.Bucket, loc *time.Location) {
	fmt.Fprintf(w, "%s (%s)\n", bucket.Day.Format(DateLayout), bucket.Day.Weekday())
	if bucket.Total == 0 {
		fmt.Fprintln(w, "   -")
		return
	}
	for _, group := range bucket.Groups {
		for _, view := range group.Visible {
			fmt.Fprintf(w, "   [%s] %s %s", group.Style.Badge, StatusIcon(view.Status), view.Name)
			if view.StartTime != nil {
				fmt.Fprintf(w, " %s", view.StartTime.In(loc).Format(clockLayout))
			}
			fmt.Fprintln(w)
		}
	}
	if bucket.Overflow != "" {
		fmt.Fprintf(w, "   %s\n", bucket.Overflow)
	}
}

// PrintSourceNotes reports cached or partial results.
func PrintSourceNotes(w io.Writer, result *calendarApp.AggregateResult, loc *time.Location) {
	if result == nil {
		return
	}
	if result.Cached {
		fmt.Fprintf(w, "(offline: showing snapshot from %s)\n", result.FetchedAt.In(loc).Format(DateTimeLayout))
	}
	for _, failed := range result.Failed {
		fmt.Fprintf(w, "(warning: %s unavailable)\n", failed.Branch)
	}
}
