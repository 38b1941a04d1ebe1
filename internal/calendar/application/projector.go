package application

import (
	"fmt"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// MaxVisiblePerSource is how many items of one source a day cell shows.
const MaxVisiblePerSource = 2

// Style is the rendering hint for one source.
type Style struct {
	Badge string `json:"badge"`
	Color string `json:"color"`
}

var sourceStyles = map[domain.Source]Style{
	domain.SourceLocal:        {Badge: "Công việc", Color: "priority"},
	domain.SourceGoogleTasks:  {Badge: "Google Task", Color: "#e8f5e9"},
	domain.SourceOutlookTasks: {Badge: "Outlook Task", Color: "#e3f2fd"},
	domain.SourceGoogleEvent:  {Badge: "Google Calendar", Color: "#e3f2fd"},
	domain.SourceOutlookEvent: {Badge: "Outlook Calendar", Color: "#e3f2fd"},
	domain.SourceEventModel:   {Badge: "Sự kiện nội bộ", Color: "#fff3e0"},
}

// SourceStyle returns the badge and color key for a source.
func SourceStyle(source domain.Source) Style {
	if s, ok := sourceStyles[source]; ok {
		return s
	}
	return Style{Badge: string(source), Color: "#fff"}
}

// PriorityBackground returns the cell background for a local task.
func PriorityBackground(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return "#ffd6d6"
	case domain.PriorityMedium:
		return "#fffbe6"
	default:
		return "#fff"
	}
}

// StatusLabel returns the display label of a status.
func StatusLabel(s domain.Status) string {
	switch s {
	case domain.StatusPending:
		return "Đang chờ"
	case domain.StatusInProgress:
		return "Đang thực hiện"
	case domain.StatusCompleted:
		return "Đã hoàn thành"
	case domain.StatusCancelled:
		return "Đã hủy"
	default:
		return string(s)
	}
}

// ItemView is an item as rendered in a day cell.
type ItemView struct {
	domain.CalendarItem
	Background  string `json:"background"`
	StatusLabel string `json:"status_label"`
}

// SourceGroup is one source's share of a day cell.
type SourceGroup struct {
	Source  domain.Source `json:"source"`
	Style   Style         `json:"style"`
	Visible []ItemView    `json:"visible"`
	Total   int           `json:"total"`
}

// Bucket is one day cell.
type Bucket struct {
	Day    time.Time     `json:"day"`
	Groups []SourceGroup `json:"groups"`
	Items  DayItems      `json:"-"`
	Total  int           `json:"total"`
	// Hidden is the number of items not shown.
	Hidden int `json:"hidden"`
	// Overflow is the "+N thêm" label, empty when nothing is hidden.
	Overflow string `json:"overflow,omitempty"`
}

// WeekView is seven consecutive day cells.
type WeekView struct {
	Start   time.Time `json:"start"`
	Buckets []Bucket  `json:"buckets"`
}

// MonthView is a month grid. Leading cells before the first are nil.
type MonthView struct {
	Month time.Time `json:"month"`
	Cells []*Bucket `json:"cells"`
}

// Projector turns the store into day-bucketed display groups. It never
// mutates the store.
type Projector struct {
	store     *Store
	weekStart time.Weekday
	loc       *time.Location
}

// NewProjector creates a projector. Days are computed in loc.
func NewProjector(store *Store, weekStart time.Weekday, loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{store: store, weekStart: weekStart, loc: loc}
}

// WeekStart returns the configured first day of the week.
func (p *Projector) WeekStart() time.Weekday {
	return p.weekStart
}

// startOfWeek returns midnight of the first day of anchor's week.
func (p *Projector) startOfWeek(anchor time.Time) time.Time {
	day := StartOfDay(anchor.In(p.loc))
	offset := (int(day.Weekday()) - int(p.weekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekDays returns the seven days of anchor's week, at midnight.
func (p *Projector) WeekDays(anchor time.Time) []time.Time {
	start := p.startOfWeek(anchor)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// MonthDays returns the month grid of anchor's month: one nil for every day
// between the week start and the first, then each day of the month.
func (p *Projector) MonthDays(anchor time.Time) []*time.Time {
	a := anchor.In(p.loc)
	first := time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, p.loc)
	lead := (int(first.Weekday()) - int(p.weekStart) + 7) % 7
	daysInMonth := first.AddDate(0, 1, -1).Day()

	cells := make([]*time.Time, lead, lead+daysInMonth)
	for d := 0; d < daysInMonth; d++ {
		day := first.AddDate(0, 0, d)
		cells = append(cells, &day)
	}
	return cells
}

// DayBucket projects one day. Each source shows at most
// MaxVisiblePerSource items. Hidden counts the day's items beyond
// MaxVisiblePerSource regardless of source.
func (p *Projector) DayBucket(day time.Time) Bucket {
	day = StartOfDay(day.In(p.loc))
	items := p.store.QueryByDay(day)
	bucket := Bucket{Day: day, Items: items}

	for _, source := range domain.AllSources() {
		all := items.BySource(source)
		if len(all) == 0 {
			continue
		}
		n := min(len(all), MaxVisiblePerSource)
		group := SourceGroup{
			Source:  source,
			Style:   SourceStyle(source),
			Visible: make([]ItemView, 0, n),
			Total:   len(all),
		}
		for _, item := range all[:n] {
			group.Visible = append(group.Visible, project(item))
		}
		bucket.Groups = append(bucket.Groups, group)
		bucket.Total += len(all)
	}
	if bucket.Total > MaxVisiblePerSource {
		bucket.Hidden = bucket.Total - MaxVisiblePerSource
		bucket.Overflow = OverflowLabel(bucket.Hidden)
	}
	return bucket
}

// WeekView projects anchor's week.
func (p *Projector) WeekView(anchor time.Time) WeekView {
	days := p.WeekDays(anchor)
	view := WeekView{Start: days[0], Buckets: make([]Bucket, 0, len(days))}
	for _, d := range days {
		view.Buckets = append(view.Buckets, p.DayBucket(d))
	}
	return view
}

// MonthView projects anchor's month.
func (p *Projector) MonthView(anchor time.Time) MonthView {
	days := p.MonthDays(anchor)
	a := anchor.In(p.loc)
	view := MonthView{
		Month: time.Date(a.Year(), a.Month(), 1, 0, 0, 0, 0, p.loc),
		Cells: make([]*Bucket, len(days)),
	}
	for i, d := range days {
		if d == nil {
			continue
		}
		b := p.DayBucket(*d)
		view.Cells[i] = &b
	}
	return view
}

// OverflowLabel renders the hidden-item indicator.
func OverflowLabel(hidden int) string {
	return fmt.Sprintf("+%d thêm", hidden)
}

func project(item domain.CalendarItem) ItemView {
	bg := SourceStyle(item.Source).Color
	if item.Source == domain.SourceLocal {
		bg = PriorityBackground(item.Priority)
	}
	return ItemView{
		CalendarItem: item,
		Background:   bg,
		StatusLabel:  StatusLabel(item.Status),
	}
}
