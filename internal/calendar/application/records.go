package application

import (
	"encoding/json"

	"github.com/huynnh/calsync/internal/calendar/domain"
)

// RawRecord is a record exactly as one provider returns it. The set of
// implementations is closed; the normalizer switches over it.
type RawRecord interface {
	rawRecord()
}

// DateTime is the {dateTime, date, timeZone} object used by event payloads.
type DateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// LocalTaskRecord is a task owned by the planner backend.
type LocalTaskRecord struct {
	ID          domain.RecordID `json:"id"`
	TaskName    string          `json:"task_name"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	DueDate     string          `json:"due_date"`
	Status      string          `json:"status"`
	IsConflict  bool            `json:"is_conflict"`
	LinkedTo    string          `json:"linked_to"`
	ExternalID  string          `json:"external_id"`
	CreatedAt   string          `json:"created_at"`
}

// EventModelRecord is an event owned by the planner backend.
type EventModelRecord struct {
	ID               domain.RecordID `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Start            DateTime        `json:"start"`
	End              DateTime        `json:"end"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	Location         string          `json:"location"`
	ExternalID       string          `json:"external_id"`
	ExternalProvider string          `json:"external_provider"`
	IsConflict       bool            `json:"is_conflict"`
}

// GoogleEventRecord is a Google Calendar event mirrored by the backend.
type GoogleEventRecord struct {
	ID          domain.RecordID `json:"id"`
	ExternalID  string          `json:"external_id"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Start       DateTime        `json:"start"`
	End         DateTime        `json:"end"`
}

// GoogleTaskRecord is a Google Tasks entry mirrored by the backend.
type GoogleTaskRecord struct {
	ID          domain.RecordID `json:"id"`
	ExternalID  string          `json:"external_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     string          `json:"due_date"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// GoogleSnapshot is the combined Google read model.
type GoogleSnapshot struct {
	Events []GoogleEventRecord `json:"events"`
	Tasks  []GoogleTaskRecord  `json:"tasks"`
}

// OutlookEventRecord is an Outlook calendar event mirrored by the backend.
type OutlookEventRecord struct {
	ID          domain.RecordID `json:"id"`
	ExternalID  string          `json:"external_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	Location    string          `json:"location"`
}

// OutlookTaskRecord is a Microsoft To Do entry mirrored by the backend.
type OutlookTaskRecord struct {
	ID          domain.RecordID `json:"id"`
	ExternalID  string          `json:"external_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     string          `json:"due_date"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

// OutlookSyncResult is the response of the combined Outlook sync.
type OutlookSyncResult struct {
	Message    string          `json:"message"`
	PushEvents json.RawMessage `json:"push_events,omitempty"`
	PushTasks  json.RawMessage `json:"push_tasks,omitempty"`
	PullEvents struct {
		Message string               `json:"message"`
		Events  []OutlookEventRecord `json:"events"`
	} `json:"pull_events"`
	PullTasks struct {
		Message string              `json:"message"`
		Tasks   []OutlookTaskRecord `json:"tasks"`
	} `json:"pull_tasks"`
}

func (LocalTaskRecord) rawRecord()    {}
func (EventModelRecord) rawRecord()   {}
func (GoogleEventRecord) rawRecord()  {}
func (GoogleTaskRecord) rawRecord()   {}
func (OutlookEventRecord) rawRecord() {}
func (OutlookTaskRecord) rawRecord()  {}
