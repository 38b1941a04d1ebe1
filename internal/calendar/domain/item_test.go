package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huynnh/calsync/internal/calendar/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func TestCalendarItem_AnchorTime(t *testing.T) {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	due := time.Date(2024, 6, 3, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		item   domain.CalendarItem
		want   time.Time
		wantOK bool
	}{
		{"start wins", domain.CalendarItem{StartTime: ptr(start), DueDate: ptr(due)}, start, true},
		{"due date fallback", domain.CalendarItem{DueDate: ptr(due)}, due, true},
		{"no anchor", domain.CalendarItem{}, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.item.AnchorTime()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendarItem_CanPushTo(t *testing.T) {
	local := domain.CalendarItem{Source: domain.SourceLocal}
	googleTask := domain.CalendarItem{Source: domain.SourceGoogleTasks}
	outlookEvent := domain.CalendarItem{Source: domain.SourceOutlookEvent}

	assert.True(t, local.CanPushTo(domain.ProviderGoogle))
	assert.True(t, local.CanPushTo(domain.ProviderOutlook))
	assert.False(t, googleTask.CanPushTo(domain.ProviderGoogle))
	assert.True(t, googleTask.CanPushTo(domain.ProviderOutlook))
	assert.False(t, outlookEvent.CanPushTo(domain.ProviderOutlook))

	assert.False(t, local.IsExternal())
	assert.True(t, googleTask.IsExternal())
}

func TestCalendarItem_PushesAsEvent(t *testing.T) {
	end := time.Now()
	assert.True(t, domain.CalendarItem{EndTime: &end}.PushesAsEvent())
	assert.False(t, domain.CalendarItem{}.PushesAsEvent())
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, domain.PriorityHigh, domain.ParsePriority("high"))
	assert.Equal(t, domain.PriorityLow, domain.ParsePriority("low"))
	assert.Equal(t, domain.PriorityMedium, domain.ParsePriority(""))
	assert.Equal(t, domain.PriorityMedium, domain.ParsePriority("urgent"))
}

func TestParseStatus(t *testing.T) {
	st, err := domain.ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st)

	st, err = domain.ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, st)

	_, err = domain.ParseStatus("archived")
	assert.Error(t, err)
}

func TestProvider(t *testing.T) {
	assert.Equal(t, domain.ProviderOutlook, domain.ProviderGoogle.Other())
	assert.Equal(t, domain.ProviderGoogle, domain.ProviderOutlook.Other())
	assert.Equal(t, "Google Calendar", domain.ProviderGoogle.DisplayName())
	assert.Equal(t, "Outlook Calendar", domain.ProviderOutlook.DisplayName())
	assert.False(t, domain.Provider("caldav").IsValid())

	p, err := domain.ParseProvider("microsoft")
	require.NoError(t, err)
	assert.Equal(t, domain.ProviderOutlook, p)

	_, err = domain.ParseProvider("apple")
	assert.Error(t, err)
}

func TestSource_Provider(t *testing.T) {
	assert.Equal(t, domain.ProviderGoogle, domain.SourceGoogleEvent.Provider())
	assert.Equal(t, domain.ProviderGoogle, domain.SourceGoogleTasks.Provider())
	assert.Equal(t, domain.ProviderOutlook, domain.SourceOutlookEvent.Provider())
	assert.Equal(t, domain.ProviderOutlook, domain.SourceOutlookTasks.Provider())
	assert.Equal(t, domain.Provider(""), domain.SourceLocal.Provider())
	assert.Equal(t, domain.Provider(""), domain.SourceEventModel.Provider())
	assert.Len(t, domain.AllSources(), 6)
}

func TestRecordID(t *testing.T) {
	var rec struct {
		A domain.RecordID `json:"a"`
		B domain.RecordID `json:"b"`
		C domain.RecordID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 17, "b": "evt_9", "c": null}`), &rec))
	assert.Equal(t, domain.RecordID("17"), rec.A)
	assert.Equal(t, domain.RecordID("evt_9"), rec.B)
	assert.Equal(t, domain.RecordID(""), rec.C)

	data, err := json.Marshal(map[string]domain.RecordID{"id": "17", "other": "evt_9"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 17, "other": "evt_9"}`, string(data))
}
