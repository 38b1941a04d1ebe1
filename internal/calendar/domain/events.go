package domain

import (
	"time"

	sharedDomain "github.com/huynnh/calsync/internal/shared/domain"
)

const (
	// AggregateTypeProviderConnection is the aggregate type for provider connections.
	AggregateTypeProviderConnection = "provider_connection"

	// Event routing keys
	RoutingKeyProviderConnected    = "calendar.provider.connected"
	RoutingKeyProviderDisconnected = "calendar.provider.disconnected"
	RoutingKeyProviderSynced       = "calendar.provider.synced"
	RoutingKeyProviderSyncFailed   = "calendar.provider.sync_failed"
	RoutingKeyAggregationRefreshed = "calendar.aggregation.refreshed"
)

// ProviderConnectedEvent is published when a provider reaches connected.
type ProviderConnectedEvent struct {
	sharedDomain.BaseEvent
	Provider Provider `json:"provider"`
}

// NewProviderConnectedEvent creates a new provider connected event.
func NewProviderConnectedEvent(provider Provider) *ProviderConnectedEvent {
	return &ProviderConnectedEvent{
		BaseEvent: sharedDomain.NewBaseEvent(provider.String(), AggregateTypeProviderConnection, RoutingKeyProviderConnected),
		Provider:  provider,
	}
}

// ProviderDisconnectedEvent is published when a provider is disconnected.
type ProviderDisconnectedEvent struct {
	sharedDomain.BaseEvent
	Provider Provider `json:"provider"`
}

// NewProviderDisconnectedEvent creates a new provider disconnected event.
func NewProviderDisconnectedEvent(provider Provider) *ProviderDisconnectedEvent {
	return &ProviderDisconnectedEvent{
		BaseEvent: sharedDomain.NewBaseEvent(provider.String(), AggregateTypeProviderConnection, RoutingKeyProviderDisconnected),
		Provider:  provider,
	}
}

// ProviderSyncedEvent is published when a sync cycle completes.
type ProviderSyncedEvent struct {
	sharedDomain.BaseEvent
	Provider   Provider      `json:"provider"`
	Steps      []string      `json:"steps"`
	Items      int           `json:"items"`
	Duration   time.Duration `json:"duration_ns"`
	Background bool          `json:"background"`
}

// NewProviderSyncedEvent creates a new provider synced event.
func NewProviderSyncedEvent(provider Provider, steps []string, items int, duration time.Duration, background bool) *ProviderSyncedEvent {
	return &ProviderSyncedEvent{
		BaseEvent:  sharedDomain.NewBaseEvent(provider.String(), AggregateTypeProviderConnection, RoutingKeyProviderSynced),
		Provider:   provider,
		Steps:      steps,
		Items:      items,
		Duration:   duration,
		Background: background,
	}
}

// ProviderSyncFailedEvent is published when a sync cycle aborts.
type ProviderSyncFailedEvent struct {
	sharedDomain.BaseEvent
	Provider   Provider `json:"provider"`
	Step       string   `json:"step"`
	Error      string   `json:"error"`
	Background bool     `json:"background"`
}

// NewProviderSyncFailedEvent creates a new provider sync failed event.
func NewProviderSyncFailedEvent(provider Provider, step, errMsg string, background bool) *ProviderSyncFailedEvent {
	return &ProviderSyncFailedEvent{
		BaseEvent:  sharedDomain.NewBaseEvent(provider.String(), AggregateTypeProviderConnection, RoutingKeyProviderSyncFailed),
		Provider:   provider,
		Step:       step,
		Error:      errMsg,
		Background: background,
	}
}

// AggregationRefreshedEvent is published after the store is replaced.
type AggregationRefreshedEvent struct {
	sharedDomain.BaseEvent
	Items          int      `json:"items"`
	FailedBranches []string `json:"failed_branches,omitempty"`
}

// NewAggregationRefreshedEvent creates a new aggregation refreshed event.
func NewAggregationRefreshedEvent(items int, failed []string) *AggregationRefreshedEvent {
	return &AggregationRefreshedEvent{
		BaseEvent:      sharedDomain.NewBaseEvent("aggregation", "aggregation_store", RoutingKeyAggregationRefreshed),
		Items:          items,
		FailedBranches: failed,
	}
}
