package domain

import "fmt"

// Provider identifies an external calendar provider.
type Provider string

const (
	// ProviderGoogle is Google Calendar + Google Tasks, reached through the backend.
	ProviderGoogle Provider = "google"
	// ProviderOutlook is Outlook Calendar + Microsoft To Do, reached through the backend.
	ProviderOutlook Provider = "outlook"
)

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// IsValid returns true if the provider is recognized.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderGoogle, ProviderOutlook:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable name for the provider.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGoogle:
		return "Google Calendar"
	case ProviderOutlook:
		return "Outlook Calendar"
	default:
		return string(p)
	}
}

// Other returns the competing provider. Only one of the pair may be connected.
func (p Provider) Other() Provider {
	if p == ProviderGoogle {
		return ProviderOutlook
	}
	return ProviderGoogle
}

// ParseProvider converts user input into a Provider.
func ParseProvider(s string) (Provider, error) {
	switch s {
	case "google", "gcal":
		return ProviderGoogle, nil
	case "outlook", "microsoft", "ms":
		return ProviderOutlook, nil
	default:
		return "", fmt.Errorf("unknown provider %q (expected google or outlook)", s)
	}
}

// AllProviders returns the external providers in adoption order.
func AllProviders() []Provider {
	return []Provider{ProviderGoogle, ProviderOutlook}
}

// Source tags where a calendar item came from.
type Source string

const (
	SourceLocal        Source = "local"
	SourceGoogleEvent  Source = "google_event"
	SourceGoogleTasks  Source = "google_tasks"
	SourceOutlookEvent Source = "outlook_event"
	SourceOutlookTasks Source = "outlook_tasks"
	SourceEventModel   Source = "event_model"
)

// Provider returns the external provider owning the source, or "" for internal stores.
func (s Source) Provider() Provider {
	switch s {
	case SourceGoogleEvent, SourceGoogleTasks:
		return ProviderGoogle
	case SourceOutlookEvent, SourceOutlookTasks:
		return ProviderOutlook
	default:
		return ""
	}
}

// IsValid returns true if the source is recognized.
func (s Source) IsValid() bool {
	switch s {
	case SourceLocal, SourceGoogleEvent, SourceGoogleTasks, SourceOutlookEvent, SourceOutlookTasks, SourceEventModel:
		return true
	default:
		return false
	}
}

// AllSources returns every source in display order.
func AllSources() []Source {
	return []Source{
		SourceLocal,
		SourceGoogleTasks,
		SourceOutlookTasks,
		SourceGoogleEvent,
		SourceOutlookEvent,
		SourceEventModel,
	}
}
