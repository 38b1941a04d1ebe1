package domain

import (
	"errors"
	"time"
)

// ConnectionState is a provider connection's position in its lifecycle.
type ConnectionState string

const (
	StateDisconnected  ConnectionState = "disconnected"
	StateConnecting    ConnectionState = "connecting"
	StateConnected     ConnectionState = "connected"
	StateSyncing       ConnectionState = "syncing"
	StateDisconnecting ConnectionState = "disconnecting"
)

// Status strings shown for a connection.
const (
	StatusTextConnected        = "Connected"
	StatusTextNotConnected     = "Not connected"
	StatusTextConnectionFailed = "Connection failed"
	StatusTextConnecting       = "Waiting for authorization"
	StatusTextDisconnecting    = "Disconnecting"
	StatusTextSyncing          = "Syncing"
	StatusTextSyncFailed       = "Sync failed"
	lastSyncedLayout           = "15:04:05"
)

var (
	ErrInvalidTransition = errors.New("invalid connection state transition")
	ErrSyncInProgress    = errors.New("sync already in progress")
	ErrNotConnected      = errors.New("provider not connected")
)

// ProviderConnection tracks one external provider for the lifetime of a session.
// It is never persisted; it is rebuilt from the backend connection check.
type ProviderConnection struct {
	provider     Provider
	state        ConnectionState
	lastSyncedAt *time.Time
	lastError    string
	authURL      string
	failed       bool
	// generation changes on every disconnect so a sync that started before
	// the disconnect cannot write its result afterwards.
	generation uint64
}

// NewProviderConnection creates a disconnected connection.
func NewProviderConnection(provider Provider) *ProviderConnection {
	return &ProviderConnection{
		provider: provider,
		state:    StateDisconnected,
	}
}

// Getters
func (c *ProviderConnection) Provider() Provider     { return c.provider }
func (c *ProviderConnection) State() ConnectionState { return c.state }
func (c *ProviderConnection) LastError() string      { return c.lastError }
func (c *ProviderConnection) AuthURL() string        { return c.authURL }

// Connected is true while the provider is connected, including mid-sync.
func (c *ProviderConnection) Connected() bool {
	return c.state == StateConnected || c.state == StateSyncing
}

// LastSyncedAt returns the last successful sync time, if any.
func (c *ProviderConnection) LastSyncedAt() (time.Time, bool) {
	if c.lastSyncedAt == nil {
		return time.Time{}, false
	}
	return *c.lastSyncedAt, true
}

// BeginConnect moves disconnected -> connecting.
func (c *ProviderConnection) BeginConnect() error {
	if c.state != StateDisconnected {
		return ErrInvalidTransition
	}
	c.state = StateConnecting
	c.failed = false
	c.lastError = ""
	c.authURL = ""
	return nil
}

// AwaitAuthorization records the URL the user must visit to finish connecting.
func (c *ProviderConnection) AwaitAuthorization(authURL string) error {
	if c.state != StateConnecting {
		return ErrInvalidTransition
	}
	c.authURL = authURL
	return nil
}

// MarkConnected moves connecting -> connected.
func (c *ProviderConnection) MarkConnected() error {
	if c.state != StateConnecting {
		return ErrInvalidTransition
	}
	c.state = StateConnected
	c.authURL = ""
	return nil
}

// FailConnect moves connecting -> disconnected and records the failure.
func (c *ProviderConnection) FailConnect(message string) error {
	if c.state != StateConnecting {
		return ErrInvalidTransition
	}
	c.state = StateDisconnected
	c.failed = true
	c.lastError = message
	c.authURL = ""
	return nil
}

// BeginSync moves connected -> syncing and returns a ticket identifying the
// current connection generation.
func (c *ProviderConnection) BeginSync() (uint64, error) {
	switch c.state {
	case StateConnected:
		c.state = StateSyncing
		return c.generation, nil
	case StateSyncing:
		return 0, ErrSyncInProgress
	default:
		return 0, ErrNotConnected
	}
}

// CompleteSync moves syncing -> connected and stamps lastSyncedAt.
// It reports false when the ticket is stale.
func (c *ProviderConnection) CompleteSync(ticket uint64, at time.Time) bool {
	if c.state != StateSyncing || ticket != c.generation {
		return false
	}
	c.state = StateConnected
	synced := at
	c.lastSyncedAt = &synced
	c.lastError = ""
	return true
}

// FailSync moves syncing -> connected and records the error.
// It reports false when the ticket is stale.
func (c *ProviderConnection) FailSync(ticket uint64, message string) bool {
	if c.state != StateSyncing || ticket != c.generation {
		return false
	}
	c.state = StateConnected
	if message == "" {
		message = StatusTextSyncFailed
	}
	c.lastError = message
	return true
}

// BeginDisconnect moves connected or syncing -> disconnecting.
// lastSyncedAt is cleared immediately, whatever happens to an in-flight sync.
func (c *ProviderConnection) BeginDisconnect() error {
	if !c.Connected() {
		return ErrInvalidTransition
	}
	c.state = StateDisconnecting
	c.lastSyncedAt = nil
	c.generation++
	return nil
}

// MarkDisconnected moves disconnecting -> disconnected.
func (c *ProviderConnection) MarkDisconnected() error {
	if c.state != StateDisconnecting {
		return ErrInvalidTransition
	}
	c.state = StateDisconnected
	c.lastError = ""
	c.failed = false
	return nil
}

// FailDisconnect moves disconnecting -> connected when the backend refused.
func (c *ProviderConnection) FailDisconnect(message string) error {
	if c.state != StateDisconnecting {
		return ErrInvalidTransition
	}
	c.state = StateConnected
	c.lastError = message
	return nil
}

// Rehydrate applies the backend's view of the connection. Transient states
// owned by an operation in flight are left alone. It reports whether the
// connection became connected.
func (c *ProviderConnection) Rehydrate(connected bool) bool {
	switch c.state {
	case StateSyncing, StateDisconnecting:
		return false
	}
	if connected {
		if c.state == StateConnected {
			return false
		}
		c.state = StateConnected
		c.failed = false
		c.lastError = ""
		c.authURL = ""
		return true
	}
	if c.state == StateConnected {
		c.generation++
		c.lastSyncedAt = nil
		c.state = StateDisconnected
		c.lastError = ""
	}
	return false
}

// StatusText renders the connection for the sync panel.
func (c *ProviderConnection) StatusText() string {
	switch c.state {
	case StateConnected:
		if c.lastError != "" {
			return c.lastError
		}
		if c.lastSyncedAt != nil {
			return "Last synced at " + c.lastSyncedAt.Format(lastSyncedLayout)
		}
		return StatusTextConnected
	case StateSyncing:
		return StatusTextSyncing
	case StateConnecting:
		return StatusTextConnecting
	case StateDisconnecting:
		return StatusTextDisconnecting
	default:
		if c.failed {
			return StatusTextConnectionFailed
		}
		return StatusTextNotConnected
	}
}

// ConnectionStatus is a read-only snapshot of a connection.
type ConnectionStatus struct {
	Provider     Provider        `json:"provider"`
	State        ConnectionState `json:"state"`
	Connected    bool            `json:"connected"`
	LastSyncedAt *time.Time      `json:"last_synced_at,omitempty"`
	LastError    string          `json:"last_error,omitempty"`
	Status       string          `json:"status"`
	AuthURL      string          `json:"auth_url,omitempty"`
}

// Snapshot returns the current status.
func (c *ProviderConnection) Snapshot() ConnectionStatus {
	var synced *time.Time
	if c.lastSyncedAt != nil {
		t := *c.lastSyncedAt
		synced = &t
	}
	return ConnectionStatus{
		Provider:     c.provider,
		State:        c.state,
		Connected:    c.Connected(),
		LastSyncedAt: synced,
		LastError:    c.lastError,
		Status:       c.StatusText(),
		AuthURL:      c.authURL,
	}
}
