package models

import "time"

// CloudStatus is the connection state shown in the status bar.
type CloudStatus string

const (
	StatusLocalOnly CloudStatus = "local"     // no remote store configured
	StatusOffline   CloudStatus = "offline"   // remote configured, no session running
	StatusSyncing   CloudStatus = "syncing"   // session started or a write in flight
	StatusConnected CloudStatus = "connected" // last snapshot or write succeeded
	StatusError     CloudStatus = "error"     // last subscription delivery or write failed
)

// StatusReport exposes store state to the UI without leaking internals.
type StatusReport struct {
	Cloud         CloudStatus `json:"cloud"`
	SessionActive bool        `json:"sessionActive"`
	Synced        bool        `json:"synced"`
	HasLocalData  bool        `json:"hasLocalData"`
	Categories    int         `json:"categories"`
	Notes         int         `json:"notes"`
	LastSnapshot  *time.Time  `json:"lastSnapshot,omitempty"`
	LastError     string      `json:"lastError,omitempty"`
}
