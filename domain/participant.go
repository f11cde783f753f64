// Package domain contains core concepts of the chat system.
// This file defines users and the edges between them.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

type User struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"displayName"`
	Avatar      string         `json:"avatar"`
	Status      Status         `json:"status"`
	LastSeen    time.Time      `json:"lastSeen"`
	Profile     map[string]any `json:"profile,omitempty"`
}

// ContactEdge is undirected: storing it always writes both directions.
type ContactEdge struct {
	A string
	B string
}

// Valid rejects self-edges and empty identities.
func (c ContactEdge) Valid() bool {
	return c.A != "" && c.B != "" && c.A != c.B
}

// BlockEdge is directed: Blocker refuses messages coming from Blocked.
type BlockEdge struct {
	Blocker string
	Blocked string
}
