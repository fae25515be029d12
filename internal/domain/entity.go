// Package domain defines the core entities of a Gatherly deployment: users,
// the communities they own, and the events published under each community.
package domain

import "time"

// Entity holds the identity and timestamps shared by every persisted record.
type Entity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch sets UpdatedAt to the current time.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now()
}
