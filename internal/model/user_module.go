package model

import "time"

// UserModule records a single user's engagement with a module: whether they
// starred it, their current vote, and when they last viewed it. One row per
// (user, module) pair, created lazily on first contact.
type UserModule struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	ModuleID   int       `json:"module_id"`
	Starred    bool      `json:"starred"`
	Vote       int       `json:"vote"`
	LastViewed time.Time `json:"last_viewed"`
}

// ModuleViewEvent is the queue payload recorded when a user opens a module
// page. Drained asynchronously by the engagement worker.
type ModuleViewEvent struct {
	UserID   int       `json:"user_id"`
	ModuleID int       `json:"module_id"`
	ViewedAt time.Time `json:"viewed_at"`
}

// EngagementUpdate is published on a module's engagement channel whenever
// its star or vote counts change.
type EngagementUpdate struct {
	ModuleID int `json:"module_id"`
	Votes    int `json:"votes"`
	Stars    int `json:"stars"`
}
