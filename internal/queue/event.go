// Package queue defines message payloads exchanged over the message broker.
package queue

// EmailRequestedEvent is published whenever a trip state change should
// notify the customer by email. It carries everything a downstream
// mailer needs so no consumer ever queries the primary database.
type EmailRequestedEvent struct {
	TripID      uint64 `json:"trip_id"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	RequestedAt string `json:"requested_at"`
}
