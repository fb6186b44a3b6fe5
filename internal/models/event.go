package models

// Event is a community event (cleanup, plantation, awareness campaign).
type Event struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	StartsAt  int64   `json:"starts_at"`
}

// EventRegistration is a user's intent to join an event.
type EventRegistration struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}
