package models

// User is a registered citizen account.
type User struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Points int    `json:"points,omitempty"`
	Level  int    `json:"level,omitempty"`
}

// Registration is the payload for creating a new user account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
