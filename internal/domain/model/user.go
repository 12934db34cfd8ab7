package model

import "strings"

// User is the identity a bearer token authenticates.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Role      string
	Type      string
	Confirmed bool
	Image     string
}

// DisplayName returns "First Last", falling back to the email when both
// name fields are empty.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}
