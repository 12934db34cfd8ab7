package model

// Credential is an authenticated session: the opaque bearer token issued by
// the server and the identity it was issued for. A process holds at most one.
type Credential struct {
	Token string
	User  User
}
