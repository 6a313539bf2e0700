package model

// Credentials is the bearer credential pair issued by the auth service.
// The pair is always read and replaced as a whole.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no access token is held.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// CanRefresh reports whether a renewal can be attempted with this pair.
func (c Credentials) CanRefresh() bool {
	return c.RefreshToken != ""
}

// Session is the result of a successful login.
type Session struct {
	Credentials Credentials
	CustomerID  string
}
