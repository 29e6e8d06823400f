package domain

// User is the identity the authentication layer attaches to a request.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive bool   `json:"is_active"`
}

// SystemUser is attributed to requests authenticated by network location
// rather than by credential.
var SystemUser = &User{
	ID:       "system",
	Name:     "Trusted Network",
	IsAdmin:  false,
	IsActive: true,
}
