package domain

// Credentials are submitted to the login endpoint.
type Credentials struct {
	Email    string
	Password string
}

// Registration is submitted to the register endpoint.
type Registration struct {
	Username   string
	Email      string
	Password   string
	InviteCode string
}

// OAuthProvider names a third-party identity provider enabled by the backend.
type OAuthProvider string

const (
	OAuthGithub  OAuthProvider = "github"
	OAuthGoogle  OAuthProvider = "google"
	OAuthNodeloc OAuthProvider = "nodeloc"
)
