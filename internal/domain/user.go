package domain

// User is an account created on first sign-in with GitHub.
type User struct {
	Entity
	Name     string `json:"name,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Image    string `json:"image,omitempty"`
	GitHubID string `json:"githubId"`
}

// Editable user profile fields.
const (
	UserFieldName     = "name"
	UserFieldUsername = "username"
	UserFieldEmail    = "email"
	UserFieldImage    = "image"
)

// DisplayName returns the best human-readable name for the user.
func (u *User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}
