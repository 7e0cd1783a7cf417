package domain

// User is a platform member. Users come from fixtures rather than a
// signup flow; preference bags are free-form so clients can stash UI
// state without schema churn.
type User struct {
	Record
	Name        string         `json:"name"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Bio         string         `json:"bio,omitempty"`
	AvatarColor string         `json:"avatarColor,omitempty"`
	Followers   int            `json:"followers"`
	Following   int            `json:"following"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// DisplayName returns the user's name, falling back to the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
