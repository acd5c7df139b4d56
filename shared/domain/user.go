package domain

// User is the signed-in identity. Sessions are owned by an external
// identity provider; this process only ever sees the stub user.
type User struct {
	Username       string `json:"username" yaml:"username"`
	DisplayName    string `json:"displayName" yaml:"display_name"`
	ProfilePicture string `json:"profilePicture,omitempty" yaml:"profile_picture"`
}
