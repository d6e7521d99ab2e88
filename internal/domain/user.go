package domain

type User struct {
	ID        string   `firestore:"-"`
	FCMTokens []string `firestore:"fcm_tokens,omitempty"`
}

// PrimaryToken returns the first registered device token, or the empty
// string when the user has none.
func (u *User) PrimaryToken() string {
	if len(u.FCMTokens) == 0 {
		return ""
	}
	return u.FCMTokens[0]
}
