package session

// Session is the client-side record of an authenticated user: the opaque
// bearer credential issued by the token endpoint plus the name shown in the
// UI. At most one session is active per client.
type Session struct {
	Credential  string `json:"credential"`
	DisplayName string `json:"display_name"`
}
