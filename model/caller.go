package model

// AuthenticatedCaller is the identity proven by a verified access token.
type AuthenticatedCaller struct {
	UserID int
}

// ClientInfo carries request metadata recorded in audit entries.
type ClientInfo struct {
	IP        string
	UserAgent string
}
