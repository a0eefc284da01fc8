package models

// EmailInfo is the email a provider asserted for a user, together with
// whether the provider itself considers it verified.
type EmailInfo struct {
	ID         string
	IsVerified bool
}

// UserInfo is the normalized profile resolved from a provider's token
// response. Email is nil when the provider gave no usable email.
type UserInfo struct {
	ID    string
	Email *EmailInfo
}

// ThirdPartyInfo records which external identity a local user came from.
type ThirdPartyInfo struct {
	ID     string // provider id, e.g. "google"
	UserID string // provider-scoped external user id
}

// User is a local user record owned by the account collaborator.
type User struct {
	ID         string
	Email      string
	TimeJoined int64
	ThirdParty ThirdPartyInfo
}

// Session is the opaque handle returned by the session collaborator.
type Session struct {
	Handle string
	UserID string
}
