package constants

const (
	// DevKeyIdentifier marks a client id as a non-production credential. The
	// real client id is whatever follows the prefix.
	DevKeyIdentifier = "4398792-"

	// DevOAuthAuthorizationURL is the relay endpoint that forwards the user to
	// the real provider when a development client id is in use.
	DevOAuthAuthorizationURL = "https://relay.veriflow.dev/dev/oauth/redirect-to-provider"

	// DevOAuthRedirectURL is the fixed callback the relay registers with the
	// real provider, so development credentials never need their own one.
	DevOAuthRedirectURL = "https://relay.veriflow.dev/dev/oauth/redirect-to-app"
)

// DevOAuthClientIDs are shared demo credentials that are always treated as
// development client ids, prefix or not.
var DevOAuthClientIDs = []string{
	"1060725074195-kmeum4crr01uirfl2op9kd5acmi9jutn.apps.googleusercontent.com", // google
	"467101b197249757c71f", // github
}
