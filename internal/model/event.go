package model

// EventKind enumerates the lifecycle events inferred from browser signals.
type EventKind string

const (
	// EventSignup is an account creation.
	EventSignup EventKind = "SIGNUP"
	// EventLogin is a login.
	EventLogin EventKind = "LOGIN"
	// EventPassChange is a password change.
	EventPassChange EventKind = "PASS_CHANGE"
)

// Valid reports whether k is one of the known event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventSignup, EventLogin, EventPassChange:
		return true
	}
	return false
}

// FormFeatures is the structural description of a submitted form, as
// extracted by the browser side. The classifier never sees the DOM.
type FormFeatures struct {
	Action     string
	ID         string
	Class      string
	InputTypes []string
	InputNames []string
	ButtonText string
}

// Signal is one raw browser observation: the page URL, and optionally the
// submitted form's features. Either part may carry the classification cue.
type Signal struct {
	URL  string
	Form *FormFeatures
}
