// Package assistant defines the platform-neutral model shared between the
// voice-assistant framework and its platform adapters.
//
// These types form the lingua franca between the framework's request routing
// and the Dialogflow-specific packages. The framework speaks in terms of
// intents, utterances and entities; adapters translate that into whatever
// their platform understands.
package assistant

// GenericIntent is one of the small fixed set of cross-platform intents that
// carry framework-level meaning independent of any provider.
type GenericIntent int

const (
	// GenericYes is an affirmative answer ("yes", "sure", "ok").
	GenericYes GenericIntent = iota + 1

	// GenericNo is a negative answer.
	GenericNo

	// GenericHelp asks for usage guidance.
	GenericHelp

	// GenericCancel aborts the current interaction step.
	GenericCancel

	// GenericStop ends the session.
	GenericStop

	// GenericInvoke is the session-opening "welcome" intent.
	GenericInvoke

	// GenericUnhandled is the catch-all matched when no other intent applies.
	// It has no natural-language trigger of its own.
	GenericUnhandled
)

// String returns the framework-level name of the generic intent.
func (g GenericIntent) String() string {
	switch g {
	case GenericYes:
		return "yes"
	case GenericNo:
		return "no"
	case GenericHelp:
		return "help"
	case GenericCancel:
		return "cancel"
	case GenericStop:
		return "stop"
	case GenericInvoke:
		return "invoke"
	case GenericUnhandled:
		return "unhandled"
	}
	return "unknown"
}

// ParseGenericIntent parses the framework-level name of a generic intent
// ("yes", "no", "help", "cancel", "stop", "invoke", "unhandled"). ok is
// false for unknown names.
func ParseGenericIntent(name string) (g GenericIntent, ok bool) {
	for g := GenericYes; g <= GenericUnhandled; g++ {
		if g.String() == name {
			return g, true
		}
	}
	return 0, false
}

// Speakable reports whether the generic intent has a natural-language
// trigger. Non-speakable intents are structural only and must never appear
// in generated platform configuration.
func (g GenericIntent) Speakable() bool {
	switch g {
	case GenericYes, GenericNo, GenericHelp, GenericCancel, GenericStop, GenericInvoke:
		return true
	}
	return false
}

// Intent identifies a user-request category. It is either a user-defined
// name or one of the fixed [GenericIntent] values. The zero value is neither
// and matches nothing.
type Intent struct {
	name    string
	generic GenericIntent
}

// NamedIntent returns an Intent referring to a user-defined intent name.
func NamedIntent(name string) Intent {
	return Intent{name: name}
}

// Generic returns an Intent referring to a cross-platform generic intent.
func Generic(g GenericIntent) Intent {
	return Intent{generic: g}
}

// Name returns the user-defined intent name. ok is false when the intent is
// generic (or zero).
func (i Intent) Name() (name string, ok bool) {
	return i.name, i.name != ""
}

// Generic returns the generic intent value. ok is false when the intent is a
// user-defined name (or zero).
func (i Intent) Generic() (g GenericIntent, ok bool) {
	return i.generic, i.name == "" && i.generic != 0
}

// String returns the intent name for user-defined intents and the generic
// intent name otherwise. Used in logs and warnings.
func (i Intent) String() string {
	if i.name != "" {
		return i.name
	}
	return i.generic.String()
}
