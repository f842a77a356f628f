package dialogflow

import "github.com/MrWong99/dialogforge/pkg/assistant"

// UnhandledIntentName is the reserved display name of the synthetic fallback
// intent. Dialogflow reports it for turns no other intent matched.
const UnhandledIntentName = "__unhandled"

// genericIntentNames maps speakable generic intents to their Dialogflow
// display names. The unspeakable [assistant.GenericUnhandled] is deliberately
// absent: it is represented by the fallback intent, not a named agent intent.
var genericIntentNames = map[assistant.GenericIntent]string{
	assistant.GenericYes:    "yesGenericIntent",
	assistant.GenericNo:     "noGenericIntent",
	assistant.GenericHelp:   "helpGenericIntent",
	assistant.GenericCancel: "cancelGenericIntent",
	assistant.GenericStop:   "stopGenericIntent",
	assistant.GenericInvoke: "invokeGenericIntent",
}

// genericIntentsByName is the reverse of genericIntentNames.
var genericIntentsByName = func() map[string]assistant.GenericIntent {
	byName := make(map[string]assistant.GenericIntent, len(genericIntentNames))
	for g, name := range genericIntentNames {
		byName[name] = g
	}
	return byName
}()

// IntentName resolves an intent to its Dialogflow display name. User-defined
// intent names pass through unchanged. Generic intents resolve via the fixed
// name table; ok is false for generic intents without a Dialogflow
// representation, signalling the caller to drop the intent.
func IntentName(intent assistant.Intent) (name string, ok bool) {
	if name, isNamed := intent.Name(); isNamed {
		return name, true
	}
	g, isGeneric := intent.Generic()
	if !isGeneric {
		return "", false
	}
	name, ok = genericIntentNames[g]
	return name, ok
}

// GenericIntentByName reverse-looks-up a Dialogflow display name. ok is
// false when the name does not belong to a generic intent.
func GenericIntentByName(displayName string) (g assistant.GenericIntent, ok bool) {
	g, ok = genericIntentsByName[displayName]
	return g, ok
}
