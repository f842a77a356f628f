package events

// Binding associates one intent with the platform events that should trigger
// it. Application authors declare bindings next to their intent handlers and
// apply them to the generation run's [Store]; this replaces per-handler
// metadata annotation with an explicit registration call site.
type Binding struct {
	intent string
	events []string
}

// Intent starts a binding for the named intent.
func Intent(name string) Binding {
	return Binding{intent: name}
}

// On adds events to the binding. Calls accumulate.
func (b Binding) On(events ...string) Binding {
	b.events = append(b.events[:len(b.events):len(b.events)], events...)
	return b
}

// RegisterWith applies the binding to store.
func (b Binding) RegisterWith(store *Store) {
	store.Register(b.intent, b.events...)
}

// RegisterAll applies every binding to store, in order.
func RegisterAll(store *Store, bindings ...Binding) {
	for _, b := range bindings {
		b.RegisterWith(store)
	}
}
