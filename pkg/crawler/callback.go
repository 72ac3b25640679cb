package crawler

import "regexp"

// callbackEntry pairs a compiled URL pattern with the handler to run when a
// candidate's URL matches it.
type callbackEntry struct {
	pattern *regexp.Regexp
	handler Handler
}

// CallbackRegistry dispatches an Event to every handler, in registration
// order, whose URL pattern fully matches the event's candidate URL. If none
// match, the kind's default handler runs instead.
type CallbackRegistry struct {
	byKind  map[EventKind][]callbackEntry
	default_ map[EventKind]Handler
}

// NewCallbackRegistry builds an empty registry.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{
		byKind:   make(map[EventKind][]callbackEntry),
		default_: make(map[EventKind]Handler),
	}
}

// Register adds h as a handler for kind whose dispatch is gated on urlPattern
// fully matching a candidate's URL (anchored: the pattern is wrapped in
// ^(?:...)$). Registration order determines invocation order among matches
// for the same kind.
func (r *CallbackRegistry) Register(kind EventKind, urlPattern string, h Handler) error {
	re, err := regexp.Compile("^(?:" + urlPattern + ")$")
	if err != nil {
		return err
	}
	r.byKind[kind] = append(r.byKind[kind], callbackEntry{pattern: re, handler: h})
	return nil
}

// RegisterDefault sets the fallback handler invoked for kind when no
// pattern-matched handler fires. Only one default may be registered per
// kind; a later call replaces the earlier one.
func (r *CallbackRegistry) RegisterDefault(kind EventKind, h Handler) {
	r.default_[kind] = h
}

// Dispatch finds every handler matching ev's candidate URL for ev.Kind and
// invokes them in registration order; if none matched, it invokes the
// kind's default handler, if any. Errors propagate from the first handler
// that returns one; per the propagation policy, dispatch then stops rather
// than continuing to later handlers.
func (r *CallbackRegistry) Dispatch(ev Event) (dispatched bool, err error) {
	rawURL := ev.Candidate.Request.RawURL()
	matched := false
	for _, e := range r.byKind[ev.Kind] {
		if !e.pattern.MatchString(rawURL) {
			continue
		}
		matched = true
		if err := e.handler(ev); err != nil {
			return true, err
		}
	}
	if matched {
		return true, nil
	}
	if def, ok := r.default_[ev.Kind]; ok {
		return true, def(ev)
	}
	return false, nil
}
