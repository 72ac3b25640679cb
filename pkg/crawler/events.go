package crawler

import "time"

// EventKind identifies which of the six terminal outcomes a candidate
// reached.
type EventKind string

const (
	ResponseSuccess  EventKind = "RESPONSE_SUCCESS"
	PageLoadTimeout  EventKind = "PAGE_LOAD_TIMEOUT"
	RequestRedirect  EventKind = "REQUEST_REDIRECT"
	NonHtmlResponse  EventKind = "NON_HTML_RESPONSE"
	ResponseError    EventKind = "RESPONSE_ERROR"
	NetworkError     EventKind = "NETWORK_ERROR"
)

// Event is delivered to every CallbackRegistry handler matching a
// candidate's terminal outcome.
type Event struct {
	Kind      EventKind
	Candidate CrawlCandidate
	// Response is set for RESPONSE_SUCCESS, NON_HTML_RESPONSE, and
	// RESPONSE_ERROR.
	Response *Response
	// RedirectURL is set for REQUEST_REDIRECT, resolved against the
	// candidate's URL.
	RedirectURL string
	// Err carries the transport failure for NETWORK_ERROR, or the timeout
	// for PAGE_LOAD_TIMEOUT.
	Err error
	At  time.Time
}

// Handler processes one Event. Per the propagation policy, an error a
// Handler returns is not swallowed by the registry or the loop; it
// terminates the running session through the scoped-release path.
type Handler func(Event) error
