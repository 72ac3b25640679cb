package crawler

import "errors"

// Sentinel errors returned by configuration and frontier operations.
var (
	// ErrInvalidDelayRange is returned when a RANDOM or ADAPTIVE delay
	// strategy's minDelayMs is not strictly less than maxDelayMs.
	ErrInvalidDelayRange = errors.New("crawler: minDelayMs must be less than maxDelayMs")

	// ErrFrontierExhausted is returned by CrawlFrontier.NextCandidate when
	// no admissible candidate remains.
	ErrFrontierExhausted = errors.New("crawler: frontier exhausted")

	// ErrSessionNotRunning is returned when an operation requiring a running
	// session (Crawl, DownloadFile) is invoked on a session that has not been
	// started or has already stopped, and by Resume when no snapshot has been
	// loaded. Stop does not return it; Stop is a no-op when no session is
	// running.
	ErrSessionNotRunning = errors.New("crawler: session is not running")

	// ErrSessionAlreadyRunning is returned by Start/Resume when the session
	// is already running.
	ErrSessionAlreadyRunning = errors.New("crawler: session is already running")

	// ErrOpaqueCapabilityConsumed is returned when a BrowserSession method
	// other than Close is invoked after Close.
	ErrOpaqueCapabilityConsumed = errors.New("crawler: capability already closed")
)

// ClassificationError reports that the browser fetch left processCandidate
// with nothing to classify a candidate's response against (e.g. the
// browser completed Open but recorded no navigation entry). It wraps the
// underlying cause for errors.Is chains.
type ClassificationError struct {
	URL string
	Err error
}

func (e *ClassificationError) Error() string {
	return "crawler: " + e.URL + ": classification failed: " + e.Err.Error()
}

func (e *ClassificationError) Unwrap() error { return e.Err }
