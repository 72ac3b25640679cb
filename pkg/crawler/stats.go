package crawler

import (
	"fmt"
	"sync/atomic"
)

// StatsCounter accumulates crawl progress counters. Writes come only from
// the single CrawlLoop goroutine; Snapshot is safe to call concurrently
// from any number of external observers (a CLI stats command, a status
// endpoint).
type StatsCounter struct {
	remaining            atomic.Int64
	processed            atomic.Int64
	responseSuccess      atomic.Int64
	pageLoadTimeout      atomic.Int64
	requestRedirect      atomic.Int64
	nonHtmlResponse      atomic.Int64
	responseError        atomic.Int64
	networkError         atomic.Int64
	filteredDuplicate    atomic.Int64
	filteredOffsite      atomic.Int64
	filteredDepthExceeded atomic.Int64
}

// StatsSnapshot is a point-in-time, immutable copy of a StatsCounter.
type StatsSnapshot struct {
	Remaining             int64
	Processed             int64
	ResponseSuccess       int64
	PageLoadTimeout       int64
	RequestRedirect       int64
	NonHtmlResponse       int64
	ResponseError         int64
	NetworkError          int64
	FilteredDuplicate     int64
	FilteredOffsite       int64
	FilteredDepthExceeded int64
}

// RecordRemainingCrawlCandidate is called by the frontier on every
// successful admission.
func (s *StatsCounter) RecordRemainingCrawlCandidate() { s.remaining.Add(1) }

// RecordFilteredDuplicate records a dedup-filter drop.
func (s *StatsCounter) RecordFilteredDuplicate() { s.filteredDuplicate.Add(1) }

// RecordFilteredOffsite records an offsite-filter drop.
func (s *StatsCounter) RecordFilteredOffsite() { s.filteredOffsite.Add(1) }

// RecordFilteredDepthExceeded records a depth-filter drop.
func (s *StatsCounter) RecordFilteredDepthExceeded() { s.filteredDepthExceeded.Add(1) }

// recordTerminal is the shared bookkeeping every terminal outcome performs:
// decrement remaining (must not go negative), increment processed, and
// increment the outcome's own counter.
func (s *StatsCounter) recordTerminal(counter *atomic.Int64) {
	if s.remaining.Add(-1) < 0 {
		panic(fmt.Sprintf("crawler: stats invariant violated: remaining went negative"))
	}
	s.processed.Add(1)
	counter.Add(1)
}

func (s *StatsCounter) RecordResponseSuccess() { s.recordTerminal(&s.responseSuccess) }
func (s *StatsCounter) RecordPageLoadTimeout() { s.recordTerminal(&s.pageLoadTimeout) }
func (s *StatsCounter) RecordRequestRedirect() { s.recordTerminal(&s.requestRedirect) }
func (s *StatsCounter) RecordNonHtmlResponse() { s.recordTerminal(&s.nonHtmlResponse) }
func (s *StatsCounter) RecordResponseError()   { s.recordTerminal(&s.responseError) }
func (s *StatsCounter) RecordNetworkError()    { s.recordTerminal(&s.networkError) }

// Snapshot returns a value copy of the current counters. Each counter is
// loaded atomically on its own, not under a shared lock, so a snapshot taken
// while an outcome is being recorded can show that outcome only partly
// applied (e.g. remaining already decremented, processed not yet
// incremented).
func (s *StatsCounter) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Remaining:             s.remaining.Load(),
		Processed:             s.processed.Load(),
		ResponseSuccess:       s.responseSuccess.Load(),
		PageLoadTimeout:       s.pageLoadTimeout.Load(),
		RequestRedirect:       s.requestRedirect.Load(),
		NonHtmlResponse:       s.nonHtmlResponse.Load(),
		ResponseError:         s.responseError.Load(),
		NetworkError:          s.networkError.Load(),
		FilteredDuplicate:     s.filteredDuplicate.Load(),
		FilteredOffsite:       s.filteredOffsite.Load(),
		FilteredDepthExceeded: s.filteredDepthExceeded.Load(),
	}
}

// GobEncode snapshots the counters for session persistence.
func (s *StatsCounter) GobEncode() ([]byte, error) {
	return gobEncode(s.Snapshot())
}

// GobDecode restores counters from a persisted snapshot.
func (s *StatsCounter) GobDecode(data []byte) error {
	var snap StatsSnapshot
	if err := gobDecode(data, &snap); err != nil {
		return err
	}
	s.remaining.Store(snap.Remaining)
	s.processed.Store(snap.Processed)
	s.responseSuccess.Store(snap.ResponseSuccess)
	s.pageLoadTimeout.Store(snap.PageLoadTimeout)
	s.requestRedirect.Store(snap.RequestRedirect)
	s.nonHtmlResponse.Store(snap.NonHtmlResponse)
	s.responseError.Store(snap.ResponseError)
	s.networkError.Store(snap.NetworkError)
	s.filteredDuplicate.Store(snap.FilteredDuplicate)
	s.filteredOffsite.Store(snap.FilteredOffsite)
	s.filteredDepthExceeded.Store(snap.FilteredDepthExceeded)
	return nil
}
