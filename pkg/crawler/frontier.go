package crawler

import (
	"container/heap"
	"sort"
	"sync"
)

// frontierItem is one pending candidate plus the bookkeeping needed to
// order it within the heap.
type frontierItem struct {
	candidate CrawlCandidate
	sequence  int64 // admission order, broken only by Strategy's tie rule
	index     int   // maintained by container/heap
}

// frontierHeap orders items per strategy: BREADTH_FIRST sorts by depth
// ascending, DEPTH_FIRST by depth descending; both tie-break on priority
// descending, then on admission order ascending (FIFO among otherwise-equal
// items).
type frontierHeap struct {
	items      []*frontierItem
	depthDesc bool // true for DEPTH_FIRST
}

func (h frontierHeap) Len() int { return len(h.items) }

func (h frontierHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.candidate.Depth != b.candidate.Depth {
		if h.depthDesc {
			return a.candidate.Depth > b.candidate.Depth
		}
		return a.candidate.Depth < b.candidate.Depth
	}
	if a.candidate.Request.Priority() != b.candidate.Request.Priority() {
		return a.candidate.Request.Priority() > b.candidate.Request.Priority()
	}
	return a.sequence < b.sequence
}

func (h frontierHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *frontierHeap) Push(x any) {
	item := x.(*frontierItem)
	item.index = len(h.items)
	h.items = append(h.items, item)
}

func (h *frontierHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	h.items = old[:n-1]
	return item
}

// CrawlFrontier admits CrawlRequests into CrawlCandidates, applying
// offsite, dedup, and depth filtering in that order, and serves them back
// out in the order fixed by the configured Strategy. It is single-threaded
// by design (the owning CrawlLoop is its only writer), but StatsCounter
// reads remain safe from other goroutines.
type CrawlFrontier struct {
	mu               sync.Mutex
	cfg              CrawlerConfiguration
	heap             frontierHeap
	fingerprints     map[string]struct{}
	sequence         int64
	stats            *StatsCounter
	currentCandidate *CrawlCandidate
}

// NewCrawlFrontier builds a frontier for cfg, seeded with cfg.CrawlSeeds
// (each admitted at depth 1, with no referer, bypassing the depth check).
func NewCrawlFrontier(cfg CrawlerConfiguration, stats *StatsCounter) *CrawlFrontier {
	f := newEmptyCrawlFrontier(cfg, stats)
	for _, seed := range cfg.CrawlSeeds {
		f.FeedRequest(seed, true)
	}
	return f
}

// newEmptyCrawlFrontier builds a frontier with no seeds admitted, for the
// snapshot-restore path where pending candidates and counters are about to
// be repopulated wholesale from a prior run rather than from configuration.
func newEmptyCrawlFrontier(cfg CrawlerConfiguration, stats *StatsCounter) *CrawlFrontier {
	f := &CrawlFrontier{
		cfg:          cfg,
		heap:         frontierHeap{depthDesc: cfg.Strategy == DepthFirst},
		fingerprints: make(map[string]struct{}),
		stats:        stats,
	}
	heap.Init(&f.heap)
	return f
}

// FeedRequest runs req through the admission pipeline: offsite filter,
// dedup filter, then (for non-seeds) the depth check against
// currentCandidate. A drop at any stage records the matching filter
// counter and is not an error — it is the frontier's normal filtering
// behavior.
func (f *CrawlFrontier) FeedRequest(req CrawlRequest, isSeed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.cfg.FilterOffsiteRequests && !f.cfg.IsAllowed(req.Domain()) {
		if f.stats != nil {
			f.stats.RecordFilteredOffsite()
		}
		return
	}

	if f.cfg.FilterDuplicateRequests {
		fp := fingerprint(req.URL())
		if _, dup := f.fingerprints[fp]; dup {
			if f.stats != nil {
				f.stats.RecordFilteredDuplicate()
			}
			return
		}
		f.fingerprints[fp] = struct{}{}
	}

	var depth int
	var referer string
	if isSeed {
		depth = 1
	} else {
		if f.currentCandidate == nil {
			depth = 1
		} else {
			depth = f.currentCandidate.Depth + 1
			referer = f.currentCandidate.Request.RawURL()
		}
		if f.cfg.MaxCrawlDepth != 0 && depth > f.cfg.MaxCrawlDepth {
			if f.stats != nil {
				f.stats.RecordFilteredDepthExceeded()
			}
			return
		}
	}

	f.sequence++
	heap.Push(&f.heap, &frontierItem{
		candidate: CrawlCandidate{Request: req, RefererURL: referer, Depth: depth},
		sequence:  f.sequence,
	})
	if f.stats != nil {
		f.stats.RecordRemainingCrawlCandidate()
	}
}

// HasNextCandidate reports whether NextCandidate would currently succeed.
func (f *CrawlFrontier) HasNextCandidate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heap.Len() > 0
}

// NextCandidate pops the highest-priority admissible candidate in strategy
// order and records it as the current candidate (the referer source for
// its children), or returns ErrFrontierExhausted if none remain.
func (f *CrawlFrontier) NextCandidate() (CrawlCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.heap.Len() == 0 {
		return CrawlCandidate{}, ErrFrontierExhausted
	}
	item := heap.Pop(&f.heap).(*frontierItem)
	f.currentCandidate = &item.candidate
	return item.candidate, nil
}

// Len reports the number of candidates currently pending.
func (f *CrawlFrontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.heap.Len()
}

// Reset clears all pending candidates and the fingerprint set, without
// touching the configuration or counters.
func (f *CrawlFrontier) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heap = frontierHeap{depthDesc: f.cfg.Strategy == DepthFirst}
	heap.Init(&f.heap)
	f.fingerprints = make(map[string]struct{})
	f.sequence = 0
	f.currentCandidate = nil
}

// pendingCandidates copies the heap's contents (without popping) in
// admission order, for persistence.
func (f *CrawlFrontier) pendingCandidates() []CrawlCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := append([]*frontierItem(nil), f.heap.items...)
	sort.Slice(items, func(i, j int) bool { return items[i].sequence < items[j].sequence })
	out := make([]CrawlCandidate, len(items))
	for i, item := range items {
		out[i] = item.candidate
	}
	return out
}

// seenFingerprints returns the dedup set's current members, for
// persistence.
func (f *CrawlFrontier) seenFingerprints() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.fingerprints))
	for fp := range f.fingerprints {
		out = append(out, fp)
	}
	return out
}

// restore repopulates the frontier from a prior snapshot's pending
// candidates and fingerprint set, preserving admission order.
func (f *CrawlFrontier) restore(pending []CrawlCandidate, fingerprints []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heap = frontierHeap{depthDesc: f.cfg.Strategy == DepthFirst}
	heap.Init(&f.heap)
	f.fingerprints = make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		f.fingerprints[fp] = struct{}{}
	}
	for _, cand := range pending {
		f.sequence++
		heap.Push(&f.heap, &frontierItem{candidate: cand, sequence: f.sequence})
	}
}
