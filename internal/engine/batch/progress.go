package batch

import "sync"

const percentMultiplier = 100

// Progress tracks a batch run. It is safe for concurrent use.
type Progress struct {
	totalItems       int
	processedItems   int
	totalBatches     int
	processedBatches int

	mu sync.RWMutex
}

// ProgressSnapshot is a copy of the progress at one point.
type ProgressSnapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	PercentComplete  float64
}

// NewProgress creates a tracker.
func NewProgress(totalItems, totalBatches int) *Progress {
	return &Progress{totalItems: totalItems, totalBatches: totalBatches}
}

// AddProcessed records a finished batch of n items.
func (p *Progress) AddProcessed(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedItems += n
	p.processedBatches++
}

// Snapshot returns the current state.
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var pct float64
	if p.totalItems > 0 {
		pct = float64(p.processedItems) / float64(p.totalItems) * percentMultiplier
	}
	return ProgressSnapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		PercentComplete:  pct,
	}
}
