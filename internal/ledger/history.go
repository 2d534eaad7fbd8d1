package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultMinSpacing is the minimum gap between recorded value points.
	DefaultMinSpacing = time.Hour
	// DefaultRetention bounds how far back value points are kept.
	DefaultRetention = 7 * 24 * time.Hour
)

// ValuePoint is one (timestamp, portfolio value) snapshot.
type ValuePoint struct {
	Ts    time.Time       `json:"ts"`
	Value decimal.Decimal `json:"value"`
}

// ValueHistory is an append-only, bounded series of portfolio value
// snapshots. Memory stays bounded by two rules: consecutive points are at
// least minSpacing apart, and points older than the retention window are
// pruned on append.
type ValueHistory struct {
	mu         sync.RWMutex
	points     []ValuePoint
	minSpacing time.Duration
	retention  time.Duration
}

// NewValueHistory creates an empty history with the given bounds.
func NewValueHistory(minSpacing, retention time.Duration) *ValueHistory {
	return &ValueHistory{
		minSpacing: minSpacing,
		retention:  retention,
	}
}

// Append records a value point if at least minSpacing has passed since the
// last point (the first point is always recorded), then prunes points older
// than the retention window. Returns whether the point was recorded.
func (h *ValueHistory) Append(ts time.Time, value decimal.Decimal) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.points); n > 0 && ts.Sub(h.points[n-1].Ts) < h.minSpacing {
		return false
	}

	h.points = append(h.points, ValuePoint{Ts: ts, Value: value})

	cutoff := ts.Add(-h.retention)
	first := 0
	for first < len(h.points) && h.points[first].Ts.Before(cutoff) {
		first++
	}
	if first > 0 {
		h.points = append(h.points[:0], h.points[first:]...)
	}
	return true
}

// Points returns a copy of the recorded series in chronological order.
func (h *ValueHistory) Points() []ValuePoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ValuePoint, len(h.points))
	copy(out, h.points)
	return out
}

// Len returns the number of recorded points.
func (h *ValueHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.points)
}
